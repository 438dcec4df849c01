// Package cli builds the cobra commands shared by the dbxtag binaries.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/lakehouse-ops/dbxtag/internal/audit"
	"github.com/lakehouse-ops/dbxtag/internal/config"
	"github.com/lakehouse-ops/dbxtag/internal/source"
	"github.com/lakehouse-ops/dbxtag/internal/tagger"
)

// Exit codes returned by Execute.
const (
	ExitOK       = 0
	ExitFailures = 1
	ExitSetup    = 2
)

// exitError carries the process exit code alongside the error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func setupError(err error) error { return &exitError{code: ExitSetup, err: err} }

// tagRunner is the part of *tagger.Tagger the command needs.
type tagRunner interface {
	Run(ctx context.Context, identifiers []string) *tagger.Report
}

// deps holds the collaborators a command builds at run time. Tests replace
// them with in-memory versions.
type deps struct {
	newTagger func(ctx context.Context, opts tagger.Options) (tagRunner, error)
	newSink   func(ctx context.Context, cfg audit.CloudWatchConfig, log *zap.Logger) (audit.Sink, error)
	newLogger func(level, format string) (*zap.Logger, error)
	loader    *source.Loader
	stdout    io.Writer
	stderr    io.Writer
}

func defaultDeps() *deps {
	return &deps{
		newTagger: func(ctx context.Context, opts tagger.Options) (tagRunner, error) {
			return tagger.New(ctx, opts)
		},
		newSink: func(ctx context.Context, cfg audit.CloudWatchConfig, log *zap.Logger) (audit.Sink, error) {
			return audit.NewCloudWatchSink(ctx, cfg, log)
		},
		newLogger: newLogger,
		loader:    &source.Loader{},
		stdout:    os.Stdout,
		stderr:    os.Stderr,
	}
}

// flags are the command-line options shared by every tagging command.
type flags struct {
	configPath     string
	file           string
	key            string
	value          string
	dryRun         bool
	host           string
	profile        string
	output         string
	logFormat      string
	verbose        bool
	awsRegion      string
	auditLogGroup  string
	auditLogStream string
}

func (f *flags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "path to a YAML config file")
	fs.StringVarP(&f.file, "file", "f", "", "file with one name or ID per line (\"-\" for stdin, or s3://bucket/key)")
	fs.StringVar(&f.key, "key", tagger.DefaultTagKey, "tag key to set")
	fs.StringVar(&f.value, "value", "", "tag value to set")
	fs.BoolVar(&f.dryRun, "dry-run", false, "resolve and merge tags without updating anything")
	fs.StringVar(&f.host, "host", "", "Databricks workspace URL (default from DATABRICKS_HOST or profile)")
	fs.StringVar(&f.profile, "profile", "", "profile name in ~/.databrickscfg")
	fs.StringVarP(&f.output, "output", "o", "", "report format: text or json")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: console or json")
	fs.BoolVar(&f.verbose, "verbose", false, "enable debug logging")
	fs.StringVar(&f.awsRegion, "aws-region", "", "AWS region for s3:// lists and the audit trail")
	fs.StringVar(&f.auditLogGroup, "audit-log-group", "", "CloudWatch Logs group receiving one event per identifier")
	fs.StringVar(&f.auditLogStream, "audit-log-stream", "", "CloudWatch Logs stream (default dbxtag/<timestamp>)")
}

// apply overrides cfg with every flag the user set explicitly.
func (f *flags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("file", &cfg.File, f.file)
	set("key", &cfg.TagKey, f.key)
	set("value", &cfg.TagValue, f.value)
	set("host", &cfg.Host, f.host)
	set("profile", &cfg.Profile, f.profile)
	set("output", &cfg.Output, f.output)
	set("log-format", &cfg.LogFormat, f.logFormat)
	set("aws-region", &cfg.AWSRegion, f.awsRegion)
	set("audit-log-group", &cfg.AuditLogGroup, f.auditLogGroup)
	set("audit-log-stream", &cfg.AuditLogStream, f.auditLogStream)
	if fs.Changed("dry-run") {
		cfg.DryRun = f.dryRun
	}
	if f.verbose {
		cfg.LogLevel = "debug"
	}
}

// NewRootCommand returns the dbxtag command with one subcommand per
// resource kind.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultDeps())
}

func newRootCommand(d *deps) *cobra.Command {
	root := &cobra.Command{
		Use:   "dbxtag",
		Short: "Add a tag to Databricks clusters and SQL warehouses",
		Long: `dbxtag sets one key/value tag (by default "Dominio") on every
Databricks all-purpose cluster or SQL warehouse named in a list.

Each line of the list is tried as a resource ID first and then as an
exact resource name. Existing tags are kept; only the given key is
added or overwritten.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newKindCommand(d, tagger.KindCluster, "cluster", []string{"clusters"}),
		newKindCommand(d, tagger.KindWarehouse, "warehouse", []string{"warehouses"}),
		newVersionCommand(d),
	)
	return root
}

// NewKindCommand returns a standalone command that tags resources of one
// kind, for the single-purpose binaries.
func NewKindCommand(kind tagger.Kind, use string) *cobra.Command {
	cmd := newKindCommand(defaultDeps(), kind, use, nil)
	cmd.AddCommand(newVersionCommand(defaultDeps()))
	return cmd
}

func newKindCommand(d *deps, kind tagger.Kind, use string, aliases []string) *cobra.Command {
	f := &flags{}
	noun := "all-purpose clusters"
	if kind == tagger.KindWarehouse {
		noun = "SQL warehouses"
	}
	cmd := &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   fmt.Sprintf("Add a tag to a list of Databricks %s", noun),
		Example: fmt.Sprintf("  %s --file %ss.txt --value finance", use, kind),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), d, kind, f, cmd.Flags())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f.register(cmd.Flags())
	return cmd
}

func newVersionCommand(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(d.stdout, "dbxtag %s (commit %s, built %s)\n", Version, Commit, Date)
		},
	}
}

// run executes one tagging run: load settings, read the list, tag every
// identifier, then report.
func run(ctx context.Context, d *deps, kind tagger.Kind, f *flags, fs *pflag.FlagSet) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return setupError(fmt.Errorf("config: %w", err))
	}
	f.apply(fs, cfg)
	if errs := cfg.Validate(); len(errs) > 0 {
		return setupError(fmt.Errorf("invalid configuration:\n  %s", strings.Join(errs, "\n  ")))
	}

	log, err := d.newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return setupError(err)
	}
	defer func() { _ = log.Sync() }()

	loader := *d.loader
	loader.Region = cfg.AWSRegion
	ids, err := loader.Load(ctx, cfg.File)
	if err != nil {
		return setupError(err)
	}
	log.Info("loaded identifier list", zap.String("source", cfg.File), zap.Int("count", len(ids)))
	if len(ids) == 0 {
		log.Warn("identifier list is empty, nothing to do", zap.String("source", cfg.File))
	}

	var sink audit.Sink = audit.NopSink{}
	if cfg.AuditLogGroup != "" {
		sink, err = d.newSink(ctx, audit.CloudWatchConfig{
			Region:    cfg.AWSRegion,
			LogGroup:  cfg.AuditLogGroup,
			LogStream: cfg.AuditLogStream,
		}, log)
		if err != nil {
			return setupError(fmt.Errorf("audit: %w", err))
		}
	}

	observers := []tagger.Observer{sink}
	if cfg.LogFormat == config.LogFormatConsole {
		observers = append(observers, tagger.ObserverFunc(func(context.Context, tagger.Outcome) {
			fmt.Fprintln(d.stderr, separator())
		}))
	}

	t, err := d.newTagger(ctx, tagger.Options{
		Kind:      kind,
		Key:       cfg.TagKey,
		Value:     cfg.TagValue,
		DryRun:    cfg.DryRun,
		Workspace: cfg.Workspace(),
		Logger:    log,
		Observers: observers,
	})
	if err != nil {
		return setupError(err)
	}

	report := t.Run(ctx, ids)
	report.Source = cfg.File

	// The audit trail is flushed even when the run was interrupted.
	if err := sink.Close(context.WithoutCancel(ctx)); err != nil {
		log.Warn("audit trail incomplete", zap.Error(err))
	}

	if cfg.Output == config.OutputJSON {
		if err := printJSON(d.stdout, report); err != nil {
			return setupError(fmt.Errorf("write report: %w", err))
		}
	} else {
		printText(d.stdout, report)
	}

	if !report.OK() {
		return &exitError{
			code: ExitFailures,
			err:  fmt.Errorf("%d of %d %s(s) not tagged", len(report.Failed()), len(report.Outcomes), kind),
		}
	}
	return nil
}

// Execute runs cmd and returns the process exit code. Errors are printed
// to stderr.
func Execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return ExitOK
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name(), err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Flag and argument errors from cobra itself.
	return ExitSetup
}

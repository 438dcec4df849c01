package tagger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// clientFactory creates a resourceClient for the given kind and workspace.
type clientFactory func(ctx context.Context, kind Kind, cfg WorkspaceConfig) (resourceClient, error)

// Observer is notified once per identifier after it has been handled.
type Observer interface {
	Record(ctx context.Context, o Outcome)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(ctx context.Context, o Outcome)

// Record calls f.
func (f ObserverFunc) Record(ctx context.Context, o Outcome) { f(ctx, o) }

// Options configures a Tagger.
type Options struct {
	Kind      Kind
	Key       string
	Value     string
	DryRun    bool
	Workspace WorkspaceConfig
	Logger    *zap.Logger
	Observers []Observer
}

// Tagger applies one key/value tag to resources of a single kind.
type Tagger struct {
	kind      Kind
	key       string
	value     string
	dryRun    bool
	client    resourceClient
	log       *zap.Logger
	observers []Observer
}

// New creates a Tagger backed by the real Databricks workspace client.
// Credentials are resolved through the SDK's default chain for any field
// left empty in opts.Workspace.
func New(ctx context.Context, opts Options) (*Tagger, error) {
	return newWithFactory(ctx, opts, newRealClient)
}

func newWithFactory(ctx context.Context, opts Options, factory clientFactory) (*Tagger, error) {
	if opts.Key == "" {
		return nil, errors.New("tag key is required")
	}
	if _, err := ParseKind(string(opts.Kind)); err != nil {
		return nil, err
	}
	client, err := factory(ctx, opts.Kind, opts.Workspace)
	if err != nil {
		return nil, err
	}
	return newWithClient(client, opts), nil
}

func newWithClient(client resourceClient, opts Options) *Tagger {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Tagger{
		kind:      client.Kind(),
		key:       opts.Key,
		value:     opts.Value,
		dryRun:    opts.DryRun,
		client:    client,
		log:       log.With(zap.String("kind", string(client.Kind()))),
		observers: opts.Observers,
	}
}

// Run tags every identifier in order and returns the collected report.
// A failure on one identifier never stops the rest. If ctx is cancelled,
// identifiers not yet started are reported as failed with the context error.
func (t *Tagger) Run(ctx context.Context, identifiers []string) *Report {
	report := &Report{
		Kind:      t.kind,
		Key:       t.key,
		Value:     t.value,
		DryRun:    t.dryRun,
		StartedAt: time.Now().UTC(),
	}

	t.log.Info("starting run", zap.Int("count", len(identifiers)),
		zap.String("key", t.key), zap.String("value", t.value), zap.Bool("dry_run", t.dryRun))

	for _, id := range identifiers {
		var out Outcome
		if err := ctx.Err(); err != nil {
			out = t.failed(Outcome{Identifier: id, Kind: t.kind}, newTagError("resolve", t.kind, id, err))
			t.notify(ctx, out)
		} else {
			out = t.TagOne(ctx, id)
		}
		report.Outcomes = append(report.Outcomes, out)
	}

	report.FinishedAt = time.Now().UTC()
	c := report.Counts()
	t.log.Info("run finished",
		zap.Int("tagged", c.Tagged), zap.Int("unchanged", c.Unchanged),
		zap.Int("dry_run", c.DryRun), zap.Int("not_found", c.NotFound),
		zap.Int("failed", c.Failed))
	return report
}

// TagOne resolves identifier, merges the tag into its current set and
// pushes the full merged set back.
func (t *Tagger) TagOne(ctx context.Context, identifier string) Outcome {
	log := t.log.With(zap.String("identifier", identifier))
	out := Outcome{Identifier: identifier, Kind: t.kind}

	res, err := Resolve(ctx, t.client, identifier, log)
	if err != nil {
		out = t.failed(out, err)
		log.Error("could not resolve resource", zap.Error(err))
		t.notify(ctx, out)
		return out
	}
	out.ID = res.ID
	out.Name = res.Name
	log = log.With(zap.String("id", res.ID), zap.String("name", res.Name))

	if len(res.Tags) == 0 {
		log.Info("resource has no custom tags")
	} else {
		log.Info("existing tags", zap.Any("tags", res.Tags))
	}

	merged := MergeTags(res.Tags, t.key, t.value)
	out.Previous = copyTags(res.Tags)
	out.Applied = merged
	log.Debug("tags to apply", zap.Any("tags", merged))

	switch {
	case tagsEqual(res.Tags, merged):
		out.Status = StatusUnchanged
		log.Info("tag already present, no update needed",
			zap.String("key", t.key), zap.String("value", t.value))
	case t.dryRun:
		out.Status = StatusDryRun
		log.Info("dry run, skipping update", zap.Any("tags", merged))
	default:
		if err := t.client.UpdateTags(ctx, res.ID, merged); err != nil {
			out = t.failed(out, newTagError("edit", t.kind, identifier, err))
			log.Error("failed to update tags", zap.Error(out.Err))
			break
		}
		out.Status = StatusTagged
		log.Info("tag applied", zap.String("key", t.key), zap.String("value", t.value))
	}

	t.notify(ctx, out)
	return out
}

// failed marks out as failed or not found depending on err.
func (t *Tagger) failed(out Outcome, err error) Outcome {
	out.Status = StatusFailed
	if errors.Is(err, ErrNotFound) {
		out.Status = StatusNotFound
	}
	out.Err = err
	out.Error = err.Error()
	return out
}

func (t *Tagger) notify(ctx context.Context, out Outcome) {
	for _, o := range t.observers {
		o.Record(ctx, out)
	}
}


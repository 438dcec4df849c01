package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lakehouse-ops/dbxtag/internal/tagger"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		envTagKey, envTagValue, envFile, envDryRun, envLogLevel, envLogFormat,
		envOutput, envAuditLogGroup, envAuditLogStream, envAWSRegion,
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TagKey != tagger.DefaultTagKey {
		t.Errorf("TagKey = %q, want %q", cfg.TagKey, tagger.DefaultTagKey)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != LogFormatConsole || cfg.Output != OutputText {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.DryRun {
		t.Error("DryRun should default to false")
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "dbxtag.yaml", `
profile: prod-workspace
tag_key: Team
tag_value: finance
file: clusters.txt
dry_run: true
log_format: json
audit_log_group: /ops/dbxtag
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Profile != "prod-workspace" || cfg.TagKey != "Team" || cfg.TagValue != "finance" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if !cfg.DryRun || cfg.LogFormat != LogFormatJSON || cfg.AuditLogGroup != "/ops/dbxtag" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Output != OutputText {
		t.Errorf("Output = %q, want default text", cfg.Output)
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "empty.yaml", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("empty file should be accepted: %v", err)
	}
	if cfg.TagKey != tagger.DefaultTagKey {
		t.Errorf("TagKey = %q, want default", cfg.TagKey)
	}
}

func TestLoad_UnknownField(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "bad.yaml", "tag_vlaue: typo\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "dbxtag.yaml", "tag_value: finance\nlog_level: warn\n")
	t.Setenv(envTagValue, "marketing")
	t.Setenv(envDryRun, "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TagValue != "marketing" {
		t.Errorf("TagValue = %q, want env value marketing", cfg.TagValue)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want file value warn", cfg.LogLevel)
	}
	if !cfg.DryRun {
		t.Error("DryRun should be set from env")
	}
}

func TestLoad_InvalidDryRun(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())
	t.Setenv(envDryRun, "maybe")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid dry run bool")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, DotEnvFile, envTagValue+"=from-dotenv\n"+envOutput+"=json\n")

	// Variables must be absent, not just empty, for .env to fill them.
	os.Unsetenv(envTagValue)
	t.Setenv(envOutput, "text")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TagValue != "from-dotenv" {
		t.Errorf("TagValue = %q, want from-dotenv", cfg.TagValue)
	}
	if cfg.Output != OutputText {
		t.Errorf("Output = %q, real environment should win over .env", cfg.Output)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.TagValue = "finance"
		cfg.File = "clusters.txt"
		return cfg
	}

	if errs := valid().Validate(); len(errs) != 0 {
		t.Fatalf("expected valid config, got %v", errs)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty key", func(c *Config) { c.TagKey = "" }, "tag key"},
		{"empty value", func(c *Config) { c.TagValue = "" }, "tag value"},
		{"no file", func(c *Config) { c.File = "" }, "identifier list"},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, "log level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
		{"bad output", func(c *Config) { c.Output = "yaml" }, "output"},
		{"stream without group", func(c *Config) { c.AuditLogStream = "s" }, "audit log group"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			errs := cfg.Validate()
			if len(errs) != 1 || !strings.Contains(errs[0], tt.want) {
				t.Errorf("Validate() = %v, want one error containing %q", errs, tt.want)
			}
		})
	}
}

func TestWorkspace(t *testing.T) {
	cfg := &Config{Host: "https://dbc-1.cloud.databricks.com", Token: "dapi", Profile: "p"}
	ws := cfg.Workspace()
	if ws.Host != cfg.Host || ws.Token != cfg.Token || ws.Profile != cfg.Profile {
		t.Errorf("Workspace() = %+v", ws)
	}
}

func TestValidate_LogLevelIgnoresCase(t *testing.T) {
	for _, level := range []string{"INFO", "Debug", "warn", "ERROR"} {
		cfg := Default()
		cfg.TagValue = "finance"
		cfg.File = "ids.txt"
		cfg.LogLevel = level
		if errs := cfg.Validate(); len(errs) != 0 {
			t.Errorf("Validate() with level %q = %v, want no errors", level, errs)
		}
	}
}

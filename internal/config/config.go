// Package config loads dbxtag settings from a YAML file, the environment
// and an optional .env file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lakehouse-ops/dbxtag/internal/tagger"
)

// Environment variable names.
const (
	envTagKey         = "DBXTAG_TAG_KEY"
	envTagValue       = "DBXTAG_TAG_VALUE"
	envFile           = "DBXTAG_FILE"
	envDryRun         = "DBXTAG_DRY_RUN"
	envLogLevel       = "DBXTAG_LOG_LEVEL"
	envLogFormat      = "DBXTAG_LOG_FORMAT"
	envOutput         = "DBXTAG_OUTPUT"
	envAuditLogGroup  = "DBXTAG_AUDIT_LOG_GROUP"
	envAuditLogStream = "DBXTAG_AUDIT_LOG_STREAM"
	envAWSRegion      = "AWS_REGION"
)

// Accepted enum values.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"

	OutputText = "text"
	OutputJSON = "json"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// DotEnvFile is loaded from the working directory when present.
const DotEnvFile = ".env"

// Config holds every setting of a tagging run. Databricks credentials left
// empty are resolved by the SDK from DATABRICKS_* variables or
// ~/.databrickscfg.
type Config struct {
	Host    string `yaml:"host"`
	Token   string `yaml:"token"`
	Profile string `yaml:"profile"`

	TagKey   string `yaml:"tag_key"`
	TagValue string `yaml:"tag_value"`
	File     string `yaml:"file"`
	DryRun   bool   `yaml:"dry_run"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Output    string `yaml:"output"`

	AWSRegion      string `yaml:"aws_region"`
	AuditLogGroup  string `yaml:"audit_log_group"`
	AuditLogStream string `yaml:"audit_log_stream"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		TagKey:    tagger.DefaultTagKey,
		LogLevel:  "info",
		LogFormat: LogFormatConsole,
		Output:    OutputText,
	}
}

// Load builds a Config from defaults, then the YAML file at path (if path
// is not empty), then the environment. A .env file in the working directory
// is loaded first; it never overrides variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.TagKey, envTagKey)
	setString(&c.TagValue, envTagValue)
	setString(&c.File, envFile)
	setString(&c.LogLevel, envLogLevel)
	setString(&c.LogFormat, envLogFormat)
	setString(&c.Output, envOutput)
	setString(&c.AWSRegion, envAWSRegion)
	setString(&c.AuditLogGroup, envAuditLogGroup)
	setString(&c.AuditLogStream, envAuditLogStream)

	if v := os.Getenv(envDryRun); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envDryRun, v, err)
		}
		c.DryRun = b
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

// Validate returns every problem found in the configuration.
func (c *Config) Validate() []string {
	var errs []string

	if c.TagKey == "" {
		errs = append(errs, "tag key must not be empty")
	}
	if c.TagValue == "" {
		errs = append(errs, "tag value is required (--value)")
	}
	if c.File == "" {
		errs = append(errs, "identifier list is required (--file)")
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("log level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Sprintf("log format %q is not one of %s, %s", c.LogFormat, LogFormatConsole, LogFormatJSON))
	}
	if c.Output != OutputText && c.Output != OutputJSON {
		errs = append(errs, fmt.Sprintf("output %q is not one of %s, %s", c.Output, OutputText, OutputJSON))
	}
	if c.AuditLogStream != "" && c.AuditLogGroup == "" {
		errs = append(errs, "audit log stream is set but audit log group is empty")
	}
	return errs
}

// Workspace returns the Databricks connection settings.
func (c *Config) Workspace() tagger.WorkspaceConfig {
	return tagger.WorkspaceConfig{
		Host:    c.Host,
		Token:   c.Token,
		Profile: c.Profile,
	}
}

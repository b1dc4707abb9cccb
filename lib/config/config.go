// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable Load reads the config path
// from.
const EnvVar = "SLACKR_CONFIG"

// Log formats.
const (
	// FormatAuto picks text on a terminal and JSON otherwise.
	FormatAuto = "auto"
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the configuration shared by slackr binaries. Credentials
// never appear here: the file names the environment variables that
// hold them.
type Config struct {
	// APIURL is the Slack Web API base URL.
	// Default: https://slack.com/api/
	APIURL string `yaml:"api_url"`

	// AppTokenEnv names the variable holding the app-level token
	// (xapp-…) used only for the Socket Mode handshake.
	// Default: SLACK_APP_TOKEN
	AppTokenEnv string `yaml:"app_token_env"`

	// BotTokenEnv names the variable holding the bot token (xoxb-…)
	// used for Web API calls.
	// Default: SLACK_OAUTH_TOKEN
	BotTokenEnv string `yaml:"bot_token_env"`

	// AliasDB is the alias cache database file. ${VAR} and
	// ${VAR:-default} are expanded.
	// Default: ${HOME}/.cache/slackr/aliases.db
	AliasDB string `yaml:"alias_db"`

	// AliasMaxAge is how old the alias cache may get before
	// slackr-listen refreshes it at startup. Zero refreshes every time.
	// Default: 24h
	AliasMaxAge time.Duration `yaml:"alias_max_age"`

	// RulesFile is a JSONC routing rules file. Empty means the
	// built-in rule: print every message. Expanded like AliasDB.
	RulesFile string `yaml:"rules_file"`

	// HandlerTimeout bounds each handler through its context. Zero
	// means no bound.
	HandlerTimeout time.Duration `yaml:"handler_timeout"`

	// WriteTimeout bounds each socket write.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// LogLevel is one of debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// LogFormat is one of auto, text, json.
	// Default: auto
	LogFormat string `yaml:"log_format"`
}

// Default returns the default configuration. LoadFile decodes the file
// over these values, so a file only needs the fields it changes.
func Default() *Config {
	return &Config{
		APIURL:       "https://slack.com/api/",
		AppTokenEnv:  "SLACK_APP_TOKEN",
		BotTokenEnv:  "SLACK_OAUTH_TOKEN",
		AliasDB:      "${HOME}/.cache/slackr/aliases.db",
		AliasMaxAge:  24 * time.Hour,
		WriteTimeout: 10 * time.Second,
		LogLevel:     "info",
		LogFormat:    FormatAuto,
	}
}

// Load loads configuration from the file named by SLACKR_CONFIG.
// There is no discovery: if the variable is unset this fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your slackr.yaml config file, or use --config flag", EnvVar)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path, over Default(), and expands
// variables in path fields. Unknown keys are an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	// An empty file decodes as io.EOF and leaves the defaults.
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.ExpandVariables()
	return cfg, nil
}

// ExpandVariables expands ${VAR} and ${VAR:-default} in path fields.
// LoadFile calls it; callers building a Config by hand call it
// themselves.
func (c *Config) ExpandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.AliasDB = expandVars(c.AliasDB, vars)
	c.RulesFile = expandVars(c.RulesFile, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Level returns LogLevel as a slog.Level. Validate rejects values this
// cannot parse; for those it returns slog.LevelInfo.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Validate checks the configuration for errors. Every problem is
// reported, joined.
func (c *Config) Validate() error {
	var errs []error

	if parsed, err := url.Parse(c.APIURL); err != nil {
		errs = append(errs, fmt.Errorf("api_url: %w", err))
	} else if parsed.Scheme != "https" && parsed.Scheme != "http" {
		errs = append(errs, fmt.Errorf("api_url: scheme must be http or https, got %q", c.APIURL))
	}

	if c.AppTokenEnv == "" {
		errs = append(errs, errors.New("app_token_env is required"))
	}
	if c.BotTokenEnv == "" {
		errs = append(errs, errors.New("bot_token_env is required"))
	}
	if c.AppTokenEnv != "" && c.AppTokenEnv == c.BotTokenEnv {
		errs = append(errs, fmt.Errorf("app_token_env and bot_token_env must differ (both %s): "+
			"the app token only opens sockets and the bot token only calls the Web API", c.AppTokenEnv))
	}

	if c.AliasDB == "" {
		errs = append(errs, errors.New("alias_db is required"))
	}
	if c.AliasMaxAge < 0 {
		errs = append(errs, fmt.Errorf("alias_max_age must not be negative, got %s", c.AliasMaxAge))
	}
	if c.HandlerTimeout < 0 {
		errs = append(errs, fmt.Errorf("handler_timeout must not be negative, got %s", c.HandlerTimeout))
	}
	if c.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("write_timeout must not be negative, got %s", c.WriteTimeout))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %q is not one of debug, info, warn, error", c.LogLevel))
	}
	switch c.LogFormat {
	case FormatAuto, FormatText, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log_format: %q is not one of auto, text, json", c.LogFormat))
	}

	return errors.Join(errs...)
}

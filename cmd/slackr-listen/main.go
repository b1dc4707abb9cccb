// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// slackr-listen connects to Slack over Socket Mode and acts on
// message events according to routing rules: printing them with user
// and channel names resolved from the alias cache, or echoing them
// back through the Web API.
//
// Two credentials are read from the environment: the app-level token
// (SLACK_APP_TOKEN by default) opens the socket, and the bot token
// (SLACK_OAUTH_TOKEN by default) calls the Web API. The bot token is
// only needed for alias resolution and echo rules.
//
// The process exits when Slack closes the connection, when an
// acknowledgment cannot be sent, or on SIGINT/SIGTERM. It does not
// reconnect; run it under a supervisor for that.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bureau-foundation/slackr/aliasdb"
	"github.com/bureau-foundation/slackr/internal/cli"
	"github.com/bureau-foundation/slackr/lib/clock"
	"github.com/bureau-foundation/slackr/lib/config"
	"github.com/bureau-foundation/slackr/lib/version"
	"github.com/bureau-foundation/slackr/routing"
	"github.com/bureau-foundation/slackr/slackapi"
	"github.com/bureau-foundation/slackr/socketmode"
)

func main() {
	if err := run(); err != nil {
		os.Exit(cli.Report(os.Stderr, err))
	}
}

func run() error {
	var (
		configPath string
		rulesPath  string
		logFormat  string
		verbose    bool
		noAliases  bool
		plain      bool
	)

	flagSet := pflag.NewFlagSet("slackr-listen", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to slackr.yaml (default: $SLACKR_CONFIG, else built-in defaults)")
	flagSet.StringVar(&rulesPath, "rules", "", "JSONC routing rules file (overrides rules_file)")
	flagSet.StringVar(&logFormat, "log-format", "", "log format: auto, text, or json (overrides log_format)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolVar(&noAliases, "no-aliases", false, "print raw ids instead of resolving names")
	flagSet.BoolVar(&plain, "plain", false, "never style output, even on a terminal")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("slackr-listen")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return cli.Validation("%w", err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return cli.Validation("unexpected argument: %s", args[0])
	}

	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if rulesPath != "" {
		cfg.RulesFile = rulesPath
	}
	if logFormat != "" {
		if !slices.Contains([]string{config.FormatAuto, config.FormatText, config.FormatJSON}, logFormat) {
			return cli.Validation("--log-format must be auto, text, or json, got %q", logFormat)
		}
		cfg.LogFormat = logFormat
	}
	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	logger := cli.NewLogger(level, cfg.LogFormat)
	slog.SetDefault(logger)

	rules := routing.Default()
	if cfg.RulesFile != "" {
		rules, err = routing.Load(cfg.RulesFile)
		if err != nil {
			return cli.Validation("%w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return listen(ctx, cfg, rules, listenOptions{noAliases: noAliases, plain: plain}, logger)
}

type listenOptions struct {
	noAliases bool
	plain     bool
}

func listen(ctx context.Context, cfg *config.Config, rules *routing.File, options listenOptions, logger *slog.Logger) error {
	appToken, err := cli.LoadToken(cfg.AppTokenEnv, "app-level token (xapp-…) with the connections:write scope")
	if err != nil {
		return err
	}
	defer appToken.Close()

	needsEcho := slices.ContainsFunc(rules.Rules, func(rule routing.Rule) bool {
		return rule.Action == routing.ActionEcho
	})

	var api *slackapi.Client
	var botUserID string
	if needsEcho || !options.noAliases {
		botToken, err := cli.LoadToken(cfg.BotTokenEnv, "bot token (xoxb-…) with users:read, channels:read, and chat:write")
		if err != nil {
			return err
		}
		defer botToken.Close()

		api, err = slackapi.NewClient(slackapi.Config{APIURL: cfg.APIURL, Token: botToken, Logger: logger})
		if err != nil {
			return err
		}
		identity, err := api.AuthTest(ctx)
		if err != nil {
			return cli.Transient("checking bot token: %w", err)
		}
		botUserID = identity.UserID
		logger.Info("bot identity", "user_id", identity.UserID, "team", identity.Team)
	}

	var store *aliasdb.Store
	var names nameResolver
	if !options.noAliases {
		if err := os.MkdirAll(filepath.Dir(cfg.AliasDB), 0o700); err != nil {
			return fmt.Errorf("creating alias cache directory: %w", err)
		}
		store, err = aliasdb.Open(aliasdb.Config{Path: cfg.AliasDB, Logger: logger})
		if err != nil {
			return err
		}
		defer store.Close()

		if _, err := store.RefreshIfStale(ctx, api, cfg.AliasMaxAge); err != nil {
			logger.Warn("alias cache refresh failed, unresolved ids print as-is", "error", err)
		}
		names = store
	}

	var styles *lineStyles
	if !options.plain && cli.IsTerminal(os.Stdout) {
		styles = defaultStyles()
	}

	client, err := socketmode.NewClient(socketmode.Config{
		APIURL:         cfg.APIURL,
		AppToken:       appToken,
		HandlerTimeout: cfg.HandlerTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	acts := actions{
		printer:   &printer{out: os.Stdout, names: names, styles: styles, logger: logger},
		botUserID: botUserID,
		logger:    logger,
	}
	if api != nil {
		acts.poster = api
	}
	if err := registerRules(client, rules, acts); err != nil {
		return cli.Validation("%w", err)
	}

	if err := client.Connect(ctx); err != nil {
		var handshakeErr *socketmode.HandshakeError
		if errors.As(err, &handshakeErr) && handshakeErr.Code != "" {
			return cli.Validation("%w", err).
				WithHint("check that " + cfg.AppTokenEnv + " holds an app-level token and Socket Mode is enabled")
		}
		return cli.Transient("%w", err)
	}
	defer client.Close()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return client.Listen(groupCtx)
	})
	if store != nil && cfg.AliasMaxAge > 0 {
		group.Go(func() error {
			refreshAliases(groupCtx, clock.Real(), store, api, cfg.AliasMaxAge, logger)
			return nil
		})
	}

	err = group.Wait()
	switch {
	case ctx.Err() != nil:
		logger.Info("shutting down")
		return nil
	case errors.Is(err, socketmode.ErrStreamEnded):
		return cli.Transient("%w", err).WithHint("Slack closed the connection; run slackr-listen again to reconnect")
	default:
		return err
	}
}

// aliasRefresher is the refresh side of *aliasdb.Store.
type aliasRefresher interface {
	RefreshIfStale(ctx context.Context, directory aliasdb.Directory, maxAge time.Duration) (bool, error)
}

// refreshAliases keeps the alias cache within maxAge until ctx ends.
func refreshAliases(ctx context.Context, clk clock.Clock, store aliasRefresher, directory aliasdb.Directory, maxAge time.Duration, logger *slog.Logger) {
	ticker := clk.NewTicker(maxAge)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshed, err := store.RefreshIfStale(ctx, directory, maxAge)
			switch {
			case err != nil && ctx.Err() == nil:
				logger.Warn("periodic alias refresh failed", "error", err)
			case refreshed:
				logger.Debug("alias cache refreshed")
			}
		}
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `slackr-listen: act on Slack messages over Socket Mode.

Connects with the app-level token, acknowledges every event, and runs
the routing rules against it. Without a rules file, every message is
printed as "#channel user: text".

Usage:
  slackr-listen [flags]

Environment:
  SLACK_APP_TOKEN     app-level token (name set by app_token_env)
  SLACK_OAUTH_TOKEN   bot token (name set by bot_token_env)
  SLACKR_CONFIG       config file, if --config is not given

Examples:
  # Print every message with names resolved
  slackr-listen

  # Use a rules file, log JSON
  slackr-listen --rules rules.jsonc --log-format json

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

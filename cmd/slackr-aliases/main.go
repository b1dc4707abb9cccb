// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// slackr-aliases manages the local cache that maps Slack user and
// channel ids to names.
//
//	slackr-aliases refresh            fetch users and channels, rewrite the cache
//	slackr-aliases status             show when the cache was last refreshed
//	slackr-aliases resolve ID...      print the cached name for each id
//	slackr-aliases dump [KIND]        print stored records (users, channels)
//
// Only refresh talks to Slack; it needs the bot token named by
// bot_token_env. The other commands read the cache file alone.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/slackr/aliasdb"
	"github.com/bureau-foundation/slackr/internal/cli"
	"github.com/bureau-foundation/slackr/lib/codec"
	"github.com/bureau-foundation/slackr/lib/version"
	"github.com/bureau-foundation/slackr/slackapi"
)

func main() {
	if err := run(); err != nil {
		os.Exit(cli.Report(os.Stderr, err))
	}
}

func run() error {
	var (
		configPath string
		verbose    bool
	)

	flagSet := pflag.NewFlagSet("slackr-aliases", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to slackr.yaml (default: $SLACKR_CONFIG, else built-in defaults)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("slackr-aliases")
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

	args := flagSet.Args()
	command := "refresh"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		return err
	}
	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	logger := cli.NewLogger(level, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "refresh", "status", "resolve", "dump":
	default:
		return cli.Validation("unknown command %q", command).
			WithHint("run slackr-aliases --help for the command list")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.AliasDB), 0o700); err != nil {
		return fmt.Errorf("creating alias cache directory: %w", err)
	}
	store, err := aliasdb.Open(aliasdb.Config{Path: cfg.AliasDB, Logger: logger})
	if err != nil {
		return err
	}
	defer store.Close()

	switch command {
	case "refresh":
		if len(args) > 0 {
			return cli.Validation("refresh takes no arguments")
		}
		token, err := cli.LoadToken(cfg.BotTokenEnv, "bot token (xoxb-…) with users:read and channels:read")
		if err != nil {
			return err
		}
		defer token.Close()
		api, err := slackapi.NewClient(slackapi.Config{APIURL: cfg.APIURL, Token: token, Logger: logger})
		if err != nil {
			return err
		}
		stats, err := store.Setup(ctx, api)
		if err != nil {
			if slackapi.IsError(err, slackapi.ErrCodeMissingScope) {
				return cli.Validation("%w", err).WithHint("add users:read and channels:read to the bot and reinstall the app")
			}
			return cli.Transient("%w", err)
		}
		fmt.Fprintf(os.Stdout, "cached %d users and %d channels (%d deleted members skipped) in %s\n",
			stats.Users, stats.Channels, stats.DeletedMembers, cfg.AliasDB)
		return nil

	case "status":
		return printStatus(ctx, os.Stdout, store, cfg.AliasMaxAge, time.Now())

	case "resolve":
		if len(args) == 0 {
			return cli.Validation("resolve needs at least one id")
		}
		return resolveIDs(ctx, os.Stdout, store, args)

	default: // dump
		kinds := []aliasdb.Kind{aliasdb.KindUser, aliasdb.KindChannel}
		if len(args) > 0 {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			kinds = []aliasdb.Kind{kind}
		}
		return dumpRecords(ctx, os.Stdout, store, kinds)
	}
}

// aliasReader is the read side of *aliasdb.Store.
type aliasReader interface {
	ResolveUserName(ctx context.Context, userID string) (string, error)
	ResolveChannelName(ctx context.Context, channelID string) (string, error)
	LastRefresh(ctx context.Context) (time.Time, error)
	Records(ctx context.Context, kind aliasdb.Kind) ([]aliasdb.Record, error)
}

// kindOfID guesses the directory an id belongs to from its prefix.
// U and W are users (W for Enterprise Grid); C and G are channels.
// Direct message ids (D) are not cached.
func kindOfID(id string) (aliasdb.Kind, bool) {
	if id == "" {
		return "", false
	}
	switch id[0] {
	case 'U', 'W':
		return aliasdb.KindUser, true
	case 'C', 'G':
		return aliasdb.KindChannel, true
	}
	return "", false
}

func parseKind(name string) (aliasdb.Kind, error) {
	switch name {
	case "users", "user":
		return aliasdb.KindUser, nil
	case "channels", "channel":
		return aliasdb.KindChannel, nil
	}
	return "", cli.Validation("unknown kind %q (want users or channels)", name)
}

// resolveIDs prints "id<TAB>name" for each id. Ids missing from the
// cache print "-" and make the command fail after every id is shown.
// Every id is checked before anything is printed.
func resolveIDs(ctx context.Context, w io.Writer, store aliasReader, ids []string) error {
	kinds := make([]aliasdb.Kind, len(ids))
	for i, id := range ids {
		kind, ok := kindOfID(id)
		if !ok {
			return cli.Validation("%q is not a user or channel id", id)
		}
		kinds[i] = kind
	}

	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	missing := 0
	for i, id := range ids {
		kind := kinds[i]
		var name string
		var err error
		if kind == aliasdb.KindUser {
			name, err = store.ResolveUserName(ctx, id)
		} else {
			name, err = store.ResolveChannelName(ctx, id)
		}
		switch {
		case errors.Is(err, aliasdb.ErrNotFound):
			name = "-"
			missing++
		case err != nil:
			writer.Flush()
			return err
		case kind == aliasdb.KindChannel:
			name = "#" + name
		}
		fmt.Fprintf(writer, "%s\t%s\n", id, name)
	}
	if err := writer.Flush(); err != nil {
		return err
	}
	if missing > 0 {
		return cli.Validation("%d of %d ids not in the cache", missing, len(ids)).
			WithHint("run slackr-aliases refresh to update the cache")
	}
	return nil
}

func printStatus(ctx context.Context, w io.Writer, store aliasReader, maxAge time.Duration, now time.Time) error {
	refreshed, err := store.LastRefresh(ctx)
	if err != nil {
		return err
	}
	if refreshed.IsZero() {
		fmt.Fprintln(w, "never refreshed")
		return nil
	}
	age := now.Sub(refreshed).Truncate(time.Second)
	state := "fresh"
	if maxAge > 0 && age > maxAge {
		state = "stale"
	}
	fmt.Fprintf(w, "refreshed %s (%s ago, %s)\n", refreshed.UTC().Format(time.RFC3339), age, state)
	return nil
}

// dumpRecords prints each stored record in CBOR diagnostic notation.
func dumpRecords(ctx context.Context, w io.Writer, store aliasReader, kinds []aliasdb.Kind) error {
	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, kind := range kinds {
		records, err := store.Records(ctx, kind)
		if err != nil {
			return err
		}
		for _, record := range records {
			diagnostic, err := codec.Diagnose(record.Data)
			if err != nil {
				return fmt.Errorf("%s %s: %w", record.Kind, record.ID, err)
			}
			fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
				record.Kind, record.ID, record.UpdatedAt.UTC().Format(time.RFC3339), diagnostic)
		}
	}
	return writer.Flush()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `slackr-aliases: manage the Slack id-to-name cache.

Usage:
  slackr-aliases [flags] [command]

Commands:
  refresh          fetch users and channels from Slack (default)
  status           show when the cache was last refreshed
  resolve ID...    print cached names for user (U…, W…) or channel (C…, G…) ids
  dump [KIND]      print stored records; KIND is users or channels

Environment:
  SLACK_OAUTH_TOKEN   bot token used by refresh (name set by bot_token_env)
  SLACKR_CONFIG       config file, if --config is not given

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}

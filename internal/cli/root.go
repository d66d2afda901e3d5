// Package cli wires the monthcal commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"monthcal/internal/calendar"
	"monthcal/internal/config"
	"monthcal/internal/ics"
	appLog "monthcal/internal/log"
	"monthcal/internal/source"
)

// Version is set at build time with -ldflags "-X monthcal/internal/cli.Version=...".
var Version = "0.1.0-dev"

// app carries the flags and loaded state shared by all subcommands.
type app struct {
	configPath string
	month      string
	logLevel   string

	cfg *config.Config
}

// New builds the root command.
func New() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "monthcal",
		Short: "Month-view calendar with same-day conflict highlighting",
		Long: `monthcal renders a month grid of events loaded from local files or ICS
feeds, and flags events on the same day that share a time label.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.load()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "path to config file")
	root.PersistentFlags().StringVarP(&a.month, "month", "m", "", "month to display as yyyy-mm (default: current month)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(
		a.serveCmd(),
		a.showCmd(),
		a.agendaCmd(),
		a.snapshotCmd(),
		versionCmd(),
	)
	return root
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return New().ExecuteContext(ctx)
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	appLog.SetLevel(appLog.ParseLevel(level))
	appLog.Debug("config loaded", "path", a.configPath, "sources", len(cfg.Sources), "max_visible", cfg.MaxVisible)
	return nil
}

// ref resolves --month, defaulting to today.
func (a *app) ref() (calendar.Date, error) {
	if a.month == "" {
		return calendar.Today(), nil
	}
	d, err := calendar.ParseMonth(a.month)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("--month: %w", err)
	}
	return d, nil
}

// openStore builds the store and performs the initial load. Load errors of
// individual sources are logged, not fatal.
func (a *app) openStore(ctx context.Context) (*source.Store, error) {
	cacheDir, err := config.Expand(a.cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	store := source.NewStore(a.cfg.Sources, ics.NewFetcher(cacheDir, nil))
	if err := store.Reload(ctx); err != nil {
		appLog.Warn("some sources failed to load", "err", err)
	}
	return store, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "monthcal %s\n", Version)
		},
	}
}

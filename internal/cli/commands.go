package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"monthcal/internal/calendar"
	"monthcal/internal/capture"
	"monthcal/internal/config"
	appLog "monthcal/internal/log"
	"monthcal/internal/printer"
	"monthcal/internal/source"
	"monthcal/internal/tui"
	"monthcal/internal/view"
	"monthcal/internal/web"
)

func (a *app) serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the month view over HTTP",
		Example: `
monthcal serve
monthcal serve --listen :8080
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.Listen = listen
			}
			ctx := cmd.Context()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			if err := source.NewScheduler(store).Start(ctx, a.cfg.Reload); err != nil {
				return err
			}
			if a.cfg.Watch {
				w, err := watchSources(ctx, store)
				if err != nil {
					appLog.Error("file watching disabled", err)
				} else {
					defer w.Close()
				}
			}

			return web.NewServer(a.cfg, store).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	return cmd
}

func watchSources(ctx context.Context, store *source.Store) (*source.Watcher, error) {
	w, err := source.NewWatcher(func(path string) {
		appLog.Info("source changed, reloading", "path", path)
		if err := store.Reload(ctx); err != nil {
			appLog.Error("reload after change finished with errors", err)
		}
	})
	if err != nil {
		return nil, err
	}
	for _, p := range store.LocalPaths() {
		if err := w.Add(p); err != nil {
			appLog.Warn("cannot watch source", "path", p, "err", err)
		}
	}
	return w, nil
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Browse months interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.ref()
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if err := tui.Run(store, ref, a.cfg.MaxVisible); err != nil {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}
}

func (a *app) agendaCmd() *cobra.Command {
	var maxTitle uint

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print a month's events, marking conflicts",
		Example: `
monthcal agenda
monthcal agenda --month 2024-02
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := a.ref()
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}

			idx := store.Index()
			month := view.BuildMonth(ref, calendar.Today(), idx, a.cfg.MaxVisible)
			(&printer.Agenda{MaxTitle: maxTitle}).Print(cmd.OutOrStdout(), month, idx)
			appLog.Debug("agenda printed", "month", ref.MonthKey(), "summary", printer.Summary(month, idx))
			return nil
		},
	}
	cmd.Flags().UintVar(&maxTitle, "max-title", 60, "truncate titles to this width (0 disables)")
	return cmd
}

func (a *app) snapshotCmd() *cobra.Command {
	var (
		output string
		serve  bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture the rendered month page as a PNG",
		Long: `Capture /calendar with headless Chromium. With --serve, a temporary
server is started for the capture; otherwise a running "monthcal serve" (or
snapshot.url) is expected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			ref, err := a.ref()
			if err != nil {
				return err
			}
			if output == "" {
				output = a.cfg.Snapshot.Output
			}
			if output, err = config.Expand(output); err != nil {
				return err
			}

			if serve {
				store, err := a.openStore(ctx)
				if err != nil {
					return err
				}
				srv := web.NewServer(a.cfg, store)
				go func() {
					if err := srv.Run(ctx); err != nil {
						appLog.Error("snapshot server stopped", err)
					}
				}()
				if err := waitHealthy(ctx, "http://"+a.cfg.Listen+"/health", 5*time.Second); err != nil {
					return err
				}
			}

			return capture.CaptureCalendarPNG(ctx, capture.Options{
				URL:        a.cfg.SnapshotURL() + "?month=" + ref.MonthKey(),
				OutputPath: output,
				Width:      a.cfg.Snapshot.Width,
				Height:     a.cfg.Snapshot.Height,
				Timeout:    time.Duration(a.cfg.Snapshot.TimeoutSeconds) * time.Second,
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG output path (overrides config)")
	cmd.Flags().BoolVar(&serve, "serve", false, "start a temporary server for the capture")
	return cmd
}

var errNotHealthy = errors.New("server did not become healthy")

// waitHealthy polls url until it answers 200 or the timeout passes.
func waitHealthy(ctx context.Context, url string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: time.Second}
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return fmt.Errorf("%w: %s", errNotHealthy, url)
}

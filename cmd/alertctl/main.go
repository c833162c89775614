// Command alertctl is the MediTrack alert operations CLI.
//
// Usage:
//
//	alertctl migrate
//	alertctl tick --dry-run
//	alertctl token --user 42
//	alertctl watch --server http://localhost:8000 --token $TOKEN --desktop
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/albapepper/meditrack-alerts/internal/alerts"
	"github.com/albapepper/meditrack-alerts/internal/auth"
	"github.com/albapepper/meditrack-alerts/internal/client"
	"github.com/albapepper/meditrack-alerts/internal/config"
	"github.com/albapepper/meditrack-alerts/internal/db"
	"github.com/albapepper/meditrack-alerts/internal/push"
	"github.com/albapepper/meditrack-alerts/internal/reminder"
	"github.com/albapepper/meditrack-alerts/internal/schedule"
)

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "alertctl",
		Short: "MediTrack alert operations CLI",
	}

	root.AddCommand(migrateCmd())
	root.AddCommand(tickCmd())
	root.AddCommand(tokenCmd())
	root.AddCommand(watchCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// migrate command
// --------------------------------------------------------------------------

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the alert schema to DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
				return err
			}
			logger.Info("Schema applied")
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// tick command
// --------------------------------------------------------------------------

func tickCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run one matcher tick against the database and print the result",
		Long: "Runs one matcher tick. A real tick flips appointment flags and sends " +
			"push, so it needs DEDUP_BACKEND=redis to share the server's alert queue. " +
			"--dry-run matches without touching flags or sending push.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := checkTickMode(cfg.DedupBackend, dryRun); err != nil {
					return err
				}
				queue, closeQueue, err := alerts.OpenQueue(ctx, cfg)
				if err != nil {
					return err
				}
				defer closeQueue()

				store := schedule.NewPGStore(pool.Pool)
				var (
					marker   alerts.Marker
					notifier alerts.Notifier
				)
				if !dryRun {
					sender, err := push.NewSNSSender(ctx, cfg.SNSRegion, store, logger)
					if err != nil {
						return fmt.Errorf("configure push: %w", err)
					}
					marker, notifier = store, syncNotifier{sender}
				}

				dedup := alerts.NewDeduplicator(queue, marker, alerts.TTLs{
					Medicine:    cfg.MedicineAlertTTL,
					Appointment: cfg.AppointmentAlertTTL,
				}, notifier, logger)
				res := alerts.NewMatcher(store, dedup, time.Local, logger).Tick(ctx)

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Match without flipping appointment flags or sending push")
	return cmd
}

// checkTickMode refuses a real tick on a process-local queue: the flags it
// flips would hide those appointments from the server's matcher.
func checkTickMode(backend string, dryRun bool) error {
	if dryRun || backend == config.DedupRedis {
		return nil
	}
	return fmt.Errorf("tick with DEDUP_BACKEND=%s would mark appointments without queueing them on the server; use --dry-run or DEDUP_BACKEND=redis", backend)
}

// syncNotifier pushes inline so the command does not exit mid-send.
type syncNotifier struct{ sender *push.SNSSender }

func (n syncNotifier) Notify(ctx context.Context, a reminder.Alert) {
	if _, err := n.sender.Send(ctx, a); err != nil {
		logger.Warn("push failed", "key", a.Key, "error", err)
	}
}

// --------------------------------------------------------------------------
// token command
// --------------------------------------------------------------------------

func tokenCmd() *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, ttl, err := config.LoadAuth()
			if err != nil {
				return err
			}
			token, err := auth.NewManager(secret, ttl).Issue(userID)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id to put in the token")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// --------------------------------------------------------------------------
// watch command
// --------------------------------------------------------------------------

func watchCmd() *cobra.Command {
	cc := config.LoadClient()
	var logout bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the server and show due alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := client.NewShownCache(cc.ShownTTL, client.NewFileSession(cc.SessionFile), logger)
			api := client.NewAPIClient(cc.ServerURL, &http.Client{Timeout: 15 * time.Second})

			if logout {
				client.NewPoller(api, cache, client.MultiPresenter{}, cc.PollInterval, logger).Logout()
				logger.Info("Session cleared", "file", cc.SessionFile)
				return nil
			}
			if cc.Token == "" {
				return fmt.Errorf("a token is required (--token or WATCH_TOKEN)")
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			presenters := client.MultiPresenter{client.NewTerminalPresenter(cmd.OutOrStdout())}
			if cc.Desktop {
				desktop, err := client.NewDesktopPresenter(cc.DismissAfter, logger)
				if err != nil {
					logger.Warn("Desktop notifications unavailable", "error", err)
				} else {
					presenters = append(presenters, desktop)
				}
			}

			poller := client.NewPoller(api, cache, presenters, cc.PollInterval, logger)

			poller.Login(cc.Token)
			poller.Run(ctx)
			return nil
		},
	}
	cmd.Flags().StringVar(&cc.ServerURL, "server", cc.ServerURL, "Alert server base URL")
	cmd.Flags().StringVar(&cc.Token, "token", cc.Token, "Bearer token")
	cmd.Flags().DurationVar(&cc.PollInterval, "interval", cc.PollInterval, "Poll interval")
	cmd.Flags().DurationVar(&cc.ShownTTL, "shown-ttl", cc.ShownTTL, "How long a shown alert is suppressed")
	cmd.Flags().StringVar(&cc.SessionFile, "session-file", cc.SessionFile, "Where shown alerts are remembered")
	cmd.Flags().BoolVar(&cc.Desktop, "desktop", cc.Desktop, "Also raise desktop notifications over DBus")
	cmd.Flags().DurationVar(&cc.DismissAfter, "dismiss", cc.DismissAfter, "Desktop notification timeout")
	cmd.Flags().BoolVar(&logout, "logout", false, "Forget shown alerts and exit")
	return cmd
}

// --------------------------------------------------------------------------
// helpers
// --------------------------------------------------------------------------

func runWithDB(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}

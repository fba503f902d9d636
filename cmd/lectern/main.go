package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"lectern/internal/bootstrap"
	sessiondto "lectern/internal/modules/session/dto"
	statsdto "lectern/internal/modules/stats/dto"
	syncinadapter "lectern/internal/modules/sync/adapter/in"
	"lectern/internal/platform/config"
	apperrors "lectern/internal/platform/errors"
	"lectern/internal/platform/logger"
	"lectern/internal/ui/views/books"
)

const (
	drainTimeout    = 3 * time.Second
	defaultSchedule = "*/5 * * * *"
)

// pending tracks announcements started by announceDetached.
var pending sync.WaitGroup

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "lectern",
		Short:         "Offline-first reading sessions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (optional)")

	root.AddCommand(newBookCmd(&configPath))
	root.AddCommand(newSessionCmd(&configPath))
	root.AddCommand(newSyncCmd(&configPath))
	root.AddCommand(newPresenceCmd(&configPath))
	root.AddCommand(newStatusCmd(&configPath))
	root.AddCommand(newTUICmd(&configPath))
	root.AddCommand(newHubCmd(&configPath))
	return root
}

func loadConfig(configPath string) (config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger.New(os.Stderr, cfg.Log.Format, cfg.Log.Level), nil
}

// withApp opens the client, runs fn and tears everything down, waiting for
// in-flight presence announcements first.
func withApp(cmd *cobra.Command, configPath string, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	app, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	runErr := fn(ctx, app)

	if !waitTimeout(&pending, drainTimeout) {
		log.Warn("presence: connectivity check still running at exit")
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := app.PresenceCLI.Drain(drainCtx); err != nil {
		log.Warn("presence: announcements still pending at exit", "err", err)
	}
	return errors.Join(runErr, app.Close())
}

func newBookCmd(configPath *string) *cobra.Command {
	book := &cobra.Command{Use: "book", Short: "Book progress ledger"}

	var title string
	var chars, total int64
	add := &cobra.Command{
		Use:   "add <source-id>",
		Short: "Register a book or update its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.BookCLI.AddBook(ctx, args[0], title, chars, total)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "book %s (%s) at %d chars\n", out.Title, out.SourceID, out.CurrChars)
				return nil
			})
		},
	}
	add.Flags().StringVar(&title, "title", "", "book title")
	add.Flags().Int64Var(&chars, "chars", 0, "current character offset")
	add.Flags().Int64Var(&total, "total", 0, "total characters (0 = unknown)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.BookCLI.ListBooks(ctx)
				if err != nil {
					return err
				}
				if len(out) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no books")
					return nil
				}
				for _, b := range out {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d/%d\t%.1f%%\n", b.SourceID, b.Title, b.CurrChars, b.TotalChars, b.Percent)
				}
				return nil
			})
		},
	}

	book.AddCommand(add, list)
	return book
}

func newSessionCmd(configPath *string) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Reading session lifecycle"}

	session.AddCommand(&cobra.Command{
		Use:   "start <source-id>",
		Short: "Start reading a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Start(ctx, args[0])
				if err != nil {
					return err
				}
				if out.Session == nil {
					return fmt.Errorf("start %s: no session returned", args[0])
				}
				if !out.Applied {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session already active: %s\n", describeSession(*out.Session))
					return nil
				}
				title := args[0]
				if b, err := app.BookCLI.GetBook(ctx, args[0]); err == nil && b.Title != "" {
					title = b.Title
				}
				announceDetached(app, "reading", title)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session started: %s source=%s at=%d chars\n", out.Session.ID, out.Session.SourceID, out.Session.InitialChars)
				return nil
			})
		},
	})

	transition := func(use, short, done string, fn func(context.Context, *bootstrap.App, []string) (sessiondto.TransitionOutput, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
					out, err := fn(ctx, app, args)
					if err != nil {
						return err
					}
					switch {
					case out.Session == nil:
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
					case !out.Applied:
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "unchanged: %s\n", describeSession(*out.Session))
					default:
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", done, describeSession(*out.Session))
					}
					return nil
				})
			},
		}
	}
	session.AddCommand(transition("pause", "Pause the active session", "paused",
		func(ctx context.Context, app *bootstrap.App, _ []string) (sessiondto.TransitionOutput, error) {
			return app.SessionCLI.Pause(ctx)
		}))
	session.AddCommand(transition("resume", "Resume the active session", "resumed",
		func(ctx context.Context, app *bootstrap.App, _ []string) (sessiondto.TransitionOutput, error) {
			return app.SessionCLI.Resume(ctx)
		}))
	session.AddCommand(transition("progress <chars>", "Record the current character offset", "progress",
		func(ctx context.Context, app *bootstrap.App, args []string) (sessiondto.TransitionOutput, error) {
			if len(args) != 1 {
				return sessiondto.TransitionOutput{}, fmt.Errorf("%w: progress needs a character offset", apperrors.ErrInvalidInput)
			}
			chars, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || chars < 0 {
				return sessiondto.TransitionOutput{}, fmt.Errorf("%w: invalid character offset %q", apperrors.ErrInvalidInput, args[0])
			}
			return app.SessionCLI.Progress(ctx, chars)
		}))

	session.AddCommand(&cobra.Command{
		Use:   "finish",
		Short: "Finish the active session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.Finish(ctx)
				if err != nil {
					return err
				}
				if !out.Applied {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
					return nil
				}
				announceDetached(app, "idle", "")
				if out.Discarded {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session %s discarded (no progress)\n", out.Session.ID)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session finished: %s\n", describeSession(*out.Session))
				if out.JournalPath != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "journal: %s\n", out.JournalPath)
				}
				return nil
			})
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "show [session-id]",
		Short: "Show the active session or a session by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				var out sessiondto.SessionOutput
				var err error
				if len(args) == 1 {
					out, err = app.SessionCLI.Get(ctx, args[0])
				} else {
					out, err = app.SessionCLI.Current(ctx)
				}
				if errors.Is(err, apperrors.ErrNoActiveSession) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
					return nil
				}
				if err != nil {
					return err
				}
				printSession(cmd.OutOrStdout(), out)
				return nil
			})
		},
	})

	var sourceID string
	var openOnly bool
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recent first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SessionCLI.List(ctx, sourceID, openOnly, limit)
				if err != nil {
					return err
				}
				if len(out) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range out {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%d chars\n",
						s.ID, s.SourceID, s.State, books.Duration(s.TotalReadingTime), s.CharsRead)
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&sourceID, "book", "", "only sessions of this source id")
	list.Flags().BoolVar(&openOnly, "open", false, "only unfinished sessions")
	list.Flags().IntVar(&limit, "limit", 20, "maximum rows (0 = all)")
	session.AddCommand(list)
	return session
}

func newSyncCmd(configPath *string) *cobra.Command {
	syncCmd := &cobra.Command{Use: "sync", Short: "Reconcile with the hub"}

	syncCmd.AddCommand(&cobra.Command{
		Use:   "now",
		Short: "Run one sync",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				probe(ctx, app)
				out, err := app.SyncCLI.SyncNow(ctx)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sessions: pushed=%d pulled=%d  progress: pushed=%d pulled=%d  excluded=%d stale=%d\n",
					out.PushedSessions, out.PulledSessions, out.PushedProgress, out.PulledProgress, out.Excluded, out.Stale)
				return nil
			})
		},
	})

	syncCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show sync state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SyncCLI.Status(ctx)
				if err != nil {
					return err
				}
				last := "never"
				if !out.LastSyncAt.IsZero() {
					last = out.LastSyncAt.Format(time.RFC3339)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pending: %d\nlast sync (this process): %s\n", out.Pending, last)
				if out.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n", out.Error)
				}
				return nil
			})
		},
	})

	var limit int
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent sync runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SyncCLI.Activity(ctx, limit)
				if err != nil {
					return err
				}
				if len(out) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sync activity")
					return nil
				}
				for _, a := range out {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", a.OccurredAt.Format(time.RFC3339), a.Type, a.Message)
				}
				return nil
			})
		},
	}
	logCmd.Flags().IntVar(&limit, "limit", 20, "number of entries")

	var schedule string
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Sync on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				if schedule == "" {
					schedule = app.Schedule
				}
				if schedule == "" {
					schedule = defaultSchedule
				}
				if err := syncinadapter.ValidateSchedule(schedule); err != nil {
					return err
				}
				app.Scheduler.RunOnce(ctx)
				if err := app.Scheduler.Start(ctx, schedule); err != nil {
					return err
				}
				if next := app.Scheduler.NextRun(); next != nil {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "watching, next sync at %s\n", next.Format(time.RFC3339))
				}
				<-ctx.Done()
				return nil
			})
		},
	}
	watch.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default: sync.schedule or every 5 minutes)")
	syncCmd.AddCommand(logCmd, watch)
	return syncCmd
}

func newPresenceCmd(configPath *string) *cobra.Command {
	presence := &cobra.Command{Use: "presence", Short: "Online presence"}
	presence.AddCommand(&cobra.Command{
		Use:   "set <activity-type> [activity-name]",
		Short: "Announce what you are doing",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				name := ""
				if len(args) == 2 {
					name = args[1]
				}
				status := announce(ctx, app, args[0], name)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "presence %s (%s)\n", args[0], status)
				return nil
			})
		},
	})
	return presence
}

func newStatusCmd(configPath *string) *cobra.Command {
	var watch bool
	status := &cobra.Command{
		Use:   "status",
		Short: "Show reading totals, the active session and sync state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				probe(ctx, app)
				if !watch {
					snap, err := app.StatsCLI.Snapshot(ctx)
					if err != nil {
						return err
					}
					printSnapshot(cmd.OutOrStdout(), snap)
					return nil
				}
				cancel := app.StatsCLI.Watch(ctx, func(snap statsdto.SnapshotOutput, err error) {
					if err != nil {
						app.Log.Warn("status: refresh failed", "err", err)
						return
					}
					printSnapshot(cmd.OutOrStdout(), snap)
				})
				defer cancel()
				<-ctx.Done()
				return nil
			})
		},
	}
	status.Flags().BoolVar(&watch, "watch", false, "print again after every change until interrupted")
	return status
}

func newTUICmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the reading dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, *configPath, func(ctx context.Context, app *bootstrap.App) error {
				probe(ctx, app)
				if app.Schedule != "" {
					if err := app.Scheduler.Start(ctx, app.Schedule); err != nil {
						return err
					}
				}
				return bootstrap.RunTUI(app)
			})
		},
	}
}

func newHubCmd(configPath *string) *cobra.Command {
	hub := &cobra.Command{Use: "hub", Short: "Reference sync hub"}
	hub.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the hub API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			server, err := bootstrap.NewHubServer(cfg, log)
			if err != nil {
				return err
			}
			serveErr := server.Serve(cmd.Context())
			return errors.Join(serveErr, server.Close())
		},
	})
	return hub
}

// probe refreshes connectivity. Failure leaves the client offline, which
// every command tolerates.
func probe(ctx context.Context, app *bootstrap.App) string {
	status, err := app.ConnectivityCLI.Probe(ctx)
	if err != nil {
		app.Log.Debug("connectivity: probe failed", "err", err)
	}
	return status.State
}

// announce hands an activity to the presence announcer and reports the
// connectivity state that decides whether it is sent.
func announce(ctx context.Context, app *bootstrap.App, activityType, activityName string) string {
	state := probe(ctx, app)
	app.PresenceCLI.Set(activityType, activityName)
	return state
}

// announceDetached runs announce off the command path so a slow or
// unreachable hub never delays a session transition. withApp waits for it,
// bounded by drainTimeout.
func announceDetached(app *bootstrap.App, activityType, activityName string) {
	pending.Add(1)
	go func() {
		defer pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		announce(ctx, app, activityType, activityName)
	}()
}

// waitTimeout reports whether wg finished within d.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

func describeSession(s sessiondto.SessionOutput) string {
	return fmt.Sprintf("%s %s %s read, %d chars", s.ID, s.State, books.Duration(s.TotalReadingTime), s.CharsRead)
}

func printSession(w io.Writer, s sessiondto.SessionOutput) {
	_, _ = fmt.Fprintf(w, "id: %s\nbook: %s\nstate: %s\ntime: %s\nchars: %d -> %d\nstarted: %s\nlast active: %s\n",
		s.ID, s.SourceID, s.State, books.Duration(s.TotalReadingTime), s.InitialChars, s.CurrChars,
		s.StartTime.Format(time.RFC3339), s.LastActiveTime.Format(time.RFC3339))
	if s.EndTime != nil {
		_, _ = fmt.Fprintf(w, "finished: %s\n", s.EndTime.Format(time.RFC3339))
	}
}

func printSnapshot(w io.Writer, snap statsdto.SnapshotOutput) {
	_, _ = fmt.Fprintf(w, "%d sessions, %s read, %d chars\n", snap.Sessions, books.Duration(snap.TotalReadingTime), snap.CharsRead)
	if a := snap.Active; a != nil {
		_, _ = fmt.Fprintf(w, "active: %s (%s) %s\n", a.Title, a.State, books.Duration(a.TotalReadingTime))
	}
	for _, b := range snap.Books {
		_, _ = fmt.Fprintf(w, "  %-24s %s  %d sessions\n", truncate(b.Title, 24), books.Duration(b.ReadingTime), b.Sessions)
	}
	_, _ = fmt.Fprintf(w, "remote: %s  pending: %d\n", snap.Connectivity, snap.Sync.Pending)
	if snap.Sync.Error != "" {
		_, _ = fmt.Fprintf(w, "sync error: %s\n", snap.Sync.Error)
	}
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n-1])) + "…"
}

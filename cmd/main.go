package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"meetslot/internal/availability"
	"meetslot/internal/calendars"
	"meetslot/internal/dates"
	"meetslot/internal/finder"
	"meetslot/internal/models"
	"meetslot/internal/report"
	"meetslot/internal/server"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "meetslot",
		Usage: "Find the meeting times that suit the most people.",
		Commands: []*cli.Command{
			findCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// windowFlags are shared by every command that runs a search.
func windowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "duration", Value: 60, Usage: "Meeting duration in minutes.", EnvVars: []string{"MEETSLOT_DURATION"}},
		&cli.IntFlag{Name: "top", Value: availability.DefaultTop, Usage: "Number of top slots to show.", EnvVars: []string{"MEETSLOT_TOP"}},
		&cli.IntFlag{Name: "work-start", Value: availability.DefaultWindow.StartHour, Usage: "Work day start hour (0-23).", EnvVars: []string{"MEETSLOT_WORK_START"}},
		&cli.IntFlag{Name: "work-end", Value: availability.DefaultWindow.EndHour, Usage: "Work day end hour (0-23).", EnvVars: []string{"MEETSLOT_WORK_END"}},
		&cli.IntFlag{Name: "workers", Value: runtime.NumCPU(), Usage: "Slots analyzed concurrently.", EnvVars: []string{"MEETSLOT_WORKERS"}},
	}
}

func windowFromFlags(c *cli.Context) availability.WorkingWindow {
	w := availability.DefaultWindow
	w.Duration = time.Duration(c.Int("duration")) * time.Minute
	w.StartHour = c.Int("work-start")
	w.EndHour = c.Int("work-end")
	return w
}

func findCommand() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Rank meeting slots across the calendars in a JSON file.",
		ArgsUsage: "<calendars.json>",
		Flags: append(windowFlags(),
			&cli.StringFlag{Name: "start", Required: true, Usage: "Start date (MMDDYYYY)."},
			&cli.StringFlag{Name: "end", Required: true, Usage: "End date (MMDDYYYY), inclusive."},
			&cli.StringFlag{Name: "my-calendar", Usage: "Your calendar, as JSON or .ics."},
			&cli.StringSliceFlag{Name: "ics", Usage: "Add a person from an iCalendar file, as NAME=PATH. Repeatable."},
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON."},
		),
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL")).With("run_id", uuid.NewString())

			if c.NArg() < 1 && len(c.StringSlice("ics")) == 0 {
				return errors.New("a calendars JSON file or at least one --ics calendar is required")
			}

			start, err := dates.ParseCompactDate(c.String("start"))
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			end, err := dates.ParseCompactDate(c.String("end"))
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}

			loc, err := primaryTimeZone()
			if err != nil {
				return err
			}

			cals, err := loadPeople(logger, c.Args().First(), c.StringSlice("ics"), loc)
			if err != nil {
				return err
			}

			req := finder.Request{
				Calendars: cals,
				Start:     start,
				End:       end,
				Window:    windowFromFlags(c),
				Top:       c.Int("top"),
			}
			if path := c.String("my-calendar"); path != "" {
				mine, err := loadMyCalendar(logger, path, loc)
				if err != nil {
					return err
				}
				req.MyEvents = mine
			}

			res, err := finder.NewFinder(logger, c.Int("workers")).Find(c.Context, req)
			if err != nil {
				return fmt.Errorf("meeting search failed: %w", err)
			}

			if c.Bool("json") {
				return report.WriteJSON(os.Stdout, res.Slots)
			}
			return report.WriteText(os.Stdout, res.Slots, report.TextOptions{
				Duration:        req.Window.Duration,
				ShowMyConflicts: res.HasMyCalendar,
			})
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve meeting searches over HTTP.",
		Flags: append(windowFlags(),
			&cli.StringFlag{Name: "addr", Value: ":8080", Usage: "HTTP listen address.", EnvVars: []string{"MEETSLOT_ADDR"}},
		),
		Action: func(c *cli.Context) error {
			logger := setupLogger(os.Getenv("LOG_LEVEL"))

			defaults := server.Defaults{Window: windowFromFlags(c), Top: c.Int("top")}
			if err := defaults.Window.Validate(); err != nil {
				return err
			}

			srv := &http.Server{
				Addr:         c.String("addr"),
				Handler:      server.NewRouter(logger, finder.NewFinder(logger, c.Int("workers")), defaults),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 30 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Server listening.", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("Shutting down server.")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		},
	}
}

// loadPeople reads the calendars document, if any, followed by every NAME=PATH .ics argument.
func loadPeople(logger *slog.Logger, path string, icsArgs []string, loc *time.Location) ([]models.PersonCalendar, error) {
	cals := []models.PersonCalendar{}
	if path != "" {
		loaded, dropped, err := calendars.LoadCalendars(path)
		if err != nil {
			return nil, err
		}
		if dropped > 0 {
			logger.Warn("Skipped malformed events.", "file", path, "count", dropped)
		}
		cals = append(cals, loaded...)
	}

	for _, arg := range icsArgs {
		name, file, ok := strings.Cut(arg, "=")
		if !ok || name == "" || file == "" {
			return nil, fmt.Errorf("invalid --ics value %q, expected NAME=PATH", arg)
		}
		events, dropped, err := calendars.LoadICS(file, loc)
		if err != nil {
			return nil, err
		}
		if dropped > 0 {
			logger.Warn("Skipped events without usable times.", "file", file, "count", dropped)
		}
		cals = append(cals, models.PersonCalendar{Name: name, Events: events})
	}

	logger.Info("Loaded calendars.", "people", len(cals))
	return cals, nil
}

// loadMyCalendar reads the caller's own calendar; .ics files are decoded as iCalendar.
func loadMyCalendar(logger *slog.Logger, path string, loc *time.Location) ([]models.Event, error) {
	var (
		events  []models.Event
		dropped int
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".ics") {
		events, dropped, err = calendars.LoadICS(path, loc)
	} else {
		events, dropped, err = calendars.LoadEvents(path)
	}
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		logger.Warn("Skipped unreadable records in own calendar.", "file", path, "count", dropped)
	}
	if events == nil {
		events = []models.Event{}
	}
	return events, nil
}

// primaryTimeZone is the zone iCalendar times are projected into before analysis.
func primaryTimeZone() (*time.Location, error) {
	tzStr := os.Getenv("PRIMARY_TIMEZONE")
	if tzStr == "" {
		tzStr = "UTC"
	}
	loc, err := time.LoadLocation(tzStr)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", tzStr, err)
	}
	return loc, nil
}

func setupLogger(level string) *slog.Logger {
	return newLogger(os.Stderr, level)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

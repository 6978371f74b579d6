package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/erazemk/shramba/internal/cli"
	"github.com/erazemk/shramba/internal/config"
	"github.com/erazemk/shramba/internal/db"
	"github.com/erazemk/shramba/internal/model"
	"github.com/erazemk/shramba/internal/pantry"
	"github.com/erazemk/shramba/internal/store"
)

// levelRouter is a slog.Handler that sends each record to the console and,
// if set, to the log file, each with its own minimum level.
type levelRouter struct {
	console      slog.Handler
	consoleLevel slog.Level
	file         slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.consoleLevel || (lr.file != nil && level >= slog.LevelDebug)
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	if r.Level >= lr.consoleLevel {
		errs = append(errs, lr.console.Handle(ctx, r))
	}
	if lr.file != nil {
		errs = append(errs, lr.file.Handle(ctx, r.Clone()))
	}
	return errors.Join(errs...)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &levelRouter{console: lr.console.WithAttrs(attrs), consoleLevel: lr.consoleLevel}
	if lr.file != nil {
		out.file = lr.file.WithAttrs(attrs)
	}
	return out
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	out := &levelRouter{console: lr.console.WithGroup(name), consoleLevel: lr.consoleLevel}
	if lr.file != nil {
		out.file = lr.file.WithGroup(name)
	}
	return out
}

// setupLogger configures structured logging. The console is stderr so that
// command output on stdout stays clean; it shows WARN and above, or
// everything when verbose is set. If logPath is non-empty, all levels are
// also appended to that file. Returns a cleanup function that closes the log
// file (if opened).
func setupLogger(stderr io.Writer, logPath string, verbose bool) (*slog.Logger, func(), error) {
	consoleLevel := slog.LevelWarn
	if verbose {
		consoleLevel = slog.LevelDebug
	}

	handler := &levelRouter{
		console:      slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: consoleLevel}),
		consoleLevel: consoleLevel,
	}

	cleanup := func() {}
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		handler.file = slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("shramba", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", config.DefaultFile, "")
	fs.StringVar(&configPath, "c", config.DefaultFile, "")

	var envPath string
	fs.StringVar(&envPath, "env", config.DefaultEnvFile, "")
	fs.StringVar(&envPath, "e", config.DefaultEnvFile, "")

	var dbPath string
	fs.StringVar(&dbPath, "db", "", "")
	fs.StringVar(&dbPath, "d", "", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	var threshold int
	fs.IntVar(&threshold, "threshold", 0, "")
	fs.IntVar(&threshold, "t", 0, "")

	var verbose bool
	fs.BoolVar(&verbose, "verbose", false, "")
	fs.BoolVar(&verbose, "v", false, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: shramba [flags] <command> [args]

Flags:
  -c, -config <path>      YAML config file (default: shramba.yaml)
  -e, -env <path>         dotenv file (default: .env)
  -d, -db <path>          SQLite database path (default: shramba.db)
  -l, -log <path>         log file path (default: no file, stderr only)
  -t, -threshold <days>   days before expiry that count as soon (default: 30)
  -v, -verbose            log everything to stderr
  -h, -help               show this help and exit

`+cli.Usage)
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	cfg, err := config.Load(configPath, envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db", "d":
			cfg.DB = dbPath
		case "log", "l":
			cfg.Log = logPath
		case "threshold", "t":
			cfg.ThresholdDays = threshold
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	logger, closeLog, err := setupLogger(os.Stderr, cfg.Log, verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DB)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return 1
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		logger.Error("failed to ensure database schema", "error", err)
		return 1
	}
	logger.Debug("database ready", "path", cfg.DB)

	p := pantry.New(&store.SQLite{DB: database},
		pantry.WithLogger(logger),
		pantry.WithThreshold(cfg.ThresholdDays),
		pantry.WithMergeOnAdd(cfg.MergeOnAdd),
	)
	if err := p.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	app := &cli.App{
		Pantry:   p,
		DB:       database,
		Out:      os.Stdout,
		Err:      os.Stderr,
		ShowZero: cfg.ShowZero,
		Sort:     cfg.SortKey(),
	}
	err = app.Run(ctx, fs.Args())
	switch {
	case err == nil:
		return 0
	case errors.Is(err, model.ErrPersistence):
		fmt.Fprintf(os.Stderr, "warning: the change was made but could not be saved: %v\n", err)
		return 2
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
}

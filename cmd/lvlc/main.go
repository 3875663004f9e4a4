// Command lvlc compiles level source documents (.json, optionally .yaml) into
// binary .lvl files.
//
// Usage:
//
//	lvlc                      # compile every source next to the executable
//	lvlc assets/levels        # compile every source in a directory
//	lvlc -watch assets/levels # compile, then recompile on change until interrupted
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
	"path/filepath"
	"strings"
	"syscall"

	"github.com/udisondev/lvlc/internal/compiler"
	"github.com/udisondev/lvlc/internal/config"
	"github.com/udisondev/lvlc/internal/db"
	"github.com/udisondev/lvlc/internal/watch"
)

const ConfigPath = "config/lvlc.yaml"

// errFilesFailed marks a run where at least one file failed to compile.
// Per-file errors are already printed, so main only sets the exit status.
var errFilesFailed = errors.New("some levels failed to compile")

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errFilesFailed) {
			slog.Error("compilation failed", "err", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("lvlc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "path to config file (default $LVLC_CONFIG or "+ConfigPath+")")
	workers := fs.Int("workers", 0, "number of files compiled in parallel (overrides config)")
	watchMode := fs.Bool("watch", false, "keep running and recompile sources on change")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("expected at most one directory argument, got %d", fs.NArg())
	}

	// Load config
	path := *cfgPath
	if path == "" {
		path = ConfigPath
		if p := os.Getenv("LVLC_CONFIG"); p != "" {
			path = p
		}
	}
	cfg, err := config.LoadCompiler(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	// Configure slog
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: level,
	})))

	dir, err := targetDir(fs.Arg(0))
	if err != nil {
		return err
	}
	slog.Debug("config loaded", "dir", dir, "workers", cfg.Workers, "sources", cfg.SourceExtensions, "ledger", cfg.Ledger.Enabled)

	ledger, closeLedger := openLedger(ctx, cfg, dir)
	defer closeLedger()

	var rec compiler.Recorder
	if ledger != nil {
		rec = ledger
	}

	c := compiler.New(compiler.Options{
		SourceExtensions: cfg.SourceExtensions,
		OutputExtension:  cfg.OutputExtension,
		Workers:          cfg.Workers,
		Recorder:         rec,
		OnResult:         func(r compiler.Result) { printResult(stdout, r) },
	})

	files, err := c.FindSources(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(stdout, "[lvlc] no %s files found in %s\n", strings.Join(cfg.SourceExtensions, "/"), dir)
	} else {
		fmt.Fprintf(stdout, "[lvlc] compiling %d level(s) from %s\n", len(files), dir)
	}

	report, err := c.CompileFiles(ctx, dir, files)
	if err != nil {
		return err
	}
	if ledger != nil {
		ledger.finish(ctx, report)
	}

	switch {
	case len(report.Results) == 0:
	case report.Failed > 0:
		fmt.Fprintf(stdout, "[lvlc] encountered %d error(s) during compilation\n", report.Failed)
	default:
		fmt.Fprintln(stdout, "[lvlc] all levels compiled successfully")
	}

	if *watchMode {
		return watchDir(ctx, c, dir, cfg)
	}
	if report.Failed > 0 {
		return errFilesFailed
	}
	return nil
}

// targetDir returns arg, or the directory containing the executable.
func targetDir(arg string) (string, error) {
	if arg != "" {
		return filepath.Abs(arg)
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

func printResult(w io.Writer, r compiler.Result) {
	if r.OK() {
		fmt.Fprintf(w, "[lvlc] wrote %s (planets=%d enemies=%d)\n", r.Output, r.Planets, r.Enemies)
		return
	}
	fmt.Fprintf(w, "[lvlc] error: failed to compile %s: %v\n", filepath.Base(r.Source), r.Err)
}

// openLedger connects the build ledger when enabled. Ledger problems are
// logged and compilation continues without it.
func openLedger(ctx context.Context, cfg config.Compiler, dir string) (*ledgerRecorderAdapter, func()) {
	noop := func() {}
	if !cfg.Ledger.Enabled {
		return nil, noop
	}

	dsn := cfg.Ledger.Database.DSN()
	database, err := db.New(ctx, dsn)
	if err != nil {
		slog.Warn("ledger disabled", "err", err)
		return nil, noop
	}
	version, err := db.RunMigrations(ctx, dsn)
	if err != nil {
		database.Close()
		slog.Warn("ledger disabled", "err", err)
		return nil, noop
	}
	slog.Debug("ledger schema ready", "version", version)

	repo := db.NewLedgerRepository(database.Pool())
	runID, err := repo.BeginRun(ctx, dir)
	if err != nil {
		database.Close()
		slog.Warn("ledger disabled", "err", err)
		return nil, noop
	}
	slog.Info("ledger run started", "run_id", runID)
	return &ledgerRecorderAdapter{store: repo, runID: runID}, database.Close
}

func watchDir(ctx context.Context, c *compiler.Compiler, dir string, cfg config.Compiler) error {
	w, err := watch.New(dir, c.Matches, cfg.WatchDebounce)
	if err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	defer w.Close()

	slog.Info("watching for changes", "dir", dir)
	w.Serve(ctx, func(path string) {
		if _, err := os.Stat(path); err != nil {
			slog.Debug("source gone", "file", path)
			return
		}
		c.CompileFile(ctx, path)
	})
	return nil
}

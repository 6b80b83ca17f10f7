package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/devcybiko/junk-email/aggregate"
	"github.com/devcybiko/junk-email/config"
	"github.com/devcybiko/junk-email/filter"
	"github.com/devcybiko/junk-email/imap"
	"github.com/devcybiko/junk-email/mbox"
	"github.com/devcybiko/junk-email/progress"
	"github.com/devcybiko/junk-email/report"
	"github.com/devcybiko/junk-email/scan"
	"github.com/devcybiko/junk-email/state"
	"github.com/devcybiko/junk-email/stats"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "junk-email",
		Short: "Scan a mailbox folder and report email addresses ranked by frequency",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cmd)
			if err != nil {
				return err
			}

			logger, cleanup, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = cleanup()
			}()

			slog.SetDefault(logger)
			logger.Info("starting junk-email", "host", cfg.IMAPHost, "folder", cfg.Folder, "mbox", cfg.MboxPath, "headersOnly", cfg.HeadersOnly)

			return run(cfg, logger)
		},
	}

	if err := config.RegisterFlags(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register CLI flags: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	started := time.Now()

	f, err := filter.New(filter.Options{
		IncludeSender:  cfg.IncludeSender,
		IncludeSubject: cfg.IncludeSubject,
		IncludeBody:    cfg.IncludeBody,
		ExcludeSender:  cfg.ExcludeSender,
		ExcludeSubject: cfg.ExcludeSubject,
		ExcludeBody:    cfg.ExcludeBody,
	})
	if err != nil {
		return fmt.Errorf("filter.New: %w", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		return fmt.Errorf("state store: %w", err)
	}

	seed, err := store.Load()
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	if len(seed) > 0 {
		logger.Info("resuming from previous counts", "addresses", len(seed))
	}

	agg := aggregate.New()
	agg.Seed(seed)

	bar := progress.New(cfg.LogLevel)
	collector := stats.NewCollector()

	scanner := scan.New(agg, scan.Options{
		Filter:    f,
		Collector: collector,
		Logger:    logger,
		Progress:  bar.Increment,
		OnError:   bar.Error,
	})

	src, err := newSource(cfg, bar, logger)
	if err != nil {
		return err
	}

	scanErr := scanner.Run(context.Background(), src)
	bar.Stop()

	summary := collector.Snapshot()
	attrs := append(summary.LogAttrs(), "duration", time.Since(started))
	if scanErr != nil {
		logger.Error("scan failed", append(attrs, "err", scanErr)...)
		return scanErr
	}
	logger.Info("scan completed", attrs...)

	rep := report.Build(agg)
	rep.Print(cfg.Top)

	if cfg.OutputPath != "" {
		if err := rep.Save(cfg.OutputPath); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		logger.Info("report saved", "path", cfg.OutputPath)
	}

	if err := store.Save(agg.Counts()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	return nil
}

func newStore(cfg config.Config) (state.Store, error) {
	if cfg.NoState {
		return state.NewMemoryStore(), nil
	}
	return state.NewFileStore(cfg.StateDir)
}

func newSource(cfg config.Config, bar *progress.Bar, logger *slog.Logger) (scan.Source, error) {
	if cfg.MboxPath != "" {
		total, err := mbox.Count(cfg.MboxPath)
		if err != nil {
			return nil, fmt.Errorf("count mbox messages: %w", err)
		}
		bar.Start(total)

		src, err := mbox.NewSource(cfg.MboxPath, logger)
		if err != nil {
			return nil, fmt.Errorf("mbox.NewSource: %w", err)
		}
		return src, nil
	}

	src, err := imap.NewSource(imap.Options{
		Host:               cfg.IMAPHost,
		Port:               cfg.IMAPPort,
		Username:           cfg.IMAPUser,
		Password:           cfg.IMAPPass,
		UseTLS:             cfg.UseTLS,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Folder:             cfg.Folder,
		BatchSize:          cfg.BatchSize,
		Limit:              cfg.Limit,
		HeadersOnly:        cfg.HeadersOnly,
		OnSelect:           bar.Start,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("imap.NewSource: %w", err)
	}
	return src, nil
}

func setupLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}

	opts := &slog.HandlerOptions{Level: level}
	cleanup := func() error { return nil }

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, cleanup, err
		}

		logFilePath := filepath.Join(cfg.LogDir, fmt.Sprintf("junk-email-%s.log", time.Now().Format("20060102T150405")))
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, err
		}

		handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), opts)
		cleanup = func() error {
			return file.Close()
		}
		return slog.New(handler), cleanup, nil
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler), cleanup, nil
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/secopslab/playtrack/internal/actiontable"
	"github.com/secopslab/playtrack/internal/api"
	"github.com/secopslab/playtrack/internal/config"
	"github.com/secopslab/playtrack/internal/library"
	"github.com/secopslab/playtrack/internal/progress"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.PlaybooksDir, 0o755); err != nil {
		log.Error("failed to create playbooks dir", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.ProgressDir, 0o755); err != nil {
		log.Error("failed to create progress dir", "error", err)
		os.Exit(1)
	}

	heur, err := config.LoadHeuristics(cfg.HeuristicsFile)
	if err != nil {
		log.Error("invalid heuristics file", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lib := library.New(library.Config{
		Dir:            cfg.PlaybooksDir,
		ExcludedTitles: heur.ExcludedTitles,
		Heuristics: actiontable.Heuristics{
			HeaderKeywords: heur.HeaderKeywords,
			OwnerPhrases:   heur.OwnerPhrases,
		},
		IndexTTL:             cfg.SearchIndexTTL,
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
	}, log)

	if cfg.WatchPlaybooks {
		go func() {
			if err := lib.Watch(ctx); err != nil {
				log.Warn("playbook watcher unavailable", "error", err)
			}
		}()
	}

	store := progress.NewStore(cfg.ProgressDir, log)
	srv := api.NewServer(lib, store, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		lib.Close()
	}()

	log.Info("starting playtrack", "port", cfg.Port, "playbooks_dir", cfg.PlaybooksDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/dgallion1/docpager/internal/api"
	"github.com/dgallion1/docpager/internal/config"
	"github.com/dgallion1/docpager/internal/kv"
	"github.com/dgallion1/docpager/internal/render"
	"github.com/dgallion1/docpager/internal/viewer"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("loading configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.SlogLevel()
	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := kv.Open(kv.Options{
		Backend:         cfg.StoreBackend,
		SQLitePath:      cfg.SQLitePath,
		PathstoreURL:    cfg.PathstoreURL,
		PathstoreAPIKey: cfg.PathstoreAPIKey,
	})
	if err != nil {
		log.Error("opening preference store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	lib, err := viewer.NewLibrary(cfg.DocsDir, cfg.MaxDocumentBytes, render.Config{
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
	}, log)
	if err != nil {
		store.Close()
		log.Error("opening document library", "dir", cfg.DocsDir, "error", err)
		os.Exit(1)
	}

	svc := viewer.NewService(lib, store, log, cfg.ViewTTL)
	svc.PrefsTimeout = cfg.PrefsTimeout
	svc.Start(ctx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(svc, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		err := httpServer.Shutdown(shutdownCtx)

		svc.Stop()
		err = multierr.Append(err, store.Close())
		err = multierr.Append(err, lib.Close())
		if err != nil {
			log.Error("shutdown", "error", err)
		}
	}()

	log.Info("starting docpager", "port", cfg.Port, "docs_dir", cfg.DocsDir, "store", cfg.StoreBackend)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}

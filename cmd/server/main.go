package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"projectdir/internal/activity"
	"projectdir/internal/audit"
	"projectdir/internal/ingest"
	"projectdir/internal/platform/config"
	"projectdir/internal/platform/httpserver"
	"projectdir/internal/platform/logger"
	"projectdir/internal/platform/metrics"
	"projectdir/internal/platform/postgres"
	"projectdir/internal/project"
	"projectdir/internal/selection"
	httptransport "projectdir/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store project.Store = project.NewInMemory()
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()

		pg := project.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("failed to apply schema", "error", err.Error())
			os.Exit(1)
		}
		store = pg
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
	}

	auditSink, err := audit.NewFileSink(cfg.AuditLogPath)
	if err != nil {
		log.Error("failed to open audit log", "error", err.Error())
		os.Exit(1)
	}
	defer auditSink.Close()

	activityLog, err := activity.Open(cfg.ActivityLogPath, log)
	if err != nil {
		log.Error("failed to open activity log", "error", err.Error())
		os.Exit(1)
	}
	defer activityLog.Close()

	handler := httptransport.NewHandler(
		ingest.New(store, auditSink, log, m),
		selection.New(store, log, m),
		log,
	)
	router := httptransport.NewRouter(handler, m, activityLog.Middleware)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting projectdir", "addr", cfg.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	githubadapter "github.com/ericfisherdev/contribsync/internal/adapter/driven/github"
	sqliteadapter "github.com/ericfisherdev/contribsync/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/contribsync/internal/adapter/driving/http"
	"github.com/ericfisherdev/contribsync/internal/application"
	"github.com/ericfisherdev/contribsync/internal/config"
	"github.com/ericfisherdev/contribsync/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"sync_interval", cfg.SyncInterval,
		"lookback_days", cfg.LookbackDays,
		"enterprise", cfg.HasEnterprise(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire stores.
	repoStore := sqliteadapter.NewRepoRepo(db)
	activityStore := sqliteadapter.NewActivityRepo(db)

	// 6. Create GitHub clients. Either may be absent; repositories whose host
	// has no client are skipped at sweep time.
	var publicClient driven.GitHubClient
	if cfg.GitHubToken != "" {
		publicClient = githubadapter.NewClient(cfg.GitHubToken)
		slog.Info("github client created", "host", "github.com")
	} else {
		slog.Info("no github token configured, public repositories will not sync")
	}

	var enterpriseClient driven.GitHubClient
	if cfg.HasEnterprise() {
		enterpriseClient, err = githubadapter.NewEnterpriseClient(cfg.EnterpriseToken, cfg.EnterpriseBaseURL)
		if err != nil {
			return err
		}
		slog.Info("github enterprise client created", "base_url", cfg.EnterpriseBaseURL)
	}

	clients := application.NewClientSelector(publicClient, enterpriseClient)

	// 7. Create and start the sync service.
	syncSvc := application.NewSyncService(
		clients,
		repoStore,
		activityStore,
		cfg.SyncInterval,
		cfg.LookbackDays,
	)
	go syncSvc.Start(ctx)

	// 8. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(repoStore, activityStore, syncSvc, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("contribsync started",
		"listen_addr", cfg.ListenAddr,
		"sync_interval", cfg.SyncInterval,
	)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

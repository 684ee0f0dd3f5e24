package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/quickly-elect/auth"
	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/db"
	"github.com/danielhkuo/quickly-elect/lifecycle"
	"github.com/danielhkuo/quickly-elect/metrics"
	"github.com/danielhkuo/quickly-elect/middleware"
	"github.com/danielhkuo/quickly-elect/publish"
	"github.com/danielhkuo/quickly-elect/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	anonymizer, err := auth.NewAnonymizer(cfg.VoteSecret)
	if err != nil {
		slog.Error("anonymizer setup failed", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	metrics.InitPrometheusMetrics()

	publishers := publish.Multi{publish.LogPublisher{}}
	if cfg.WebhookURL != "" {
		publishers = append(publishers, publish.NewWebhookPublisher(cfg.WebhookURL, publish.WebhookOptions{}))
		slog.Info("Publishing results to webhook", "url", cfg.WebhookURL)
	}

	manager, err := lifecycle.New(lifecycle.Options{
		Store:            db.NewStore(dbConn),
		Publisher:        publishers,
		Anonymizer:       anonymizer,
		DefaultDuration:  cfg.DefaultDuration,
		DefaultThreshold: cfg.DefaultThreshold,
	})
	if err != nil {
		slog.Error("lifecycle manager setup failed", "error", err)
		os.Exit(1)
	}
	defer manager.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Re-arm deadlines and close anything that expired while we were down
	if err := manager.Recover(ctx); err != nil {
		slog.Error("recovery finished with errors", "error", err)
	}

	// Create server
	server := http.Server{
		Handler: middleware.CORS(router.NewRouter(manager, cfg)),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

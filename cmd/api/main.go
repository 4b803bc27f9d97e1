package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/deewanshi/carcenter/internal/api/router"
	"github.com/deewanshi/carcenter/internal/appointments"
	appconfig "github.com/deewanshi/carcenter/internal/config"
	"github.com/deewanshi/carcenter/internal/dialogue"
	"github.com/deewanshi/carcenter/internal/http/handlers"
	"github.com/deewanshi/carcenter/internal/observability/metrics"
	"github.com/deewanshi/carcenter/internal/schedule"
	"github.com/deewanshi/carcenter/internal/speech"
	"github.com/deewanshi/carcenter/pkg/logging"
	"github.com/deewanshi/carcenter/web"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting carcenter API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", cfg.StoreBackend,
	)

	store := buildStore(cfg, logger)

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	sessions := dialogue.NewRedisSessionStore(redisClient, cfg.SessionTTL, nil)
	finder := schedule.NewFinder(store, cfg.LookaheadDays)
	svc := dialogue.NewService(sessions, store, finder, logger.Logger)

	// Cloud speech is optional; without it the page uses browser
	// recognition and POST /transcribe answers 503.
	var transcriber speech.Transcriber
	if gt, err := speech.NewGoogleTranscriber(context.Background(), cfg.GoogleCredentialsFile, cfg.SpeechLanguage); err != nil {
		logger.Warn("speech recognition unavailable", "error", err)
	} else {
		transcriber = gt
		defer gt.Close()
	}

	m := metrics.NewAssistantMetrics(nil)
	assistant := handlers.NewAssistant(svc, store, transcriber, m, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Assistant:          assistant,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		WebAssets:          web.Assets,
		RateLimit:          cfg.RateLimit,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildStore(cfg *appconfig.Config, logger *logging.Logger) appointments.Store {
	switch cfg.StoreBackend {
	case "file":
		store, err := appointments.NewFileStore(cfg.AppointmentsFile)
		if err != nil {
			logger.Error("failed to open appointments file", "path", cfg.AppointmentsFile, "error", err)
			os.Exit(1)
		}
		return store
	default:
		if cfg.DatabaseURL == "" {
			logger.Error("DATABASE_URL is required for the postgres store")
			os.Exit(1)
		}
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		return appointments.NewPostgresStore(db)
	}
}

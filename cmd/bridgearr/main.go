package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bridgearr/bridgearr/internal/api"
	"github.com/bridgearr/bridgearr/internal/config"
	"github.com/bridgearr/bridgearr/internal/database"
	"github.com/bridgearr/bridgearr/internal/jackett"
	"github.com/bridgearr/bridgearr/internal/logger"
	"github.com/bridgearr/bridgearr/internal/notification"
	"github.com/bridgearr/bridgearr/internal/notification/webhook"
	"github.com/bridgearr/bridgearr/internal/plugin"
	"github.com/bridgearr/bridgearr/internal/prowlarr"
	"github.com/bridgearr/bridgearr/internal/scheduler"
	"github.com/bridgearr/bridgearr/internal/sites"
	"github.com/bridgearr/bridgearr/internal/startup"
	"github.com/bridgearr/bridgearr/internal/subscription"
	"github.com/bridgearr/bridgearr/internal/trakt"
)

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Path:   cfg.Logging.Path,
	})
	defer log.Close()

	log.Info().Str("logLevel", cfg.Logging.Level).Msg("starting bridgearr")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Msg("running database migrations")
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	registry := sites.NewRegistry(db.Conn(), log.Logger)
	configStore := plugin.NewConfigStore(db.Conn())
	subs := subscription.NewService(db.Conn(), log.Logger)

	notifier := notification.NewService(log.Logger)
	if cfg.Notification.WebhookURL != "" {
		notifier.Register(webhook.New("default", webhook.Settings{
			URL:      cfg.Notification.WebhookURL,
			Method:   cfg.Notification.WebhookMethod,
			Username: cfg.Notification.Username,
			Password: cfg.Notification.Password,
			Headers:  cfg.Notification.Headers,
		}, &http.Client{Timeout: 15 * time.Second}, log.Logger))
	}

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	manager := plugin.NewManager(configStore, sched, registry, log.Logger)

	for _, p := range []plugin.Plugin{
		jackett.New(configStore, registry, log.Logger),
		prowlarr.New(configStore, registry, log.Logger),
		trakt.New(configStore, subs, notifier, manager, log.Logger),
	} {
		if err := manager.Register(p); err != nil {
			log.Fatal().Err(err).Msg("failed to register plugin")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Plugin init can hit the network (one-shot syncs); retry transient
	// failures instead of dying on a slow upstream at boot.
	if err := startup.WithRetry(ctx, "plugin init", startup.DefaultRetryConfig(), func() error {
		return manager.InitAll(ctx)
	}, &log.Logger); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize plugins")
	}

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	server := api.NewServer(cfg, manager, sched, log.Logger)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("server error")
		}
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server shutdown failed")
	}
	if err := sched.Stop(); err != nil {
		log.Warn().Err(err).Msg("scheduler shutdown failed")
	}
	manager.StopAll(shutdownCtx)

	log.Info().Msg("bridgearr stopped")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"switchbot_panel/internal/broker"
	"switchbot_panel/internal/handlers"
	"switchbot_panel/internal/logger"
	"switchbot_panel/internal/power"
	"switchbot_panel/internal/repository"
	"switchbot_panel/internal/repository/db"
	"switchbot_panel/internal/server"
	"switchbot_panel/internal/service"
	"switchbot_panel/internal/switchbot"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	shutdownTimeout = 10 * time.Second
	// upper bound for a shutdown sequence that is already dispatching
	runDrainTimeout = 2 * time.Minute
)

func main() {
	// .env is optional; real environment variables win
	envErr := godotenv.Load()

	cfg, err := loadConfig(viper.GetViper(), "configs")
	if err != nil {
		logger.Get(logger.InfoLevel, logger.FormatConsole).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	if envErr != nil && !os.IsNotExist(envErr) {
		log.Infow("dotenv_not_loaded", "err", envErr)
	}

	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err, "path", cfg.DB.Path)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	backend := switchbot.NewClient(cfg.SwitchBot.Token, cfg.SwitchBot.Secret)
	if cfg.SwitchBot.Token == "" || cfg.SwitchBot.Secret == "" {
		log.Infow("switchbot_credentials_missing", "hint", "set SWITCHBOT_TOKEN and SECRET")
	}

	defaultAction, err := service.ParsePowerAction(cfg.Orchestrator.DefaultAction)
	if err != nil {
		log.Fatalw("invalid orchestrator.default_action", "err", err, "value", cfg.Orchestrator.DefaultAction)
	}

	services := service.NewService(
		repository.NewRepository(sqlDB),
		backend,
		newPowerController(cfg, log),
		service.Options{
			TickInterval:    cfg.Countdown.Tick,
			SettleDelay:     cfg.Orchestrator.SettleDelay,
			DispatchTimeout: cfg.Orchestrator.DispatchTimeout,
			DefaultAction:   defaultAction,
		},
		log,
	)

	// sinks must be attached before the first log entry
	if cfg.MQTT.Enabled {
		b, err := startBroker(cfg, services, log)
		if err != nil {
			log.Fatalw("failed to start mqtt broker", "err", err, "address", cfg.MQTT.Address)
		}
		defer func() { _ = b.Close() }()
	}

	refreshCtx, cancelRefresh := context.WithTimeout(context.Background(), cfg.Catalog.RefreshTimeout)
	if _, err := services.Catalog.Refresh(refreshCtx); err != nil {
		log.Errorw("initial_catalog_refresh_failed", "err", err)
	}
	cancelRefresh()

	if cfg.Catalog.RefreshSchedule != "" {
		sched, err := service.NewCatalogScheduler(services.Catalog, cfg.Catalog.RefreshSchedule, cfg.Catalog.RefreshTimeout, log)
		if err != nil {
			log.Fatalw("invalid catalog refresh schedule", "err", err, "schedule", cfg.Catalog.RefreshSchedule)
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(cfg.Port, handlers.NewHandler(services, log).InitRoutes())
	go func() {
		log.Infow("http_server_started", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()

	waitForShutdown(srv, services, log)
}

func newPowerController(cfg Config, log *logger.Logger) service.PowerController {
	if cfg.Power.DryRun {
		log.Infow("power_dry_run_enabled")
		return power.NewDryRun(log)
	}
	return power.NewHost()
}

func startBroker(cfg Config, services *service.Service, log *logger.Logger) (*broker.Broker, error) {
	b, err := broker.New(broker.Config{
		ID:          "panel",
		Address:     cfg.MQTT.Address,
		TopicPrefix: cfg.MQTT.TopicPrefix,
	}, log)
	if err != nil {
		return nil, err
	}
	services.Events.AddSink(b)
	services.Timer.Observe(b.PublishCountdown)
	if err := b.Start(); err != nil {
		return nil, err
	}
	return b, nil
}

// waitForShutdown blocks until SIGINT/SIGTERM, then stops the countdown,
// drains in-flight requests and lets a started shutdown sequence finish.
func waitForShutdown(srv *server.Server, services *service.Service, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	services.Timer.Cancel(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), runDrainTimeout)
	defer cancelDrain()
	if err := services.Orchestrator.Wait(drainCtx); err != nil {
		log.Errorw("shutdown_run_not_finished", "err", err)
	}
}

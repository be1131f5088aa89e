package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rovermon/config"
	"rovermon/log"
	"rovermon/services"

	"go.uber.org/zap"
)

func main() {
	// Initialize structured logger
	logger := log.GetInstance()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("ROVERMON failsafe supervisor starting",
		zap.Int("failsafe_timeout_seconds", cfg.FailsafeTimeoutSeconds),
		zap.Int("min_gps_fix", cfg.MinGpsFix),
		zap.Int("tick_interval_seconds", cfg.TickIntervalSeconds),
		zap.String("mqtt_broker", cfg.MQTTBrokerURL),
		zap.String("topic_prefix", cfg.MQTTTopicPrefix),
	)

	// Telemetry link, command and relay gateway
	mqttService, err := services.NewMQTTService(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize MQTT service", zap.Error(err))
	}
	defer mqttService.Close()

	// Optional collaborators
	var audioService *services.AudioAlertService
	if cfg.AudioPlayerURL != "" {
		audioService = services.NewAudioAlertService(logger, cfg.AudioPlayerURL)
		logger.Info("Audio alert service initialized", zap.String("url", cfg.AudioPlayerURL))
	}

	var telegramService *services.TelegramService
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		telegramService, err = services.NewTelegramService(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram service", zap.Error(err))
		}
	}

	var eventPublisher *services.EventPublisher
	if cfg.AmqpURL != "" {
		eventPublisher, err = services.NewEventPublisher(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize event publisher", zap.Error(err))
		}
		defer eventPublisher.Close()
	}

	// Alert fan-out and commander with decision recording
	var audioAlerter services.Alerter
	if audioService != nil {
		audioAlerter = audioService
	}
	alertRouter := services.NewAlertRouter(audioAlerter, telegramService, eventPublisher, logger)
	commander := services.NewRecordingCommander(mqttService, eventPublisher, logger)

	// The supervisor core
	monitor := services.NewMissionMonitor(cfg, services.NewBootClock(), alertRouter, mqttService, commander, logger)
	alertRouter.SetModeSource(func() string { return monitor.Mode().String() })

	if err := mqttService.SubscribeTelemetry(monitor); err != nil {
		logger.Fatal("Failed to subscribe to telemetry", zap.Error(err))
	}

	if telegramService != nil {
		if err := telegramService.SendStartupMessage(); err != nil {
			logger.Warn("Failed to send startup message", zap.Error(err))
		}
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, stopping supervisor")
		cancel()
	}()

	// Periodic evaluation loop
	ticker := time.NewTicker(time.Duration(cfg.TickIntervalSeconds) * time.Second)
	defer ticker.Stop()

	logger.Info("Monitoring started, waiting for vehicle telemetry")

	for {
		select {
		case <-ctx.Done():
			logger.Info("ROVERMON failsafe supervisor stopped",
				zap.Bool("failed", monitor.Failed()),
				zap.String("mode", monitor.Mode().String()))
			return
		case <-ticker.C:
			monitor.Tick()
		}
	}
}

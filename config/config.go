package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Failsafe core
	FailsafeTimeoutSeconds int
	MinGpsFix              int
	TickIntervalSeconds    int

	// Telemetry link (MQTT)
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	// Alert and actuation collaborators
	AudioPlayerURL string

	// Ops event stream (RabbitMQ)
	AmqpURL      string
	AmqpExchange string

	// Operator notifications
	TelegramBotToken     string
	TelegramChatID       string
	AlertThrottleSeconds int
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	config := &Config{
		FailsafeTimeoutSeconds: getEnvInt("FAILSAFE_TIMEOUT_SECONDS", 5),
		MinGpsFix:              getEnvInt("MIN_GPS_FIX", 3),
		TickIntervalSeconds:    getEnvInt("TICK_INTERVAL_SECONDS", 1),

		MQTTBrokerURL:   getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "rovermon"),
		MQTTUsername:    getEnv("MQTT_USERNAME", ""),
		MQTTPassword:    getEnv("MQTT_PASSWORD", ""),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "rover"),

		AudioPlayerURL: getEnv("AUDIO_PLAYER_URL", ""),

		AmqpURL:      getEnv("AMQP_URL", ""),
		AmqpExchange: getEnv("AMQP_EXCHANGE", "rovermon.decisions"),

		TelegramBotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:       getEnv("TELEGRAM_CHAT_ID", ""),
		AlertThrottleSeconds: getEnvInt("ALERT_THROTTLE_SECONDS", 60),
	}

	// The failsafe windows feed unsigned millisecond arithmetic; a
	// non-positive value would wrap into a huge threshold
	if config.FailsafeTimeoutSeconds < 1 {
		config.FailsafeTimeoutSeconds = 1
	}
	if config.TickIntervalSeconds < 1 {
		config.TickIntervalSeconds = 1
	}
	if config.MinGpsFix < 0 {
		config.MinGpsFix = 0
	}
	if config.AlertThrottleSeconds < 0 {
		config.AlertThrottleSeconds = 0
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

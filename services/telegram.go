package services

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"rovermon/config"
	"rovermon/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramService notifies operators about failsafe decisions. Alerts are
// throttled per category so a flapping condition does not flood the chat;
// emergency stops always go through. The alert router dispatches each alert
// on its own goroutine, so the throttle map is mutex guarded.
type TelegramService struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	config         *config.Config
	logger         *zap.Logger
	mu             sync.Mutex
	lastAlertTimes map[models.AlertSound]time.Time
}

func NewTelegramService(cfg *config.Config, logger *zap.Logger) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("error creating telegram bot: %v", err)
	}

	chatID, err := strconv.ParseInt(cfg.TelegramChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("error parsing chat ID: %v", err)
	}

	logger.Info("Telegram bot authorized", zap.String("username", bot.Self.UserName))

	ts := &TelegramService{
		bot:            bot,
		chatID:         chatID,
		config:         cfg,
		logger:         logger,
		lastAlertTimes: make(map[models.AlertSound]time.Time),
	}

	if err := ts.testConnection(); err != nil {
		logger.Error("Telegram connection test failed", zap.Error(err))
		return nil, fmt.Errorf("telegram connection test failed: %v", err)
	}

	return ts, nil
}

// testConnection tests Telegram connection with retry logic
func (ts *TelegramService) testConnection() error {
	maxRetries := 3

	for attempt := 1; attempt <= maxRetries; attempt++ {
		ts.logger.Info("Testing Telegram connection", zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries))

		_, err := ts.bot.GetMe()
		if err == nil {
			ts.logger.Info("Telegram connection successful")
			return nil
		}

		ts.logger.Warn("Telegram connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * time.Second)
		}
	}

	return fmt.Errorf("failed to connect to Telegram after %d attempts", maxRetries)
}

// SendStartupMessage announces that the supervisor is watching the vehicle.
func (ts *TelegramService) SendStartupMessage() error {
	message := fmt.Sprintf(
		"🚗 <b>ROVERMON started</b>\n\n"+
			"Failsafe timeout: <b>%ds</b>\n"+
			"Minimum GPS fix: <b>%s</b>\n"+
			"Watching for vehicle telemetry.",
		ts.config.FailsafeTimeoutSeconds,
		models.GpsFixQuality(ts.config.MinGpsFix).String(),
	)
	return ts.send(message)
}

// SendCriticalAlert reports a failsafe condition to the operators.
func (ts *TelegramService) SendCriticalAlert(sound models.AlertSound, mode string, detail string) error {
	// Emergency stops bypass throttling, everything else is rate limited
	if sound != models.SoundEmergencyStop && ts.shouldThrottleAlert(sound) {
		ts.logger.Debug("Throttling telegram alert", zap.String("sound", string(sound)))
		return nil
	}

	var header string
	switch sound {
	case models.SoundEmergencyStop:
		header = "🛑 <b>EMERGENCY STOP</b>"
	case models.SoundLinkLost:
		header = "📡 <b>Telemetry link lost</b>"
	case models.SoundGpsLow:
		header = "🛰 <b>GPS signal degraded</b>"
	default:
		header = "⚠️ <b>Failsafe alert</b>"
	}

	message := fmt.Sprintf("%s\n\nMode: <b>%s</b>\n%s\n\n🕐 %s",
		header, mode, detail, time.Now().Format("2006-01-02 15:04:05"))

	if err := ts.send(message); err != nil {
		return err
	}

	ts.markAlertSent(sound)
	return nil
}

// SendRecoveryMessage reports that the telemetry link came back.
func (ts *TelegramService) SendRecoveryMessage(detail string) error {
	message := fmt.Sprintf("✅ <b>Recovered</b>\n\n%s\n\n🕐 %s",
		detail, time.Now().Format("2006-01-02 15:04:05"))
	return ts.send(message)
}

func (ts *TelegramService) send(message string) error {
	msg := tgbotapi.NewMessage(ts.chatID, message)
	msg.ParseMode = "HTML"
	msg.DisableWebPagePreview = true

	if _, err := ts.bot.Send(msg); err != nil {
		return fmt.Errorf("error sending telegram message: %v", err)
	}
	return nil
}

func (ts *TelegramService) shouldThrottleAlert(sound models.AlertSound) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	last, ok := ts.lastAlertTimes[sound]
	if !ok {
		return false
	}
	throttle := time.Duration(ts.config.AlertThrottleSeconds) * time.Second
	return time.Since(last) < throttle
}

func (ts *TelegramService) markAlertSent(sound models.AlertSound) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.lastAlertTimes[sound] = time.Now()
}

package services

import (
	"sync"
	"testing"
	"time"

	"rovermon/config"
	"rovermon/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newThrottleTestService(throttleSeconds int) *TelegramService {
	return &TelegramService{
		config:         &config.Config{AlertThrottleSeconds: throttleSeconds},
		logger:         zap.NewNop(),
		lastAlertTimes: make(map[models.AlertSound]time.Time),
	}
}

func TestAlertThrottleWindow(t *testing.T) {
	ts := newThrottleTestService(60)

	assert.False(t, ts.shouldThrottleAlert(models.SoundGpsLow))

	ts.markAlertSent(models.SoundGpsLow)
	assert.True(t, ts.shouldThrottleAlert(models.SoundGpsLow))

	// Other categories are unaffected
	assert.False(t, ts.shouldThrottleAlert(models.SoundLinkLost))
}

func TestAlertThrottleSurvivesConcurrentDispatch(t *testing.T) {
	ts := newThrottleTestService(60)

	// One failsafe tick fans alerts out on separate goroutines; the
	// throttle map must take concurrent reads and writes
	sounds := []models.AlertSound{
		models.SoundEmergencyStop,
		models.SoundLinkLost,
		models.SoundGpsLow,
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, sound := range sounds {
			wg.Add(1)
			go func(s models.AlertSound) {
				defer wg.Done()
				if !ts.shouldThrottleAlert(s) {
					ts.markAlertSent(s)
				}
			}(sound)
		}
	}
	wg.Wait()

	for _, sound := range sounds {
		assert.True(t, ts.shouldThrottleAlert(sound))
	}
}

package services

import (
	"rovermon/models"

	"go.uber.org/zap"
)

var alertDetails = map[models.AlertSound]string{
	models.SoundEmergencyStop: "Drive power cut, alarm raised. Mode change required to restart.",
	models.SoundLinkLost:      "No status report from the vehicle controller within the failsafe window.",
	models.SoundGpsLow:        "Fix quality below minimum, holding until it recovers.",
}

// AlertRouter fans one Play call out to the audio sidecar, the ops event
// stream and (for critical sounds) the operator chat. Everything runs off
// the caller's goroutine so the supervisor tick never blocks on a network.
type AlertRouter struct {
	logger     *zap.Logger
	audio      Alerter
	telegram   *TelegramService
	events     *EventPublisher
	modeSource func() string
}

// NewAlertRouter builds a router; telegram and events may be nil when the
// corresponding collaborator is not configured.
func NewAlertRouter(audio Alerter, telegram *TelegramService, events *EventPublisher, logger *zap.Logger) *AlertRouter {
	return &AlertRouter{
		logger:   logger,
		audio:    audio,
		telegram: telegram,
		events:   events,
	}
}

// SetModeSource installs a callback that reports the current drive mode for
// notification context. Set after the monitor is constructed.
func (r *AlertRouter) SetModeSource(source func() string) {
	r.modeSource = source
}

// Play implements Alerter.
func (r *AlertRouter) Play(sound models.AlertSound) {
	go r.dispatch(sound)
}

func (r *AlertRouter) dispatch(sound models.AlertSound) {
	if r.audio != nil {
		r.audio.Play(sound)
	}

	mode := "UNKNOWN"
	if r.modeSource != nil {
		mode = r.modeSource()
	}

	if r.events != nil {
		kind := models.DecisionAlert
		if sound == models.SoundEmergencyStop {
			kind = models.DecisionHardFail
		}
		event := &models.DecisionEvent{
			Kind:   kind,
			Mode:   mode,
			Sound:  sound,
			Detail: alertDetails[sound],
		}
		if err := r.events.Publish(event); err != nil {
			r.logger.Error("Failed to publish decision event",
				zap.String("sound", string(sound)),
				zap.Error(err))
		}
	}

	if r.telegram == nil {
		return
	}

	if sound.IsCritical() {
		if err := r.telegram.SendCriticalAlert(sound, mode, alertDetails[sound]); err != nil {
			r.logger.Error("Failed to send telegram alert",
				zap.String("sound", string(sound)),
				zap.Error(err))
		}
	} else if sound == models.SoundLinkGood {
		if err := r.telegram.SendRecoveryMessage("Telemetry link established."); err != nil {
			r.logger.Error("Failed to send telegram recovery message", zap.Error(err))
		}
	}
}

// RecordingCommander decorates a Commander so every mode-change request also
// lands on the ops event stream.
type RecordingCommander struct {
	next   Commander
	events *EventPublisher
	logger *zap.Logger
}

func NewRecordingCommander(next Commander, events *EventPublisher, logger *zap.Logger) *RecordingCommander {
	return &RecordingCommander{next: next, events: events, logger: logger}
}

// RequestMode implements Commander.
func (c *RecordingCommander) RequestMode(mode models.VehicleMode) {
	c.next.RequestMode(mode)

	if c.events == nil {
		return
	}
	go func() {
		event := &models.DecisionEvent{
			Kind: models.DecisionModeRequest,
			Mode: mode.String(),
		}
		if err := c.events.Publish(event); err != nil {
			c.logger.Error("Failed to publish mode request event",
				zap.String("mode", mode.String()),
				zap.Error(err))
		}
	}()
}

package services

import (
	"sync"

	"rovermon/config"
	"rovermon/models"

	"go.uber.org/zap"
)

// MissionMonitor is the failsafe supervisor core. It combines link health,
// GPS fix quality and waypoint progress into one go/no-go decision per tick
// and latches into a failed state when the mission cannot safely continue.
//
// Telemetry callbacks arrive on transport goroutines and ticks on the
// scheduler goroutine, so every entry point takes the single monitor mutex.
type MissionMonitor struct {
	mu sync.Mutex

	clock     MissionClock
	alerter   Alerter
	actuator  Actuator
	commander Commander
	logger    *zap.Logger

	thresholdMs uint32
	minFix      models.GpsFixQuality

	mode      models.VehicleMode
	modeFlags models.ModeFlags

	link     linkHealth
	gps      gpsHealth
	progress *progressTracker

	failed    bool
	firstTick bool
}

// NewMissionMonitor wires the supervisor core. The gateways are referenced,
// not owned; their lifetime belongs to the caller.
func NewMissionMonitor(cfg *config.Config, clock MissionClock, alerter Alerter, actuator Actuator, commander Commander, logger *zap.Logger) *MissionMonitor {
	return &MissionMonitor{
		clock:       clock,
		alerter:     alerter,
		actuator:    actuator,
		commander:   commander,
		logger:      logger,
		thresholdMs: uint32(cfg.FailsafeTimeoutSeconds) * 1000,
		minFix:      models.GpsFixQuality(cfg.MinGpsFix),
		mode:        models.ModeInitializing,
		progress:    newProgressTracker(),
	}
}

// OnHeartbeat refreshes link health and tracks drive-mode changes. A mode
// change announces the new mode and restarts the supervisor, since progress
// accumulated under the old mode is meaningless.
func (m *MissionMonitor) OnHeartbeat(hb models.Heartbeat) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	wasSeen := m.link.seen
	m.link.recordEvent(now)

	if hb.VehicleType == models.VehicleGroundRover {
		newMode := models.VehicleMode(hb.CustomMode)
		m.modeFlags = models.ModeFlags(hb.BaseMode)

		if newMode != m.mode {
			m.logger.Info("Drive mode changed",
				zap.String("from", m.mode.String()),
				zap.String("to", newMode.String()))

			if sound, ok := models.ModeSound(newMode); ok {
				m.alerter.Play(sound)
			}

			m.mode = newMode

			// The drive mode changed, restart everything
			m.start()
		}
	}

	if !wasSeen {
		m.alerter.Play(models.SoundLinkGood)
	}
}

// OnMissionItemReached records waypoint arrival as progress.
func (m *MissionMonitor) OnMissionItemReached(item models.MissionItemReached) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Info("Destination reached", zap.Int("seq", item.Seq))
	m.progress.itemReached(m.clock.Now())
}

// OnNavOutput classifies a distance-to-waypoint sample.
func (m *MissionMonitor) OnNavOutput(nav models.NavOutput) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if m.progress.distanceSample(nav.WaypointDistance, now) {
		m.logger.Debug("Distance to waypoint",
			zap.Int("distance", nav.WaypointDistance))
	} else {
		m.logger.Warn("Distance to waypoint growing",
			zap.Int("distance", nav.WaypointDistance),
			zap.Uint32("since_progress_ms", elapsedMs(now, m.progress.lastProgressMs)),
			zap.Int("wrong_direction_streak", m.progress.wrongStreak))
	}
}

// OnMissionCurrent resets distance tracking when the active waypoint changes.
func (m *MissionMonitor) OnMissionCurrent(current models.MissionCurrent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.progress.waypointChanged(current.Seq, m.clock.Now()) {
		m.logger.Info("New destination", zap.Int("seq", current.Seq))
	}
}

// OnGpsRaw stores the primary receiver's fix quality.
func (m *MissionMonitor) OnGpsRaw(gps models.GpsRaw) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gps.recordPrimary(gps.FixType)
}

// OnGps2Raw stores the secondary receiver's fix quality.
func (m *MissionMonitor) OnGps2Raw(gps models.GpsRaw) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gps.recordSecondary(gps.FixType)
}

// Tick runs one evaluation pass. Called at a fixed cadence by the scheduler.
func (m *MissionMonitor) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evaluate()

	if !m.firstTick {
		m.firstTick = true
		m.alerter.Play(models.SoundReady)
	}
}

// evaluate is the decision pass: link timeout, GPS degradation and progress
// stall in that order. All failure branches are skipped while the failed
// latch is set; a mode-change-driven restart is the only way out.
func (m *MissionMonitor) evaluate() {
	now := m.clock.Now()

	bestFix := m.gps.best()
	isAutoMode := m.mode == models.ModeAuto
	isHoldMode := m.mode == models.ModeHold

	linkLost := m.link.lost(now, m.thresholdMs)
	gpsLost := bestFix < m.minFix
	noProgress := m.progress.stalled(now, m.thresholdMs)

	if m.failed {
		return
	}

	if linkLost {
		// We haven't heard from the vehicle controller for some time,
		// we can't continue
		m.logger.Warn("Telemetry link lost",
			zap.Uint32("since_event_ms", elapsedMs(now, m.link.lastEventMs)))

		m.failMission()

		// Start looking for a first heartbeat again
		m.link.rearm()
		m.alerter.Play(models.SoundLinkLost)
	}

	if isAutoMode {
		if gpsLost {
			// Hold until the fix recovers. The controller's mode report
			// will trigger the restart that clears progress state.
			m.commander.RequestMode(models.ModeHold)

			m.logger.Warn("GPS degraded",
				zap.String("best_fix", bestFix.String()),
				zap.String("min_fix", m.minFix.String()))

			m.alerter.Play(models.SoundGpsLow)
		} else if noProgress {
			// Continued motion without progress is unsafe, stop the vehicle
			m.logger.Warn("No waypoint progress",
				zap.Uint32("since_progress_ms", elapsedMs(now, m.progress.lastProgressMs)))

			m.failMission()
		}

		if m.progress.wrongStreak == 2 {
			// Fires once per regression episode; bumping the streak keeps
			// it from matching again until progress resets it
			m.progress.wrongStreak++
			m.alerter.Play(models.SoundWrongDirection)
		}
	} else if isHoldMode && !gpsLost {
		// Holding with a good fix again, resume the mission
		m.commander.RequestMode(models.ModeAuto)
	}
}

// failMission latches the failed state, cuts drive power and raises the alarm.
func (m *MissionMonitor) failMission() {
	m.logger.Error("Emergency stop, mission failed",
		zap.String("mode", m.mode.String()))

	m.failed = true
	m.actuator.SetDrivePower(false)
	m.actuator.SetAlarm(true)
	m.alerter.Play(models.SoundEmergencyStop)
}

// start clears the failed latch and the progress state and restores the
// relays. Link and GPS health are left alone. Runs on every mode change.
func (m *MissionMonitor) start() {
	m.failed = false
	m.progress.reset()

	m.actuator.SetDrivePower(true)
	m.actuator.SetAlarm(false)
}

// Failed reports whether the failed latch is set.
func (m *MissionMonitor) Failed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed
}

// Mode returns the last reported drive mode.
func (m *MissionMonitor) Mode() models.VehicleMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

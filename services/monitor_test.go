package services

import (
	"testing"

	"rovermon/config"
	"rovermon/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeClock struct {
	ms uint32
}

func (c *fakeClock) Now() uint32 { return c.ms }

func (c *fakeClock) advance(ms uint32) { c.ms += ms }

// recordingAlerter implements Alerter for testing
type recordingAlerter struct {
	sounds []models.AlertSound
}

func (a *recordingAlerter) Play(sound models.AlertSound) {
	a.sounds = append(a.sounds, sound)
}

func (a *recordingAlerter) count(sound models.AlertSound) int {
	n := 0
	for _, s := range a.sounds {
		if s == sound {
			n++
		}
	}
	return n
}

// recordingActuator implements Actuator for testing
type recordingActuator struct {
	drivePower []bool
	alarm      []bool
}

func (a *recordingActuator) SetDrivePower(on bool) { a.drivePower = append(a.drivePower, on) }

func (a *recordingActuator) SetAlarm(on bool) { a.alarm = append(a.alarm, on) }

func (a *recordingActuator) lastDrivePower() (bool, bool) {
	if len(a.drivePower) == 0 {
		return false, false
	}
	return a.drivePower[len(a.drivePower)-1], true
}

func (a *recordingActuator) lastAlarm() (bool, bool) {
	if len(a.alarm) == 0 {
		return false, false
	}
	return a.alarm[len(a.alarm)-1], true
}

// fakeCommander implements Commander for testing
type fakeCommander struct {
	requests []models.VehicleMode
}

func (c *fakeCommander) RequestMode(mode models.VehicleMode) {
	c.requests = append(c.requests, mode)
}

func newTestMonitor() (*MissionMonitor, *fakeClock, *recordingAlerter, *recordingActuator, *fakeCommander) {
	cfg := &config.Config{
		FailsafeTimeoutSeconds: 5,
		MinGpsFix:              int(models.GpsFix3D),
	}
	clock := &fakeClock{ms: 1000}
	alerter := &recordingAlerter{}
	actuator := &recordingActuator{}
	commander := &fakeCommander{}
	monitor := NewMissionMonitor(cfg, clock, alerter, actuator, commander, zap.NewNop())
	return monitor, clock, alerter, actuator, commander
}

func heartbeat(mode models.VehicleMode) models.Heartbeat {
	return models.Heartbeat{
		VehicleType: models.VehicleGroundRover,
		CustomMode:  uint32(mode),
		BaseMode:    0x81,
	}
}

func TestLinkNeverLostBeforeFirstEvent(t *testing.T) {
	monitor, clock, _, _, _ := newTestMonitor()

	clock.advance(60_000)
	monitor.Tick()

	assert.False(t, monitor.Failed())
}

func TestLinkTimeoutBoundary(t *testing.T) {
	monitor, clock, alerter, actuator, _ := newTestMonitor()

	monitor.OnHeartbeat(heartbeat(models.ModeManual))

	// 4999 ms since the heartbeat: still within the window
	clock.advance(4999)
	monitor.Tick()
	assert.False(t, monitor.Failed())

	// 5000 ms: link lost, hard fail
	clock.advance(1)
	monitor.Tick()

	assert.True(t, monitor.Failed())

	power, ok := actuator.lastDrivePower()
	assert.True(t, ok)
	assert.False(t, power)

	alarm, ok := actuator.lastAlarm()
	assert.True(t, ok)
	assert.True(t, alarm)

	assert.Equal(t, 1, alerter.count(models.SoundEmergencyStop))
	assert.Equal(t, 1, alerter.count(models.SoundLinkLost))
}

func TestLinkLossRearmsFirstEventDetection(t *testing.T) {
	monitor, clock, alerter, _, _ := newTestMonitor()

	monitor.OnHeartbeat(heartbeat(models.ModeManual))
	assert.Equal(t, 1, alerter.count(models.SoundLinkGood))

	clock.advance(5000)
	monitor.Tick()
	assert.True(t, monitor.Failed())
	assert.False(t, monitor.link.seen)

	// A reconnection is detected as a fresh first event
	monitor.OnHeartbeat(heartbeat(models.ModeManual))
	assert.Equal(t, 2, alerter.count(models.SoundLinkGood))
}

func TestStallFailDoesNotRearmLink(t *testing.T) {
	monitor, clock, alerter, _, _ := newTestMonitor()

	monitor.OnHeartbeat(heartbeat(models.ModeAuto))
	monitor.OnGpsRaw(models.GpsRaw{FixType: models.GpsFix3D})
	monitor.OnMissionCurrent(models.MissionCurrent{Seq: 1})

	// Keep the link fresh while progress goes stale
	for i := 0; i < 5; i++ {
		clock.advance(1000)
		monitor.OnHeartbeat(heartbeat(models.ModeAuto))
	}
	monitor.Tick()

	assert.True(t, monitor.Failed())
	assert.Equal(t, 1, alerter.count(models.SoundEmergencyStop))
	assert.Equal(t, 0, alerter.count(models.SoundLinkLost))
	assert.True(t, monitor.link.seen)
}

func TestGpsLowTriggersHoldRequestNotFailure(t *testing.T) {
	monitor, clock, alerter, _, commander := newTestMonitor()

	monitor.OnHeartbeat(heartbeat(models.ModeAuto))
	monitor.OnGpsRaw(models.GpsRaw{FixType: models.GpsNoFix})
	monitor.OnGps2Raw(models.GpsRaw{FixType: models.GpsNoFix})

	clock.advance(1000)
	monitor.OnHeartbeat(heartbeat(models.ModeAuto))
	monitor.Tick()

	assert.False(t, monitor.Failed())
	assert.Equal(t, []models.VehicleMode{models.ModeHold}, commander.requests)
	assert.Equal(t, 1, alerter.count(models.SoundGpsLow))
}

func TestBestOfTwoGpsSourcesWins(t *testing.T) {
	monitor, clock, alerter, _, commander := newTestMonitor()

	monitor.OnHeartbeat(heartbeat(models.ModeAuto))
	monitor.OnGpsRaw(models.GpsRaw{FixType: models.GpsNoFix})
	monitor.OnGps2Raw(models.GpsRaw{FixType: models.GpsRtkFixed})

	clock.advance(1000)
	monitor.OnHeartbeat(heartbeat(models.ModeAuto))
	monitor.Tick()

	assert.False(t, monitor.Failed())
	assert.Empty(t, commander.requests)
	assert.Equal(t, 0, alerter.count(models.SoundGpsLow))
}

func TestHoldRecoveryRequestsAuto(t *testing.T) {
	monitor, clock, _, _, commander := newTestMonitor()

	monitor.OnHeartbeat(heartbeat(models.ModeHold))
	monitor.OnGpsRaw(models.GpsRaw{FixType: models.GpsFix3D})

	clock.advance(1000)
	monitor.OnHeartbeat(heartbeat(models.ModeHold))
	monitor.Tick()

	assert.Equal(t, []models.VehicleMode{models.ModeAuto}, commander.requests)
	assert.False(t, monitor.Failed())
}

func TestModeChangeAlertsAndRestarts(t *testing.T) {
	monitor, clock, alerter, actuator, _ := newTestMonitor()

	monitor.OnHeartbeat(heartbeat(models.ModeManual))

	// Hard fail via link timeout
	clock.advance(5000)
	monitor.Tick()
	assert.True(t, monitor.Failed())

	powerOnsBefore := countTrue(actuator.drivePower)

	// The controller reports a mode change, which restarts the supervisor
	monitor.OnHeartbeat(heartbeat(models.ModeAuto))

	assert.False(t, monitor.Failed())
	assert.Equal(t, models.ModeAuto, monitor.Mode())
	assert.Equal(t, 1, alerter.count(models.SoundAutoMode))
	assert.Equal(t, uint32(0), monitor.progress.lastProgressMs)
	assert.Equal(t, powerOnsBefore+1, countTrue(actuator.drivePower))

	alarm, ok := actuator.lastAlarm()
	assert.True(t, ok)
	assert.False(t, alarm)
}

func TestUnchangedModeReportDoesNotRestart(t *testing.T) {
	monitor, clock, alerter, actuator, _ := newTestMonitor()

	monitor.OnHeartbeat(heartbeat(models.ModeAuto))
	restartsBefore := countTrue(actuator.drivePower)
	soundsBefore := len(alerter.sounds)

	clock.advance(1000)
	monitor.OnHeartbeat(heartbeat(models.ModeAuto))

	assert.Equal(t, restartsBefore, countTrue(actuator.drivePower))
	assert.Equal(t, soundsBefore, len(alerter.sounds))
}

func TestInitializingModeHasNoSound(t *testing.T) {
	monitor, _, alerter, _, _ := newTestMonitor()

	// Force a transition into Initializing from another mode
	monitor.OnHeartbeat(heartbeat(models.ModeManual))
	monitor.OnHeartbeat(heartbeat(models.ModeInitializing))

	// No sound exists for Initializing, so the only mode sound is MANUAL's
	assert.Equal(t, 1, alerter.count(models.SoundManualMode))
	total := 0
	for _, mode := range []models.VehicleMode{
		models.ModeManual, models.ModeAcro, models.ModeSteering, models.ModeHold,
		models.ModeLoiter, models.ModeAuto, models.ModeRTL, models.ModeSmartRTL,
		models.ModeGuided,
	} {
		if sound, ok := models.ModeSound(mode); ok {
			total += alerter.count(sound)
		}
	}
	assert.Equal(t, 1, total)
}

func TestWrongDirectionAlertFiresExactlyOnce(t *testing.T) {
	monitor, clock, alerter, _, _ := newTestMonitor()

	monitor.OnHeartbeat(heartbeat(models.ModeAuto))
	monitor.OnGpsRaw(models.GpsRaw{FixType: models.GpsFix3D})
	monitor.OnMissionCurrent(models.MissionCurrent{Seq: 1})

	sample := func(distance int) {
		clock.advance(100)
		monitor.OnHeartbeat(heartbeat(models.ModeAuto))
		monitor.OnNavOutput(models.NavOutput{WaypointDistance: distance})
	}

	sample(100)
	sample(150) // first regression
	monitor.Tick()
	assert.Equal(t, 0, alerter.count(models.SoundWrongDirection))

	sample(160) // second regression
	monitor.Tick()
	assert.Equal(t, 1, alerter.count(models.SoundWrongDirection))
	assert.Equal(t, 3, monitor.progress.wrongStreak)

	sample(170) // third regression, same episode
	monitor.Tick()
	assert.Equal(t, 1, alerter.count(models.SoundWrongDirection))

	// Progress resets the streak, a fresh episode can fire again
	sample(50)
	sample(60)
	sample(70)
	monitor.Tick()
	assert.Equal(t, 2, alerter.count(models.SoundWrongDirection))

	assert.False(t, monitor.Failed())
}

func TestMissionItemReachedCountsAsProgress(t *testing.T) {
	monitor, clock, _, _, _ := newTestMonitor()

	monitor.OnHeartbeat(heartbeat(models.ModeAuto))
	monitor.OnGpsRaw(models.GpsRaw{FixType: models.GpsFix3D})
	monitor.OnMissionCurrent(models.MissionCurrent{Seq: 1})

	// Almost stalled, then a waypoint arrival resets the window
	for i := 0; i < 4; i++ {
		clock.advance(1000)
		monitor.OnHeartbeat(heartbeat(models.ModeAuto))
	}
	monitor.OnMissionItemReached(models.MissionItemReached{Seq: 1})

	clock.advance(4000)
	monitor.OnHeartbeat(heartbeat(models.ModeAuto))
	monitor.Tick()

	assert.False(t, monitor.Failed())
}

func TestStartIsIdempotent(t *testing.T) {
	monitor, _, _, actuator, _ := newTestMonitor()

	monitor.start()
	failedAfterOne := monitor.failed
	progressAfterOne := *monitor.progress

	monitor.start()

	assert.Equal(t, failedAfterOne, monitor.failed)
	assert.Equal(t, progressAfterOne, *monitor.progress)

	power, _ := actuator.lastDrivePower()
	alarm, _ := actuator.lastAlarm()
	assert.True(t, power)
	assert.False(t, alarm)
}

func TestFirstTickPlaysReady(t *testing.T) {
	monitor, _, alerter, _, _ := newTestMonitor()

	monitor.Tick()
	assert.Equal(t, 1, alerter.count(models.SoundReady))

	monitor.Tick()
	assert.Equal(t, 1, alerter.count(models.SoundReady))
}

func TestFailedLatchSkipsEvaluation(t *testing.T) {
	monitor, clock, alerter, _, commander := newTestMonitor()

	monitor.OnHeartbeat(heartbeat(models.ModeManual))
	clock.advance(5000)
	monitor.Tick()
	assert.True(t, monitor.Failed())

	stops := alerter.count(models.SoundEmergencyStop)

	// More ticks while latched must not repeat actuation or alerts
	clock.advance(10_000)
	monitor.Tick()
	monitor.Tick()

	assert.Equal(t, stops, alerter.count(models.SoundEmergencyStop))
	assert.Empty(t, commander.requests)
}

func TestNonRoverHeartbeatRefreshesLinkOnly(t *testing.T) {
	monitor, clock, alerter, _, _ := newTestMonitor()

	monitor.OnHeartbeat(models.Heartbeat{VehicleType: 1, CustomMode: uint32(models.ModeAuto)})

	assert.Equal(t, models.ModeInitializing, monitor.Mode())
	assert.Equal(t, 1, alerter.count(models.SoundLinkGood))

	clock.advance(4999)
	monitor.Tick()
	assert.False(t, monitor.Failed())
}

func countTrue(values []bool) int {
	n := 0
	for _, v := range values {
		if v {
			n++
		}
	}
	return n
}

package services

import (
	"rovermon/models"
)

// Alerter plays one of the named alert sounds. Playback failures are the
// gateway's problem; the supervisor fires and forgets.
type Alerter interface {
	Play(sound models.AlertSound)
}

// Actuator drives the power and alarm relays on the vehicle.
type Actuator interface {
	SetDrivePower(on bool)
	SetAlarm(on bool)
}

// Commander asks the vehicle controller to switch drive mode. The change is
// not applied locally; the controller's next heartbeat reports the outcome.
type Commander interface {
	RequestMode(mode models.VehicleMode)
}

// TelemetryHandler receives decoded telemetry events, one method per event
// kind. The transport serializes calls; handlers must not block.
type TelemetryHandler interface {
	OnHeartbeat(hb models.Heartbeat)
	OnMissionItemReached(item models.MissionItemReached)
	OnNavOutput(nav models.NavOutput)
	OnMissionCurrent(current models.MissionCurrent)
	OnGpsRaw(gps models.GpsRaw)
	OnGps2Raw(gps models.GpsRaw)
}

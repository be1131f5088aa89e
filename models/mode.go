package models

// VehicleType identifies the kind of vehicle a heartbeat originates from.
type VehicleType uint8

const (
	// VehicleGroundRover is the only vehicle type the supervisor acts on.
	// Heartbeats from other types still refresh link health.
	VehicleGroundRover VehicleType = 10
)

// VehicleMode is the rover drive mode reported by the vehicle controller.
// The numeric values are the controller's raw custom-mode codes and must
// not be reordered.
type VehicleMode uint32

const (
	ModeManual       VehicleMode = 0
	ModeAcro         VehicleMode = 1
	ModeSteering     VehicleMode = 3
	ModeHold         VehicleMode = 4
	ModeLoiter       VehicleMode = 5
	ModeAuto         VehicleMode = 10
	ModeRTL          VehicleMode = 11
	ModeSmartRTL     VehicleMode = 12
	ModeGuided       VehicleMode = 15
	ModeInitializing VehicleMode = 16
)

// ModeFlags carries the controller's raw base-mode flag bits. The supervisor
// stores them for diagnostics but does not interpret them.
type ModeFlags uint8

var modeNames = map[VehicleMode]string{
	ModeManual:       "MANUAL",
	ModeAcro:         "ACRO",
	ModeSteering:     "STEERING",
	ModeHold:         "HOLD",
	ModeLoiter:       "LOITER",
	ModeAuto:         "AUTO",
	ModeRTL:          "RTL",
	ModeSmartRTL:     "SMART_RTL",
	ModeGuided:       "GUIDED",
	ModeInitializing: "INITIALIZING",
}

// String returns the display name of the mode for diagnostic output.
func (m VehicleMode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "UNKNOWN"
}

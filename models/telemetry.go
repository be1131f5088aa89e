package models

// Heartbeat is the periodic status report from the vehicle controller.
type Heartbeat struct {
	VehicleType VehicleType `json:"vehicle_type"`
	CustomMode  uint32      `json:"custom_mode"`
	BaseMode    uint8       `json:"base_mode"`
}

// MissionItemReached announces that the vehicle arrived at a waypoint.
type MissionItemReached struct {
	Seq int `json:"seq"`
}

// NavOutput is the navigation controller's report of the remaining distance
// to the active waypoint, in meters.
type NavOutput struct {
	WaypointDistance int `json:"wp_dist"`
}

// MissionCurrent reports which waypoint in the mission is currently active.
type MissionCurrent struct {
	Seq int `json:"seq"`
}

// GpsRaw is a fix-quality report from one GPS receiver. The same payload is
// published on separate topics for the primary and secondary receivers.
type GpsRaw struct {
	FixType GpsFixQuality `json:"fix_type"`
}

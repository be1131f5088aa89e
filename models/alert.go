package models

import (
	"time"
)

// AlertSound identifies one of the audio clips the alert gateway can play.
type AlertSound string

const (
	SoundReady          AlertSound = "ready"
	SoundLinkGood       AlertSound = "link_good"
	SoundLinkLost       AlertSound = "link_lost"
	SoundGpsLow         AlertSound = "gps_low"
	SoundWrongDirection AlertSound = "wrong_direction"
	SoundEmergencyStop  AlertSound = "emergency_stop"

	SoundManualMode   AlertSound = "manual_mode"
	SoundAcroMode     AlertSound = "acro_mode"
	SoundSteeringMode AlertSound = "steering_mode"
	SoundHoldMode     AlertSound = "hold_mode"
	SoundLoiterMode   AlertSound = "loiter_mode"
	SoundAutoMode     AlertSound = "auto_mode"
	SoundRTLMode      AlertSound = "rtl_mode"
	SoundSmartRTLMode AlertSound = "smart_rtl_mode"
	SoundGuidedMode   AlertSound = "guided_mode"
)

var modeSounds = map[VehicleMode]AlertSound{
	ModeManual:   SoundManualMode,
	ModeAcro:     SoundAcroMode,
	ModeSteering: SoundSteeringMode,
	ModeHold:     SoundHoldMode,
	ModeLoiter:   SoundLoiterMode,
	ModeAuto:     SoundAutoMode,
	ModeRTL:      SoundRTLMode,
	ModeSmartRTL: SoundSmartRTLMode,
	ModeGuided:   SoundGuidedMode,
}

// ModeSound returns the alert sound announcing entry into the given mode.
// The Initializing pseudo-mode has no sound and reports ok == false.
func ModeSound(mode VehicleMode) (AlertSound, bool) {
	sound, ok := modeSounds[mode]
	return sound, ok
}

// IsCritical reports whether a sound marks a condition operators must be
// notified about (in addition to local playback).
func (s AlertSound) IsCritical() bool {
	switch s {
	case SoundEmergencyStop, SoundLinkLost, SoundGpsLow:
		return true
	}
	return false
}

// DecisionKind classifies a supervisor decision for the ops event stream.
type DecisionKind string

const (
	DecisionHardFail    DecisionKind = "hard_fail"
	DecisionModeRequest DecisionKind = "mode_request"
	DecisionAlert       DecisionKind = "alert"
)

// DecisionEvent is one supervisor decision, published to the ops event
// exchange as it happens. It is a live feed, not stored history.
type DecisionEvent struct {
	Kind      DecisionKind `json:"kind"`
	Mode      string       `json:"mode,omitempty"`
	Sound     AlertSound   `json:"sound,omitempty"`
	Detail    string       `json:"detail,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

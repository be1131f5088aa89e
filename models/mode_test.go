package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allModes = []VehicleMode{
	ModeManual, ModeAcro, ModeSteering, ModeHold, ModeLoiter,
	ModeAuto, ModeRTL, ModeSmartRTL, ModeGuided, ModeInitializing,
}

func TestModeNamesAreTotal(t *testing.T) {
	for _, mode := range allModes {
		assert.NotEqual(t, "UNKNOWN", mode.String())
	}
	assert.Equal(t, "UNKNOWN", VehicleMode(99).String())
}

func TestEveryModeButInitializingHasASound(t *testing.T) {
	for _, mode := range allModes {
		sound, ok := ModeSound(mode)
		if mode == ModeInitializing {
			assert.False(t, ok)
			continue
		}
		assert.True(t, ok, "mode %s has no sound", mode)
		assert.NotEmpty(t, sound)
	}
}

func TestGpsFixNamesAreTotal(t *testing.T) {
	for q := GpsNoGps; q <= GpsPpp; q++ {
		assert.NotEqual(t, "UNKNOWN", q.String())
	}
	assert.Equal(t, "UNKNOWN", GpsFixQuality(200).String())
}

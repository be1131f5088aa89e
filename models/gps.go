package models

// GpsFixQuality is the fix type reported by a GPS receiver, totally ordered
// from no fix to high-precision fix. Overall quality across two receivers is
// the maximum of the two readings.
type GpsFixQuality uint8

const (
	GpsNoGps    GpsFixQuality = 0
	GpsNoFix    GpsFixQuality = 1
	GpsFix2D    GpsFixQuality = 2
	GpsFix3D    GpsFixQuality = 3
	GpsDgps     GpsFixQuality = 4
	GpsRtkFloat GpsFixQuality = 5
	GpsRtkFixed GpsFixQuality = 6
	GpsStatic   GpsFixQuality = 7
	GpsPpp      GpsFixQuality = 8
)

var gpsFixNames = map[GpsFixQuality]string{
	GpsNoGps:    "NO_GPS",
	GpsNoFix:    "NO_FIX",
	GpsFix2D:    "2D_FIX",
	GpsFix3D:    "3D_FIX",
	GpsDgps:     "DGPS",
	GpsRtkFloat: "RTK_FLOAT",
	GpsRtkFixed: "RTK_FIXED",
	GpsStatic:   "STATIC",
	GpsPpp:      "PPP",
}

// String returns the display name of the fix quality for diagnostic output.
func (q GpsFixQuality) String() string {
	if name, ok := gpsFixNames[q]; ok {
		return name
	}
	return "UNKNOWN"
}

package services

import (
	"rovermon/models"
)

// gpsHealth stores the latest fix quality from the two GPS receivers. Either
// receiver alone can keep the vehicle informed, so the overall quality is the
// better of the two. Unset receivers read as no GPS.
type gpsHealth struct {
	primary   models.GpsFixQuality
	secondary models.GpsFixQuality
}

func (g *gpsHealth) recordPrimary(fix models.GpsFixQuality) {
	g.primary = fix
}

func (g *gpsHealth) recordSecondary(fix models.GpsFixQuality) {
	g.secondary = fix
}

func (g *gpsHealth) best() models.GpsFixQuality {
	if g.primary > g.secondary {
		return g.primary
	}
	return g.secondary
}

package services

// unknownDistance marks that no distance sample has been taken for the
// active waypoint yet. The first sample after it always counts as progress.
const unknownDistance = -1

// progressTracker watches the distance to the active waypoint and decides,
// sample by sample, whether the vehicle is still getting closer. A
// lastProgressMs of zero is the reset sentinel: stall detection is disarmed
// until a waypoint or progress event arms it again.
type progressTracker struct {
	waypoint       int
	lastDistance   int
	lastProgressMs uint32
	wrongDirection bool
	wrongStreak    int
}

func newProgressTracker() *progressTracker {
	return &progressTracker{lastDistance: unknownDistance}
}

// waypointChanged resets distance tracking when the active waypoint moves on.
// Returns true when seq names a new waypoint.
func (p *progressTracker) waypointChanged(seq int, now uint32) bool {
	if p.waypoint == seq {
		return false
	}
	p.waypoint = seq
	p.lastDistance = unknownDistance
	p.lastProgressMs = now
	return true
}

// itemReached records waypoint arrival as progress.
func (p *progressTracker) itemReached(now uint32) {
	p.lastProgressMs = now
}

// distanceSample classifies one distance report. The order of the branches
// matters: an unknown last distance always counts as progress, an unchanged
// distance counts only while not already regressing, and a growing distance
// starts or extends a wrong-direction streak.
func (p *progressTracker) distanceSample(distance int, now uint32) bool {
	progressMade := false

	switch {
	case p.lastDistance == unknownDistance:
		progressMade = true
	case p.lastDistance == distance:
		if !p.wrongDirection {
			progressMade = true
		}
	case distance > p.lastDistance:
		p.wrongDirection = true
		p.wrongStreak++
	default:
		progressMade = true
	}

	p.lastDistance = distance

	if progressMade {
		p.lastProgressMs = now
		p.wrongDirection = false
		p.wrongStreak = 0
	}

	return progressMade
}

// stalled reports that no progress has been made for thresholdMs. Disarmed
// while lastProgressMs holds the reset sentinel.
func (p *progressTracker) stalled(now, thresholdMs uint32) bool {
	return p.lastProgressMs != 0 && elapsedMs(now, p.lastProgressMs) >= thresholdMs
}

// reset disarms stall detection and clears the wrong-direction state. The
// stored waypoint and distance survive so an unchanged waypoint report after
// a restart stays a no-op.
func (p *progressTracker) reset() {
	p.lastProgressMs = 0
	p.wrongDirection = false
	p.wrongStreak = 0
}

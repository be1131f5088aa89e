package services

// linkHealth tracks when the last telemetry event arrived. Timeout detection
// is armed only after the first event has been seen, so a supervisor that has
// never heard from the vehicle does not declare the link lost.
type linkHealth struct {
	lastEventMs uint32
	seen        bool
}

func (l *linkHealth) recordEvent(now uint32) {
	l.lastEventMs = now
	l.seen = true
}

func (l *linkHealth) lost(now, thresholdMs uint32) bool {
	return l.seen && elapsedMs(now, l.lastEventMs) >= thresholdMs
}

// rearm makes the monitor wait for a fresh first event, so a reconnection
// after a link loss is detected as such.
func (l *linkHealth) rearm() {
	l.seen = false
}

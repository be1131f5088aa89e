package services

import (
	"time"
)

// MissionClock is the monotonic mission-elapsed-time source. The value is a
// 32-bit millisecond counter and is allowed to wrap; all elapsed-time math
// must go through elapsedMs.
type MissionClock interface {
	Now() uint32
}

// bootClock counts milliseconds since the supervisor started.
type bootClock struct {
	start time.Time
}

// NewBootClock returns a MissionClock anchored at the current instant.
func NewBootClock() MissionClock {
	return &bootClock{start: time.Now()}
}

func (c *bootClock) Now() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}

// elapsedMs returns now - since on the wrapping 32-bit clock. Unsigned
// subtraction keeps the result correct across a counter wrap.
func elapsedMs(now, since uint32) uint32 {
	return now - since
}

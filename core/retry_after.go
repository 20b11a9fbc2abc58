package core

import (
	"fmt"
	"math"
	"time"
)

// Unit is the display unit picked for a retry-after value
type Unit int

const (
	UnitNow Unit = iota
	UnitSeconds
	UnitMinutes
	UnitHours
)

func (u Unit) String() string {
	switch u {
	case UnitSeconds:
		return "seconds"
	case UnitMinutes:
		return "minutes"
	case UnitHours:
		return "hours"
	default:
		return "now"
	}
}

// Wait is a human-sized retry-after amount, always rounded up.
type Wait struct {
	Value int
	Unit  Unit
}

// String renders the wait in English for logs, e.g. "3 minutes".
func (w Wait) String() string {
	if w.Unit == UnitNow {
		return "now"
	}
	return fmt.Sprintf("%d %s", w.Value, w.Unit)
}

// RetryAfter picks the largest sensible unit for the time left until resetAt.
// Seconds are used below one minute, minutes below one hour, hours otherwise.
func RetryAfter(resetAt, now time.Time) Wait {
	diff := resetAt.Sub(now)
	if diff <= 0 {
		return Wait{Unit: UnitNow}
	}

	seconds := ceilDiv(diff, time.Second)
	if seconds < 60 {
		return Wait{Value: seconds, Unit: UnitSeconds}
	}

	minutes := ceilDiv(diff, time.Minute)
	if minutes < 60 {
		return Wait{Value: minutes, Unit: UnitMinutes}
	}

	return Wait{Value: ceilDiv(diff, time.Hour), Unit: UnitHours}
}

func ceilDiv(d, unit time.Duration) int {
	return int(math.Ceil(float64(d) / float64(unit)))
}

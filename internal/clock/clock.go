// Package clock provides the time reference used for id generation,
// timestamps and "today" computations.
package clock

import "time"

// Clock yields the current instant in the app's configured time reference.
type Clock interface {
	// Now returns the current instant.
	Now() time.Time
	// Today returns the current date as YYYY-MM-DD.
	Today() string
}

// Fixed is a Clock pinned to a constant UTC offset instead of the host
// timezone database, so date boundaries are deterministic.
type Fixed struct {
	loc *time.Location
}

// NewFixed constructs a Clock at the given UTC offset in minutes.
func NewFixed(offsetMinutes int) Fixed {
	return Fixed{loc: time.FixedZone("fixed", offsetMinutes*60)}
}

// Now returns the current instant in the fixed zone.
func (c Fixed) Now() time.Time { return time.Now().In(c.loc) }

// Today returns the current date in the fixed zone.
func (c Fixed) Today() string { return c.Now().Format(time.DateOnly) }

// Frozen is a Clock stopped at a single instant, for tests.
type Frozen struct {
	T time.Time
}

// Now returns the frozen instant.
func (f Frozen) Now() time.Time { return f.T }

// Today returns the frozen date.
func (f Frozen) Today() string { return f.T.Format(time.DateOnly) }

package audit

import "time"

// Clock abstracts wall-clock time so the hash chain can be tested
// deterministically. Grounded on the Clock/wallClock split in
// guardian.AuditLog.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now().UTC() }

// FixedClock is a Clock that always returns the same instant, for tests.
type FixedClock struct {
	At time.Time
}

func (f FixedClock) Now() time.Time { return f.At }

// Package clock provides the real-time ports.Clock implementation used
// outside of tests.
package clock

import "time"

// System is a ports.Clock backed by the wall clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time { return time.Now() }

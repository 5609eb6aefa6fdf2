package report

import "github.com/jonboulle/clockwork"

var clock = clockwork.NewRealClock()

// SetClock replaces the package clock, for tests. Passing nil restores the
// real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

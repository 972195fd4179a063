// Package clock provides an injectable time source so session and message
// construction code can be driven by a fixed time in tests instead of
// wall-clock time.
package clock

import "time"

// Clock abstracts time.Now for testability.
type Clock interface {
	Now() time.Time
}

// Real returns the system clock.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Fixed returns a Clock that always reports t, for deterministic tests of
// SendingTime/TransactTime stamping.
func Fixed(t time.Time) Clock { return fixedClock{t: t} }

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

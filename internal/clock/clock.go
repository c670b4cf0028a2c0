// Package clock abstracts wall-clock access so the matching engine's
// timeouts (tick cadence, snapshot validity, negotiation/confirmation
// deadlines, KV expiries — spec §5) can be driven deterministically in
// tests instead of sleeping in real time (spec §8: "fake clock ... so
// timeouts are deterministic").
package clock

import "time"

// Clock is the minimal surface the engine needs from time.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	NewTimer(d time.Duration) Timer
}

// Timer mirrors the subset of *time.Timer the engine uses, so it can be
// faked.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
	Reset(d time.Duration) bool
}

type realClock struct{}

// Real is the production Clock, backed directly by the time package.
var Real Clock = realClock{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time  { return time.After(d) }
func (realClock) NewTimer(d time.Duration) Timer          { return &realTimer{t: time.NewTimer(d)} }

type realTimer struct {
	t *time.Timer
}

func (r *realTimer) C() <-chan time.Time       { return r.t.C }
func (r *realTimer) Stop() bool                { return r.t.Stop() }
func (r *realTimer) Reset(d time.Duration) bool { return r.t.Reset(d) }

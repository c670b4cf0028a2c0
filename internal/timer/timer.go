// Package timer implements the explicit timer service called for by spec §9
// ("re-architect as an explicit timer service keyed by (kind, id) with
// cancel-on-resolve; late fires must look up current state and no-op if
// absent"). It replaces ambient goroutine-local timer handles with a single
// registry the matching engine's serialization domain can cancel from.
package timer

import (
	"sync"
	"time"

	"matchcore/internal/clock"
)

// Key identifies one armed timer: a kind ("confirmation.smaller",
// "confirmation.larger", "negotiation") plus the entity id it guards
// (a ConfirmationKey.String() or an asset name).
type Key struct {
	Kind string
	ID   string
}

// Service arms, cancels and fires callbacks keyed by Key. Each callback runs
// on its own goroutine; the matching engine's callbacks take the engine lock
// themselves and re-check that their state still exists. A fire whose Key
// was cancelled or re-armed before the fire is looked up is dropped, since
// Cancel and Arm replace the registry entry the fire compares against.
type Service struct {
	clock clock.Clock

	mu     sync.Mutex
	timers map[Key]clock.Timer
}

func NewService(c clock.Clock) *Service {
	return &Service{clock: c, timers: make(map[Key]clock.Timer)}
}

// Arm starts (or replaces) a timer for key; fn is invoked from a new
// goroutine when it fires, unless the timer is cancelled first. Armed
// is idempotent: arming over an existing key cancels the prior one.
func (s *Service) Arm(key Key, d time.Duration, fn func()) {
	s.mu.Lock()
	if old, ok := s.timers[key]; ok {
		old.Stop()
	}
	t := s.clock.NewTimer(d)
	s.timers[key] = t
	s.mu.Unlock()

	go func() {
		_, ok := <-t.C()
		if !ok {
			return
		}
		s.mu.Lock()
		cur, stillArmed := s.timers[key]
		if stillArmed && cur == t {
			delete(s.timers, key)
		} else {
			stillArmed = false
		}
		s.mu.Unlock()

		if stillArmed {
			fn()
		}
	}()
}

// Cancel stops the timer for key, if any. Safe to call when no timer is
// armed (e.g. a response arrived right as the timer was already firing).
func (s *Service) Cancel(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}

// Armed reports whether a timer is currently armed for key; used in tests.
func (s *Service) Armed(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

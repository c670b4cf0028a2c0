package timer

import (
	"testing"
	"time"

	"matchcore/internal/clock"
)

func TestArmFiresAfterAdvance(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	s := NewService(fc)

	fired := make(chan struct{}, 1)
	s.Arm(Key{Kind: "negotiation", ID: "ABC"}, 30*time.Second, func() {
		fired <- struct{}{}
	})

	fc.Advance(29 * time.Second)
	select {
	case <-fired:
		t.Fatal("fired too early")
	case <-time.After(50 * time.Millisecond):
	}

	fc.Advance(2 * time.Second)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestCancelPreventsFire(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	s := NewService(fc)

	key := Key{Kind: "confirmation.smaller", ID: "ABC:B1:O1"}
	fired := make(chan struct{}, 1)
	s.Arm(key, 60*time.Second, func() { fired <- struct{}{} })
	s.Cancel(key)

	fc.Advance(60 * time.Second)
	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(100 * time.Millisecond):
	}
	if s.Armed(key) {
		t.Error("expected key to be unarmed after cancel")
	}
}

func TestRearmReplacesPriorTimer(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	s := NewService(fc)

	key := Key{Kind: "negotiation", ID: "ABC"}
	firstFired := make(chan struct{}, 1)
	s.Arm(key, 30*time.Second, func() { firstFired <- struct{}{} })

	secondFired := make(chan struct{}, 1)
	s.Arm(key, 30*time.Second, func() { secondFired <- struct{}{} })

	fc.Advance(30 * time.Second)

	select {
	case <-firstFired:
		t.Fatal("stale timer fired after rearm")
	case <-time.After(100 * time.Millisecond):
	}
	select {
	case <-secondFired:
	case <-time.After(time.Second):
		t.Fatal("rearmed timer never fired")
	}
}

package realtime

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestHub() (*Hub, chan struct{}) {
	hub := NewHub(zap.NewNop())
	done := make(chan struct{})
	go hub.Run(done)
	return hub, done
}

func TestSendDeliversOnlyToTargetUser(t *testing.T) {
	hub, done := newTestHub()
	defer close(done)

	alice := hub.NewClient("alice")
	bob := hub.NewClient("bob")
	hub.Register(alice)
	hub.Register(bob)
	time.Sleep(10 * time.Millisecond)

	hub.Send("alice", EventMarketUpdate, map[string]string{"asset": "BTC"})

	select {
	case <-alice.Send():
	case <-time.After(time.Second):
		t.Fatal("expected alice to receive the event")
	}

	select {
	case <-bob.Send():
		t.Fatal("bob should not have received alice's event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub, done := newTestHub()
	defer close(done)

	alice := hub.NewClient("alice")
	bob := hub.NewClient("bob")
	hub.Register(alice)
	hub.Register(bob)
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(EventMarketUpdate, map[string]string{"asset": "BTC"})

	for _, c := range []*Client{alice, bob} {
		select {
		case <-c.Send():
		case <-time.After(time.Second):
			t.Fatalf("expected client %s to receive broadcast", c.UserID)
		}
	}
}

func TestUnregisterRemovesClient(t *testing.T) {
	hub, done := newTestHub()
	defer close(done)

	alice := hub.NewClient("alice")
	hub.Register(alice)
	time.Sleep(10 * time.Millisecond)
	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client registered, got %d", hub.ClientCount())
	}

	hub.Unregister(alice)
	time.Sleep(10 * time.Millisecond)
	if hub.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unregister, got %d", hub.ClientCount())
	}
}

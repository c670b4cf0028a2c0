package matching

import (
	"context"
	"sync"
)

type sentEvent struct {
	userID string
	typ    string
	data   interface{}
}

type fakeRealtime struct {
	mu         sync.Mutex
	sent       []sentEvent
	broadcasts []sentEvent
}

func (f *fakeRealtime) Send(userID, msgType string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEvent{userID: userID, typ: msgType, data: data})
}

func (f *fakeRealtime) Broadcast(msgType string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, sentEvent{typ: msgType, data: data})
}

func (f *fakeRealtime) countSent(userID, msgType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.sent {
		if e.userID == userID && e.typ == msgType {
			n++
		}
	}
	return n
}

type fakeSecondary struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeSecondary) Send(ctx context.Context, address, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

type fakeRefresher struct {
	mu     sync.Mutex
	assets []string
}

func (f *fakeRefresher) RefreshAsset(ctx context.Context, asset string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets = append(f.assets, asset)
	return nil
}

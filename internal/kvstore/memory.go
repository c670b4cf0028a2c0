package kvstore

import (
	"context"
	"sync"
	"time"

	"matchcore/internal/clock"
	"matchcore/internal/models"
)

// MemoryKVStore is a process-local, TTL-expiring KVStore. No example repo in
// the pack wires a real network KV client (no redis/memcached dependency
// appears anywhere in the corpus); this is a deliberate stdlib choice,
// grounded on the teacher's own sync.Map-with-TTL idiom in
// internal/bot/risk.go's marginCache/limitsCache, generalized from an
// unbounded cache to an explicit expiring flag store since spec §6 requires
// heartbeat/flag expiry semantics, not just memoization.
// Default TTLs from spec §5's timeout table: heartbeat expiry 600s,
// active-orders flag expiry 300s.
const (
	DefaultHeartbeatExpiry     = 600 * time.Second
	DefaultActiveOrdersFlagTTL = 300 * time.Second
)

type MemoryKVStore struct {
	clock clock.Clock

	heartbeatExpiry     time.Duration
	activeOrdersFlagTTL time.Duration

	mu          sync.Mutex
	lastRun     time.Time
	hasOrders   *bool
	flagExpires time.Time

	subMu sync.Mutex
	subs  []chan models.TradeExecutedPubSub
}

func NewMemoryKVStore(c clock.Clock, heartbeatExpiry, activeOrdersFlagTTL time.Duration) *MemoryKVStore {
	if heartbeatExpiry <= 0 {
		heartbeatExpiry = DefaultHeartbeatExpiry
	}
	if activeOrdersFlagTTL <= 0 {
		activeOrdersFlagTTL = DefaultActiveOrdersFlagTTL
	}
	return &MemoryKVStore{
		clock:               c,
		heartbeatExpiry:     heartbeatExpiry,
		activeOrdersFlagTTL: activeOrdersFlagTTL,
	}
}

func (k *MemoryKVStore) Heartbeat(ctx context.Context) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.lastRun = k.clock.Now()
	return nil
}

// LastRun exposes the heartbeat for admin/diagnostic surfaces; not part of
// the KVStore interface since spec §6 only requires the write side. The
// second return is false once the heartbeat has gone stale past
// heartbeatExpiry, not merely when it was never written.
func (k *MemoryKVStore) LastRun() (time.Time, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.lastRun.IsZero() || k.clock.Now().Sub(k.lastRun) > k.heartbeatExpiry {
		return k.lastRun, false
	}
	return k.lastRun, true
}

func (k *MemoryKVStore) SetActiveOrdersFlag(ctx context.Context, active bool) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.hasOrders = &active
	k.flagExpires = k.clock.Now().Add(k.activeOrdersFlagTTL)
	return nil
}

func (k *MemoryKVStore) GetActiveOrdersFlag(ctx context.Context) (bool, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.hasOrders == nil || k.clock.Now().After(k.flagExpires) {
		return false, false, nil
	}
	return *k.hasOrders, true, nil
}

func (k *MemoryKVStore) PublishTradeExecuted(ctx context.Context, event models.TradeExecutedPubSub) error {
	k.subMu.Lock()
	subs := make([]chan models.TradeExecutedPubSub, len(k.subs))
	copy(subs, k.subs)
	k.subMu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel that receives every PublishTradeExecuted
// event from now on. Delivery is non-blocking: an event is dropped for a
// subscriber whose 16-slot buffer is full.
func (k *MemoryKVStore) Subscribe() <-chan models.TradeExecutedPubSub {
	ch := make(chan models.TradeExecutedPubSub, 16)
	k.subMu.Lock()
	k.subs = append(k.subs, ch)
	k.subMu.Unlock()
	return ch
}

// Package matching implements the core of the spec: the Matching Loop, the
// per-asset decision logic, the Quantity Confirmation and Negotiation
// controllers, the Trade Committer and the competitive-bidding advisory.
// Grounded on the teacher's internal/bot package (a single-writer state
// machine driven by a ticking loop, channel-based notification dispatch,
// promauto metrics) generalized from its arbitrage-specific scan to this
// spec's two-sided order book semantics.
package matching

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"matchcore/internal/clock"
	"matchcore/internal/kvstore"
	"matchcore/internal/models"
	"matchcore/internal/notify"
	"matchcore/internal/orderbook"
	"matchcore/internal/projection"
	"matchcore/internal/store"
	"matchcore/internal/timer"
)

// Default cadences from spec §5; all configurable via Config.
const (
	DefaultTickInterval        = 5 * time.Second
	DefaultStartupGrace        = 10 * time.Second
	DefaultNegotiationTimeout  = 30 * time.Second
	DefaultConfirmationTimeout = 60 * time.Second
)

// secondaryJobQueueSize bounds the buffered channel that decouples secondary-
// channel sends from the serialization domain (spec §5's "must not block the
// serialization domain"). Grounded on the teacher's internal/bot/engine.go
// notificationChan, sized identically.
const secondaryJobQueueSize = 100

// RealtimePusher is the narrow surface the engine needs from the realtime
// hub; satisfied directly by *realtime.Hub.
type RealtimePusher interface {
	Send(userID, msgType string, data interface{})
	Broadcast(msgType string, data interface{})
}

// Config bundles the engine's tunables, all defaulted to spec §5's values.
type Config struct {
	TickInterval        time.Duration
	StartupGrace        time.Duration
	NegotiationTimeout  time.Duration
	ConfirmationTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		TickInterval:        DefaultTickInterval,
		StartupGrace:        DefaultStartupGrace,
		NegotiationTimeout:  DefaultNegotiationTimeout,
		ConfirmationTimeout: DefaultConfirmationTimeout,
	}
}

// Engine is the single-writer matching core. All mutable state
// (negotiations, confirmations, declinedPairs, the snapshot cache) is
// serialized behind mu, per spec §5.
type Engine struct {
	cfg   Config
	log   *zap.Logger
	clock clock.Clock

	store     store.Store
	kv        kvstore.KVStore
	cache     *orderbook.SnapshotCache
	refresher projection.Refresher
	realtime  RealtimePusher
	secondary notify.SecondaryChannel
	timers    *timer.Service
	metrics   *metrics

	mu            sync.Mutex
	negotiations  map[string]*models.NegotiationState    // by asset
	confirmations map[string]*models.PendingConfirmation // by ConfirmationKey.String()
	declined      *models.DeclinedPairs

	secondaryJobs   chan secondaryJob
	secondaryStopCh chan struct{}
	secondaryStop   sync.Once

	runMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// secondaryJob is one deferred secondary-channel send, built while e.mu is
// held but executed on secondaryWorker's own goroutine so that a slow or
// failing webhook (notify.WebhookChannel.Send can block for the full
// rate-limit wait plus retry backoff) never stalls a tick or an admin
// handler. Grounded on the teacher's internal/bot/channel_helpers.go
// tryEnqueueNotification / internal/bot/engine.go notificationWorker split.
type secondaryJob struct {
	userID string
	kind   string
	build  func() string
	onSent func()
}

func NewEngine(
	cfg Config,
	log *zap.Logger,
	c clock.Clock,
	st store.Store,
	kv kvstore.KVStore,
	refresher projection.Refresher,
	rt RealtimePusher,
	secondary notify.SecondaryChannel,
) *Engine {
	e := &Engine{
		cfg:             cfg,
		log:             log,
		clock:           c,
		store:           st,
		kv:              kv,
		cache:           orderbook.NewSnapshotCache(c, st),
		refresher:       refresher,
		realtime:        rt,
		secondary:       secondary,
		timers:          timer.NewService(c),
		metrics:         newMetrics(),
		negotiations:    make(map[string]*models.NegotiationState),
		confirmations:   make(map[string]*models.PendingConfirmation),
		declined:        models.NewDeclinedPairs(),
		secondaryJobs:   make(chan secondaryJob, secondaryJobQueueSize),
		secondaryStopCh: make(chan struct{}),
	}
	go e.secondaryWorker()
	return e
}

// enqueueSecondary schedules a secondary-channel send off the serialization
// domain. Non-blocking: if the queue is full the job is dropped and counted,
// per spec §7's "best-effort, a failure in any one does not roll back or
// delay the others" — a full queue is just another form of best-effort
// failure, not a reason to block the caller (which may be holding e.mu).
func (e *Engine) enqueueSecondary(job secondaryJob) {
	select {
	case e.secondaryJobs <- job:
	default:
		e.metrics.notifyQueueDroppedTotal.WithLabelValues(job.kind).Inc()
		e.log.Warn("matching: secondary notification queue full, dropping", zap.String("kind", job.kind), zap.String("userId", job.userID))
	}
}

// secondaryWorker drains secondaryJobs on its own goroutine for the life of
// the engine, performing the FindUserByID lookup and SecondaryChannel.Send
// that callers must not do while holding e.mu. It runs from construction,
// independent of Start/Stop, since admin handlers may enqueue jobs even
// before the tick loop is started.
func (e *Engine) secondaryWorker() {
	for {
		select {
		case job := <-e.secondaryJobs:
			e.runSecondaryJob(job)
		case <-e.secondaryStopCh:
			return
		}
	}
}

func (e *Engine) runSecondaryJob(job secondaryJob) {
	ctx := context.Background()
	user, err := e.store.FindUserByID(ctx, job.userID)
	if err != nil || user.SecondaryAddress == "" {
		return
	}
	if err := e.secondary.Send(ctx, user.SecondaryAddress, job.build()); err != nil {
		e.metrics.notifyFailuresTotal.WithLabelValues("secondary").Inc()
		e.log.Debug("matching: secondary send failed", zap.String("kind", job.kind), zap.String("userId", job.userID), zap.Error(err))
		return
	}
	if job.onSent != nil {
		job.onSent()
	}
}

// Start begins the matching loop after the configured startup grace. It
// returns immediately; the loop runs on its own goroutine until Stop.
func (e *Engine) Start(ctx context.Context) {
	e.runMu.Lock()
	if e.running {
		e.runMu.Unlock()
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.runMu.Unlock()

	e.wg.Add(1)
	go e.loop(ctx)
}

// Stop halts the matching loop and the secondary-notification worker;
// in-flight controllers and timers are left to resolve naturally (spec §4.1
// doesn't require draining on stop). Safe to call even if Start never was:
// secondaryWorker runs from construction, independent of e.running.
func (e *Engine) Stop() {
	e.secondaryStop.Do(func() { close(e.secondaryStopCh) })

	e.runMu.Lock()
	defer e.runMu.Unlock()
	if !e.running {
		return
	}
	close(e.stopCh)
	e.running = false
	e.wg.Wait()
}

func (e *Engine) loop(ctx context.Context) {
	defer e.wg.Done()

	select {
	case <-e.clock.After(e.cfg.StartupGrace):
	case <-e.stopCh:
		return
	case <-ctx.Done():
		return
	}

	ticker := e.clock.NewTimer(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		e.tick(ctx)

		ticker.Reset(e.cfg.TickInterval)
		select {
		case <-ticker.C():
		case <-e.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// tick is one full pass of the Matching Loop (spec §4.1). It never panics
// out to the caller: per-asset errors are caught at the asset boundary.
func (e *Engine) tick(ctx context.Context) {
	start := e.clock.Now()
	defer func() {
		e.metrics.ticksTotal.Inc()
		e.metrics.tickDuration.Observe(e.clock.Now().Sub(start).Seconds())
	}()

	if err := e.kv.Heartbeat(ctx); err != nil {
		e.log.Warn("matching: heartbeat write failed", zap.Error(err))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Read the hint flag (spec §4.1 step 2); its value never gates what
	// follows, the snapshot is always refreshed and the flag always
	// recomputed from the observed count below.
	if had, present, err := e.kv.GetActiveOrdersFlag(ctx); err != nil {
		e.log.Warn("matching: active-orders flag read failed", zap.Error(err))
	} else {
		e.log.Debug("matching: active-orders flag before refresh", zap.Bool("hadOrders", had), zap.Bool("present", present))
	}

	orders := e.cache.Get(ctx)
	if err := e.kv.SetActiveOrdersFlag(ctx, len(orders) > 0); err != nil {
		e.log.Warn("matching: active-orders flag write failed", zap.Error(err))
	}
	if len(orders) == 0 {
		return
	}

	byAsset := orderbook.PartitionByAsset(orders)
	for _, asset := range orderbook.AssetsByOrderCountDesc(byAsset) {
		e.processAssetLocked(ctx, asset, byAsset[asset])
	}
}

// processAssetLocked runs §4.2 for one asset, recovering from any panic so
// one asset's failure never halts the loop or its siblings (spec §7).
func (e *Engine) processAssetLocked(ctx context.Context, asset string, orders []*models.Order) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("matching: recovered from panic processing asset", zap.String("asset", asset), zap.Any("panic", r))
		}
	}()

	if err := e.decide(ctx, asset, orders); err != nil {
		e.log.Error("matching: decision failed", zap.String("asset", asset), zap.Error(err))
	}
}

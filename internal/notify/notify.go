// Package notify implements the best-effort secondary channel (spec §6):
// plain-text messages to a user's registered out-of-band address, with the
// `YES <prefix8>` / `NO <prefix8>` reply grammar for quantity confirmations.
// Grounded on the teacher's resty-based outbound HTTP client idiom (a
// pooled *resty.Client wrapped by pkg/retry and pkg/ratelimit), generalized
// from a single exchange endpoint to one webhook URL per user.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"matchcore/pkg/ratelimit"
	"matchcore/pkg/retry"
)

// SecondaryChannel is the thin capability the core depends on: "notify one
// user over the secondary channel" (spec §4 Notification Adapter).
type SecondaryChannel interface {
	Send(ctx context.Context, address, message string) error
}

// Config controls the outbound HTTP client and per-user throttling.
type Config struct {
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	RetryConfig    retry.Config
}

func DefaultConfig() Config {
	return Config{
		Timeout:        5 * time.Second,
		RequestsPerSec: 1,
		Burst:          3,
		RetryConfig:    retry.ConservativeConfig(),
	}
}

// WebhookChannel posts each message as a small JSON body to the user's
// registered address. Reused unmodified in shape from the teacher's resty
// client construction (timeout, retry count disabled in favor of our own
// pkg/retry wrapper, connection pooling defaults).
type WebhookChannel struct {
	client *resty.Client
	log    *zap.Logger
	cfg    Config

	mu       sync.Mutex
	limiters map[string]*ratelimit.RateLimiter
}

func NewWebhookChannel(cfg Config, log *zap.Logger) *WebhookChannel {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0) // retries are owned by pkg/retry, not resty's own loop

	return &WebhookChannel{
		client:   client,
		log:      log,
		cfg:      cfg,
		limiters: make(map[string]*ratelimit.RateLimiter),
	}
}

func (w *WebhookChannel) limiterFor(address string) *ratelimit.RateLimiter {
	w.mu.Lock()
	defer w.mu.Unlock()
	if l, ok := w.limiters[address]; ok {
		return l
	}
	l := ratelimit.NewRateLimiter(w.cfg.RequestsPerSec, float64(w.cfg.Burst))
	w.limiters[address] = l
	return l
}

// Send delivers message to address, rate-limited per address (spec §5's "cap
// outbound secondary-channel sends per user") and retried with jitter
// (spec §7: best-effort, never blocks the serialization domain — callers
// must invoke Send from a goroutine, never from the matching loop itself).
func (w *WebhookChannel) Send(ctx context.Context, address, message string) error {
	if address == "" {
		return fmt.Errorf("notify: empty address")
	}

	limiter := w.limiterFor(address)
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notify: rate limit wait: %w", err)
	}

	return retry.Do(ctx, func() error {
		resp, err := w.client.R().
			SetContext(ctx).
			SetBody(map[string]string{"message": message}).
			Post(address)
		if err != nil {
			return retry.Temporary(err)
		}
		if resp.IsError() {
			return retry.Temporary(fmt.Errorf("notify: webhook returned %s", resp.Status()))
		}
		return nil
	}, w.cfg.RetryConfig)
}

// ParsedReply is a user's decoded secondary-channel reply.
type ParsedReply struct {
	Accepted bool
	Prefix   string
}

// ParseReply decodes "YES <prefix8>" / "NO <prefix8>", case-insensitive and
// tolerant of surrounding whitespace. Any other shape is rejected.
func ParseReply(raw string) (ParsedReply, bool) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) != 2 {
		return ParsedReply{}, false
	}

	verb := strings.ToUpper(fields[0])
	if verb != "YES" && verb != "NO" {
		return ParsedReply{}, false
	}

	prefix := fields[1]
	if len(prefix) != 8 {
		return ParsedReply{}, false
	}

	return ParsedReply{Accepted: verb == "YES", Prefix: prefix}, true
}

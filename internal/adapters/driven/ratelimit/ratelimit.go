// Package ratelimit provides client-side rate limiting for hosted API
// adapters. Local services (Ollama) are not limited; the inference
// itself is the bottleneck there.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Provider identifies a hosted API for rate limiting purposes.
type Provider string

const (
	// ProviderOpenAI is the OpenAI embeddings API.
	ProviderOpenAI Provider = "openai"
	// ProviderVision is the Google Cloud Vision API.
	ProviderVision Provider = "vision"
)

// Config holds rate limiting configuration for a provider.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultLimits provides conservative defaults for each provider,
// well below the published quotas so shared keys keep headroom.
var DefaultLimits = map[Provider]Config{
	ProviderOpenAI: {RequestsPerSecond: 5.0, BurstSize: 10},
	ProviderVision: {RequestsPerSecond: 3.0, BurstSize: 5},
}

// Limiter provides rate limiting for outbound API requests.
// It uses a token bucket with an additional backoff window honoured
// after a 429 response.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// New creates a limiter for the specified provider.
func New(provider Provider) *Limiter {
	cfg, ok := DefaultLimits[provider]
	if !ok {
		cfg = Config{RequestsPerSecond: 5.0, BurstSize: 10}
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a limiter with custom configuration.
func NewWithConfig(cfg Config) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait blocks until a request can be made without exceeding the rate
// limit. It also respects any backoff window set by RecordRetryAfter.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	return l.limiter.Wait(ctx)
}

// RecordRetryAfter sets a backoff window after a 429 response. Zero or
// negative seconds falls back to 60.
func (l *Limiter) RecordRetryAfter(seconds int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if seconds <= 0 {
		seconds = 60
	}
	l.retryAt = time.Now().Add(time.Duration(seconds) * time.Second)
}

// Allow reports whether a request can be made immediately without
// blocking.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

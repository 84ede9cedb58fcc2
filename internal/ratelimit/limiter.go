// Package ratelimit implements a sliding-window admission controller for
// calls against the source storage API. It is a single-process, best-effort
// limiter: the remote quota is the hard backstop, this one exists to avoid
// wasteful 429 round-trips.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"shopify-asset-sync/internal/domain/model"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Granted bool
	// Wait is how long until the oldest in-window call expires. Only set
	// when Granted is false.
	Wait time.Duration
}

// Config bounds the window and the wait loop.
type Config struct {
	Limit       int
	Window      time.Duration
	MaxAttempts int
	// MaxSingleWait caps one sleep inside WaitAdmit so a pathological
	// window configuration cannot starve the caller indefinitely.
	MaxSingleWait time.Duration
}

const (
	defaultLimit         = 10
	defaultWindow        = 100 * time.Second
	defaultMaxAttempts   = 10
	defaultMaxSingleWait = 30 * time.Second
)

// Limiter tracks recent call timestamps in an ordered slice. The mutex is
// cheap under the single-worker orchestration model and keeps the limiter
// usable from the destination client's pacing path and from tests.
type Limiter struct {
	mu            sync.Mutex
	timestamps    []time.Time
	limit         int
	window        time.Duration
	maxAttempts   int
	maxSingleWait time.Duration
	rejections    int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg Config) *Limiter {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.MaxSingleWait <= 0 {
		cfg.MaxSingleWait = defaultMaxSingleWait
	}
	return &Limiter{
		limit:         cfg.Limit,
		window:        cfg.Window,
		maxAttempts:   cfg.MaxAttempts,
		maxSingleWait: cfg.MaxSingleWait,
		now:           time.Now,
		sleep:         sleepWithContext,
	}
}

// Admit checks whether a call may proceed now. A granted admission records
// the call timestamp immediately; a deferred one reports how long until a
// slot frees up.
func (l *Limiter) Admit() Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	if len(l.timestamps) < l.limit {
		l.timestamps = append(l.timestamps, now)
		return Decision{Granted: true}
	}

	wait := l.timestamps[0].Add(l.window).Sub(now)
	if wait < 0 {
		wait = 0
	}
	return Decision{Wait: wait}
}

// WaitAdmit loops on Admit, sleeping the indicated wait (capped) between
// attempts. Exhausting the attempt budget fails with ErrRateLimitExceeded.
func (l *Limiter) WaitAdmit(ctx context.Context) error {
	for attempt := 0; attempt < l.maxAttempts; attempt++ {
		d := l.Admit()
		if d.Granted {
			return nil
		}
		l.RecordRejection()

		wait := d.Wait
		if wait > l.maxSingleWait {
			wait = l.maxSingleWait
		}
		if wait <= 0 {
			wait = 10 * time.Millisecond
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return model.ErrRateLimitExceeded
}

// RecordExecution notes a call that bypassed Admit, keeping the window
// honest when a collaborator issues its own requests.
func (l *Limiter) RecordExecution() {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.prune(now)
	l.timestamps = append(l.timestamps, now)
}

// RecordRejection counts a deferred admission for diagnostics.
func (l *Limiter) RecordRejection() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejections++
}

// Rejections returns how many admissions were deferred so far.
func (l *Limiter) Rejections() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rejections
}

// InWindow returns the number of calls currently inside the window.
func (l *Limiter) InWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(l.now())
	return len(l.timestamps)
}

// prune drops timestamps older than the window. Caller holds the mutex.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.timestamps) && !l.timestamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.timestamps = append(l.timestamps[:0], l.timestamps[i:]...)
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

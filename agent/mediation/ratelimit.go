package mediation

import (
	"context"
	"sync"
	"time"

	sessionx "github.com/alltimesound/customer-service-agent/agent/session"
)

const (
	// DefaultQuota is how many model calls one session may make per window.
	DefaultQuota = 10
	// DefaultWindow is the fixed rate-limit window length.
	DefaultWindow = 60 * time.Second
)

// RateLimiter applies a fixed-window limit to model calls. Counters live on
// the session state so they survive a session-store round trip; the limiter
// itself only serializes concurrent calls for the same session.
type RateLimiter struct {
	quota  int
	window time.Duration
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type LimiterOption func(*RateLimiter)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) LimiterOption {
	return func(l *RateLimiter) { l.now = now }
}

// WithSleep replaces the blocking wait, for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) LimiterOption {
	return func(l *RateLimiter) { l.sleep = sleep }
}

func NewRateLimiter(quota int, window time.Duration, opts ...LimiterOption) *RateLimiter {
	if quota <= 0 {
		quota = DefaultQuota
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &RateLimiter{
		quota:  quota,
		window: window,
		now:    time.Now,
		sleep:  sleepContext,
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Wait charges one call against the session's window. The first call of a
// window records its start and counts one; a call that would exceed the
// quota blocks until the window elapses, then opens a fresh window counting
// itself. Waiting respects ctx cancellation.
func (l *RateLimiter) Wait(ctx context.Context, sess *sessionx.State) error {
	lock := l.sessionLock(sess.SessionID)
	lock.Lock()
	defer lock.Unlock()

	now := l.now()
	if sess.WindowStart.IsZero() || now.Sub(sess.WindowStart) >= l.window {
		sess.WindowStart = now
		sess.RequestCount = 1
		sess.Touch(now)
		return nil
	}

	if sess.RequestCount < l.quota {
		sess.RequestCount++
		sess.Touch(now)
		return nil
	}

	remaining := l.window - now.Sub(sess.WindowStart)
	if err := l.sleep(ctx, remaining); err != nil {
		return err
	}

	now = l.now()
	sess.WindowStart = now
	sess.RequestCount = 1
	sess.Touch(now)
	return nil
}

func (l *RateLimiter) sessionLock(sessionID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[sessionID] = lock
	}
	return lock
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

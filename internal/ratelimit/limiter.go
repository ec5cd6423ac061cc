package ratelimit

import (
	"sync"
	"time"
)

// Config holds the two simultaneous window thresholds.
type Config struct {
	PerMinute int
	PerHour   int
}

// SlidingWindowLimiter tracks request timestamps per client address and
// enforces per-minute and per-hour thresholds over true sliding windows.
// State is process-local and ephemeral: a restart resets all counters.
type SlidingWindowLimiter struct {
	mu      sync.Mutex
	history map[string][]time.Time
	cfg     Config
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewSlidingWindowLimiter creates a limiter and starts its background
// pruner on the given interval. Pass interval <= 0 to disable pruning
// (tests prune explicitly).
func NewSlidingWindowLimiter(cfg Config, pruneInterval time.Duration) *SlidingWindowLimiter {
	l := &SlidingWindowLimiter{
		history: make(map[string][]time.Time),
		cfg:     cfg,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if pruneInterval > 0 {
		go l.pruneLoop(pruneInterval)
	}
	return l
}

// Admit records and admits a request from addr, or denies it with a
// retry hint. Denied requests are not recorded.
func (l *SlidingWindowLimiter) Admit(addr string) (bool, time.Duration) {
	now := l.now()
	minuteAgo := now.Add(-time.Minute)
	hourAgo := now.Add(-time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()

	var inMinute, inHour int
	var oldestInMinute, oldestInHour time.Time
	for _, ts := range l.history[addr] {
		if ts.After(hourAgo) {
			inHour++
			if oldestInHour.IsZero() {
				oldestInHour = ts
			}
			if ts.After(minuteAgo) {
				inMinute++
				if oldestInMinute.IsZero() {
					oldestInMinute = ts
				}
			}
		}
	}

	if inMinute >= l.cfg.PerMinute {
		return false, retryAfter(oldestInMinute, time.Minute, now)
	}
	if inHour >= l.cfg.PerHour {
		return false, retryAfter(oldestInHour, time.Hour, now)
	}

	l.history[addr] = append(l.history[addr], now)
	return true, 0
}

func retryAfter(oldest time.Time, window time.Duration, now time.Time) time.Duration {
	wait := oldest.Add(window).Sub(now)
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

// Prune drops entries older than the hour window and empty addresses.
func (l *SlidingWindowLimiter) Prune() {
	cutoff := l.now().Add(-time.Hour)

	l.mu.Lock()
	defer l.mu.Unlock()

	for addr, stamps := range l.history {
		kept := stamps[:0]
		for _, ts := range stamps {
			if ts.After(cutoff) {
				kept = append(kept, ts)
			}
		}
		if len(kept) == 0 {
			delete(l.history, addr)
		} else {
			l.history[addr] = kept
		}
	}
}

func (l *SlidingWindowLimiter) pruneLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Prune()
		case <-l.stop:
			return
		}
	}
}

// Close stops the background pruner.
func (l *SlidingWindowLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

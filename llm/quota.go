package llm

import (
	"context"
	"sync"
	"time"

	"nutri-lens/config"
	"nutri-lens/errs"
)

// QuotaLimiter enforces per-minute spacing and a daily cap on model calls.
// Counters live in memory and reset when the process restarts.
type QuotaLimiter struct {
	mu sync.Mutex

	dailyLimit int
	usedToday  int
	dayKey     string

	interval time.Duration
	lastCall time.Time

	now func() time.Time
}

// NewQuotaLimiter builds a limiter from llm_quota. A value <= 0 disables that limit.
func NewQuotaLimiter(q config.LLMQuotaConfig) *QuotaLimiter {
	requestsPerDay := q.RequestsPerDay
	if requestsPerDay < 0 {
		requestsPerDay = 0
	}

	var interval time.Duration
	if q.RequestsPerMinute > 0 {
		interval = time.Minute / time.Duration(q.RequestsPerMinute)
	}

	return &QuotaLimiter{
		dailyLimit: requestsPerDay,
		interval:   interval,
		now:        time.Now,
	}
}

// WaitAndReserve blocks until a call may be made and reserves it.
// It returns (false, nil) once the daily cap is spent and (false, ctx.Err()) on cancellation.
func (l *QuotaLimiter) WaitAndReserve(ctx context.Context) (bool, error) {
	for {
		l.mu.Lock()

		now := l.now().UTC()
		todayKey := now.Format("2006-01-02")
		if l.dayKey != todayKey {
			l.dayKey = todayKey
			l.usedToday = 0
		}

		if l.dailyLimit > 0 && l.usedToday >= l.dailyLimit {
			l.mu.Unlock()
			return false, nil
		}

		var delay time.Duration
		if l.interval > 0 && !l.lastCall.IsZero() {
			delay = l.lastCall.Add(l.interval).Sub(now)
		}

		if delay <= 0 {
			l.usedToday++
			l.lastCall = now
			l.mu.Unlock()
			return true, nil
		}

		// wait unlocked, then re-check
		l.mu.Unlock()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// Limited applies a QuotaLimiter in front of another Generator.
type Limited struct {
	next    Generator
	limiter *QuotaLimiter
}

func WithQuota(next Generator, limiter *QuotaLimiter) *Limited {
	return &Limited{next: next, limiter: limiter}
}

func (l *Limited) GenerateJSON(ctx context.Context, req Request) (*Response, error) {
	ok, err := l.limiter.WaitAndReserve(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errs.ErrQuotaExceeded
	}
	return l.next.GenerateJSON(ctx, req)
}

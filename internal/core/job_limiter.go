package core

import (
	"context"
	"errors"
	"time"
)

// ErrTooManyJobs means no job slot freed up within the limiter's wait time.
var ErrTooManyJobs = errors.New("too many concurrent jobs, please try again later")

const (
	DefaultMaxConcurrentJobs = 4
	DefaultMaxWaitTime       = 30 * time.Second
)

// JobLimiter caps how many imports and exports render at once. Each job
// holds one slot of a buffered channel for its whole run.
type JobLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
}

// NewJobLimiter returns a limiter with maxConcurrent slots. Non-positive
// arguments fall back to the defaults.
func NewJobLimiter(maxConcurrent int, maxWait time.Duration) *JobLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentJobs
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &JobLimiter{slots: make(chan struct{}, maxConcurrent), maxWait: maxWait}
}

// Acquire takes a slot, waiting at most maxWait. Every successful Acquire
// must be paired with Release.
func (l *JobLimiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManyJobs
	}
}

// Release frees a slot taken by Acquire.
func (l *JobLimiter) Release() {
	<-l.slots
}

func (l *JobLimiter) ActiveCount() int   { return len(l.slots) }
func (l *JobLimiter) MaxConcurrent() int { return cap(l.slots) }
func (l *JobLimiter) Available() int     { return cap(l.slots) - len(l.slots) }

// WaitForDrain returns once no job is running. It does so by claiming
// every slot in turn, so jobs arriving meanwhile queue behind it.
func (l *JobLimiter) WaitForDrain(ctx context.Context) error {
	held := 0
	defer func() {
		for ; held > 0; held-- {
			<-l.slots
		}
	}()

	for held < cap(l.slots) {
		select {
		case l.slots <- struct{}{}:
			held++
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// JobLimiterStatus is reported by /healthz.
type JobLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

func (l *JobLimiter) Status() JobLimiterStatus {
	return JobLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}

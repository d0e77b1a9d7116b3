package poller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
)

// LogFetcher fetches the full current execution log for a workflow.
type LogFetcher func(ctx context.Context, workflowID string) ([]string, error)

// Poller repeatedly fetches execution logs for one running workflow until a
// completion marker appears, the elapsed bound is exceeded, or the context
// is cancelled. Cycles are serialized: the next fetch is never scheduled
// before the previous one settles.
type Poller struct {
	// Logs fetches the log sequence. Required.
	Logs LogFetcher

	// Interval is the base delay between fetches. A ±20% jitter is applied
	// to each wait.
	Interval time.Duration

	// MaxElapsed bounds the total polling time. When exceeded, Run returns
	// ErrPollTimeout.
	MaxElapsed time.Duration

	// MaxConsecutiveFailures bounds back-to-back fetch failures before Run
	// gives up with the last error. Zero means DefaultMaxConsecutiveFailures.
	MaxConsecutiveFailures int

	// Markers are log-line substrings that signal run completion.
	Markers []string
}

const (
	DefaultInterval               = 2 * time.Second
	DefaultMaxElapsed             = 30 * time.Minute
	DefaultMaxConsecutiveFailures = 10
)

// Run polls logs for workflowID until completion.
//
// Each cycle the full log sequence replaces the previous one via onUpdate;
// the authoritative copy is always the latest fetch. When a marker is seen,
// onComplete is invoked exactly once and Run returns nil. Transient fetch
// failures are retried on the same schedule up to MaxConsecutiveFailures.
//
// Cancellation is cooperative: after ctx is cancelled no further callbacks
// fire, and the result of an in-flight fetch is discarded rather than
// delivered.
func (p *Poller) Run(ctx context.Context, workflowID string, onUpdate func([]string), onComplete func()) error {
	if p.Logs == nil {
		return fmt.Errorf("poller has no log fetcher")
	}

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxElapsed := p.MaxElapsed
	if maxElapsed <= 0 {
		maxElapsed = DefaultMaxElapsed
	}
	maxFailures := p.MaxConsecutiveFailures
	if maxFailures <= 0 {
		maxFailures = DefaultMaxConsecutiveFailures
	}

	// Constant interval with jitter: exponential backoff with multiplier 1
	// keeps the cadence fixed while RandomizationFactor spreads the fetches.
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = interval
	schedule.MaxInterval = interval
	schedule.Multiplier = 1.0
	schedule.RandomizationFactor = 0.2
	schedule.MaxElapsedTime = maxElapsed
	schedule.Reset()

	timer := time.NewTimer(0) // first fetch happens immediately
	defer timer.Stop()

	failures := 0
	var lastErr error

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		logs, err := p.Logs(ctx, workflowID)

		// A fetch that settles after cancellation must not mutate anything
		// the caller observes.
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			failures++
			lastErr = err
			if failures >= maxFailures {
				return fmt.Errorf("giving up after %d consecutive log fetch failures: %w", failures, lastErr)
			}
		} else {
			failures = 0
			onUpdate(logs)

			if p.completed(logs) {
				onComplete()
				return nil
			}
		}

		next := schedule.NextBackOff()
		if next == backoff.Stop {
			if lastErr != nil {
				return fmt.Errorf("%w: last fetch error: %v", cerrors.ErrPollTimeout, lastErr)
			}
			return fmt.Errorf("%w: no completion marker after %s", cerrors.ErrPollTimeout, maxElapsed)
		}
		timer.Reset(next)
	}
}

func (p *Poller) completed(logs []string) bool {
	for _, line := range logs {
		for _, marker := range p.Markers {
			if marker != "" && strings.Contains(line, marker) {
				return true
			}
		}
	}
	return false
}

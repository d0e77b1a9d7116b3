package poller

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
)

// scriptedFetcher returns each scripted log snapshot in order, repeating
// the final one once the script runs out.
type scriptedFetcher struct {
	mu    sync.Mutex
	calls int
	logs  [][]string
	errs  []error
}

func (f *scriptedFetcher) fetch(ctx context.Context, workflowID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++
	if i >= len(f.logs) {
		i = len(f.logs) - 1
	}
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	return f.logs[i], nil
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRunStopsOnCompletionMarker(t *testing.T) {
	fetcher := &scriptedFetcher{
		logs: [][]string{
			{"step 1 started"},
			{"step 1 started", "step 2 started"},
			{"step 1 started", "step 2 started", "Notebook executed"},
		},
	}

	p := &Poller{
		Logs:     fetcher.fetch,
		Interval: 5 * time.Millisecond,
		Markers:  []string{"Notebook executed"},
	}

	var updates [][]string
	completions := 0
	err := p.Run(context.Background(), "wf-1", func(logs []string) {
		updates = append(updates, logs)
	}, func() {
		completions++
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if fetcher.callCount() != 3 {
		t.Errorf("Fetcher was called %d times, expected 3", fetcher.callCount())
	}
	if completions != 1 {
		t.Errorf("onComplete fired %d times, expected exactly once", completions)
	}
	if len(updates) != 3 {
		t.Fatalf("onUpdate fired %d times, expected 3", len(updates))
	}

	// Each update replaces the previous log wholesale.
	want := []string{"step 1 started", "step 2 started", "Notebook executed"}
	if !reflect.DeepEqual(updates[2], want) {
		t.Errorf("Final update is %v, expected %v", updates[2], want)
	}
}

func TestRunMatchesMarkerAsSubstring(t *testing.T) {
	fetcher := &scriptedFetcher{
		logs: [][]string{
			{"[2025-06-01 12:03:44] Execution finished with status 0"},
		},
	}

	p := &Poller{
		Logs:     fetcher.fetch,
		Interval: 5 * time.Millisecond,
		Markers:  []string{"Notebook executed", "Execution finished"},
	}

	err := p.Run(context.Background(), "wf-1", func([]string) {}, func() {})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("Fetcher was called %d times, expected 1", fetcher.callCount())
	}
}

func TestRunTimesOutWithoutMarker(t *testing.T) {
	fetcher := &scriptedFetcher{
		logs: [][]string{{"still going"}},
	}

	p := &Poller{
		Logs:       fetcher.fetch,
		Interval:   5 * time.Millisecond,
		MaxElapsed: 30 * time.Millisecond,
		Markers:    []string{"Notebook executed"},
	}

	completions := 0
	err := p.Run(context.Background(), "wf-1", func([]string) {}, func() { completions++ })
	if !errors.Is(err, cerrors.ErrPollTimeout) {
		t.Fatalf("Expected ErrPollTimeout, got: %v", err)
	}
	if completions != 0 {
		t.Errorf("onComplete fired on timeout")
	}
}

func TestRunToleratesTransientFailures(t *testing.T) {
	flaky := errors.New("connection reset")
	fetcher := &scriptedFetcher{
		logs: [][]string{
			nil,
			nil,
			{"Notebook executed"},
		},
		errs: []error{flaky, flaky, nil},
	}

	p := &Poller{
		Logs:     fetcher.fetch,
		Interval: 5 * time.Millisecond,
		Markers:  []string{"Notebook executed"},
	}

	err := p.Run(context.Background(), "wf-1", func([]string) {}, func() {})
	if err != nil {
		t.Fatalf("Run failed despite recovery: %v", err)
	}
	if fetcher.callCount() != 3 {
		t.Errorf("Fetcher was called %d times, expected 3", fetcher.callCount())
	}
}

func TestRunGivesUpAfterConsecutiveFailures(t *testing.T) {
	flaky := errors.New("connection reset")
	fetcher := &scriptedFetcher{
		logs: [][]string{nil},
		errs: []error{flaky},
	}

	p := &Poller{
		Logs:                   fetcher.fetch,
		Interval:               time.Millisecond,
		MaxConsecutiveFailures: 3,
		Markers:                []string{"Notebook executed"},
	}

	err := p.Run(context.Background(), "wf-1", func([]string) {}, func() {})
	if err == nil {
		t.Fatalf("Run succeeded despite permanent fetch failures")
	}
	if !errors.Is(err, flaky) {
		t.Errorf("Error does not wrap the fetch failure: %v", err)
	}
	if fetcher.callCount() != 3 {
		t.Errorf("Fetcher was called %d times, expected 3", fetcher.callCount())
	}
}

func TestRunDiscardsResultsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// The fetch cancels the context before returning, simulating a
	// cancellation that lands while a fetch is in flight.
	fetch := func(ctx context.Context, workflowID string) ([]string, error) {
		cancel()
		return []string{"Notebook executed"}, nil
	}

	p := &Poller{
		Logs:     fetch,
		Interval: time.Millisecond,
		Markers:  []string{"Notebook executed"},
	}

	updates := 0
	completions := 0
	err := p.Run(ctx, "wf-1", func([]string) { updates++ }, func() { completions++ })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", err)
	}
	if updates != 0 || completions != 0 {
		t.Errorf("Callbacks fired after cancellation: %d updates, %d completions", updates, completions)
	}
}

func TestRunRequiresFetcher(t *testing.T) {
	p := &Poller{}
	if err := p.Run(context.Background(), "wf-1", func([]string) {}, func() {}); err == nil {
		t.Errorf("Run without a fetcher did not fail")
	}
}

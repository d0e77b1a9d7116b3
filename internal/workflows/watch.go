package workflows

import (
	"context"

	"github.com/cleanroom-sh/cleanroom/internal/journal"
	"github.com/cleanroom-sh/cleanroom/internal/orchestrator"
	"github.com/cleanroom-sh/cleanroom/internal/poller"
	"github.com/cleanroom-sh/cleanroom/internal/results"
	"github.com/cleanroom-sh/cleanroom/internal/workflow"
)

// WatchOptions configures log watching for a running workflow.
type WatchOptions struct {
	WorkflowID string

	// OnUpdate receives the full log sequence after each successful fetch,
	// replacing any previous delivery. Optional.
	OnUpdate func(logs []string)
}

// WatchResult contains the outcome of watching a run to completion.
type WatchResult struct {
	// Logs is the final log sequence.
	Logs []string

	// Results are the artifacts listed once completion was observed.
	// Listing failure is reported here rather than failing the watch;
	// the run itself still completed.
	Results    []orchestrator.Result
	ResultsErr error

	// State is the updated local view when a mirror exists.
	State    workflow.State
	Mirrored bool
}

// Watch polls the workflow's execution log until a completion marker
// appears, then marks the mirror completed and lists results exactly once.
//
// Polling honors the configured interval, jitter, elapsed bound, and
// failure bound; exceeding the elapsed bound returns ErrPollTimeout.
// Cancelling ctx stops the watch without mutating any state.
func Watch(ctx context.Context, opts WatchOptions) (*WatchResult, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	p := &poller.Poller{
		Logs:                   sess.client.FetchLogs,
		Interval:               sess.config.PollInterval(),
		MaxElapsed:             sess.config.PollMaxElapsed(),
		MaxConsecutiveFailures: sess.config.Polling.MaxConsecutiveFailures,
		Markers:                sess.config.Polling.CompletionMarkers,
	}

	watch := &WatchResult{}
	completed := false

	err = p.Run(ctx, opts.WorkflowID,
		func(logs []string) {
			watch.Logs = logs
			if opts.OnUpdate != nil {
				opts.OnUpdate(logs)
			}
		},
		func() {
			completed = true
		},
	)
	if err != nil {
		return nil, err
	}

	if completed {
		state, mirrored, err := loadMirror(opts.WorkflowID)
		if err == nil && mirrored && state.Status == workflow.StatusRunning {
			if next, err := workflow.Apply(state, workflow.RunCompleted{}); err == nil {
				if err := saveMirror(next); err == nil {
					watch.State = next
					watch.Mirrored = true
				}
			}
		}

		fetcher := results.NewFetcher(sess.client)
		watch.Results, watch.ResultsErr = fetcher.List(ctx, opts.WorkflowID)

		entry := journal.ForClient("complete", sess.config)
		entry.WorkflowID = opts.WorkflowID
		entry.Status = string(workflow.StatusCompleted)
		journal.Log(entry)
	}

	return watch, nil
}

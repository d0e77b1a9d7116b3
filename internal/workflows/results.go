package workflows

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/orchestrator"
	"github.com/cleanroom-sh/cleanroom/internal/results"
)

// ResultsOptions configures a results listing.
type ResultsOptions struct {
	WorkflowID string

	// LoadContent fetches and classifies each artifact's content.
	LoadContent bool

	// DownloadDir, when set, writes each artifact's raw content to this
	// directory, named by the artifact's base name.
	DownloadDir string
}

// ResultEntry pairs an artifact with its lazily loaded content.
type ResultEntry struct {
	Result  orchestrator.Result
	Content *results.Content

	// Err is set when this artifact's content could not be loaded. One
	// broken artifact does not fail the listing.
	Err error

	// SavedTo is the local path the artifact was written to, when
	// downloading was requested and succeeded.
	SavedTo string
}

// ResultsResult contains the outcome of a results listing.
type ResultsResult struct {
	Entries []ResultEntry

	// Failed counts entries with a load or download error.
	Failed int
}

// Results lists a workflow's result artifacts and optionally loads or
// downloads their content. Per-artifact failures are isolated: they are
// recorded on the entry and counted, never fatal to sibling artifacts.
func Results(ctx context.Context, opts ResultsOptions) (*ResultsResult, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}
	if opts.WorkflowID == "" {
		return nil, fmt.Errorf("%w: no workflow id given", cerrors.ErrWorkflowNotFound)
	}

	fetcher := results.NewFetcher(sess.client)
	artifacts, err := fetcher.List(ctx, opts.WorkflowID)
	if err != nil {
		return nil, err
	}

	out := &ResultsResult{Entries: make([]ResultEntry, 0, len(artifacts))}
	for _, artifact := range artifacts {
		entry := ResultEntry{Result: artifact}

		if opts.LoadContent || opts.DownloadDir != "" {
			content, err := fetcher.Load(ctx, artifact)
			if err != nil {
				entry.Err = err
				out.Failed++
				out.Entries = append(out.Entries, entry)
				continue
			}
			if opts.LoadContent {
				entry.Content = content
			}

			if opts.DownloadDir != "" {
				saved, err := saveArtifact(opts.DownloadDir, artifact.ResultPath, content.Raw)
				if err != nil {
					entry.Err = err
					out.Failed++
				} else {
					entry.SavedTo = saved
				}
			}
		}

		out.Entries = append(out.Entries, entry)
	}

	return out, nil
}

func saveArtifact(dir, resultPath string, raw []byte) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("%w: %v", cerrors.ErrResultFetch, err)
	}

	name := path.Base(resultPath)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("%w: artifact has no usable name: %q", cerrors.ErrResultFetch, resultPath)
	}

	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, raw, 0600); err != nil {
		return "", fmt.Errorf("%w: writing %s: %v", cerrors.ErrResultFetch, target, err)
	}
	return target, nil
}

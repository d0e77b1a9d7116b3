// Package results lists workflow result artifacts and lazily loads their
// content.
//
// Content is classified into a tagged kind (JSON, tabular, text, unknown)
// using the declared artifact path first and byte sniffing only as a
// fallback. Tabular previews are capped at PreviewRows rows for display;
// the full byte content is always retained in Raw. Failures are isolated
// per artifact so one unreadable result never hides its siblings.
package results

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/orchestrator"
)

// Kind tags the recognized content shape of a result artifact.
type Kind string

const (
	KindJSON    Kind = "json"
	KindTabular Kind = "tabular"
	KindText    Kind = "text"
	KindUnknown Kind = "unknown"
)

// PreviewRows caps how many data rows a tabular preview carries. This is a
// display limit only; Raw always holds the complete artifact.
const PreviewRows = 100

// Content is the loaded, classified content of one result artifact.
// Exactly the fields for its Kind are populated, plus Raw in all cases.
type Content struct {
	Kind Kind

	// Raw is the complete artifact as fetched.
	Raw []byte

	// JSON is the decoded document when Kind is KindJSON.
	JSON interface{}

	// Header and Rows hold the parsed preview when Kind is KindTabular.
	// Rows is capped at PreviewRows; TotalRows counts all data rows.
	Header    []string
	Rows      [][]string
	TotalRows int

	// Text is the artifact as a string when Kind is KindText.
	Text string
}

// Fetcher retrieves workflow results via the orchestrator.
type Fetcher struct {
	client *orchestrator.Client
}

// NewFetcher creates a Fetcher backed by client.
func NewFetcher(client *orchestrator.Client) *Fetcher {
	return &Fetcher{client: client}
}

// List returns the result artifacts recorded for a workflow. Content is
// not fetched; use Load per artifact.
func (f *Fetcher) List(ctx context.Context, workflowID string) ([]orchestrator.Result, error) {
	return f.client.ListResults(ctx, workflowID)
}

// Load fetches and classifies one artifact's content. A missing download
// URL is resolved from the artifact's storage path first. Errors wrap
// ErrResultFetch and carry the artifact path; they are scoped to this
// artifact only.
func (f *Fetcher) Load(ctx context.Context, r orchestrator.Result) (*Content, error) {
	downloadURL := r.DownloadURL
	if downloadURL == "" {
		resolved, err := f.client.DownloadURL(ctx, r.ResultPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", cerrors.ErrResultFetch, r.ResultPath, err)
		}
		downloadURL = resolved
	}

	raw, err := f.client.GetObject(ctx, downloadURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", cerrors.ErrResultFetch, r.ResultPath, err)
	}

	return Classify(r.ResultPath, raw), nil
}

// Classify determines the content kind for raw, preferring the declared
// artifact path extension and falling back to sniffing the bytes.
func Classify(resultPath string, raw []byte) *Content {
	switch strings.ToLower(path.Ext(resultPath)) {
	case ".json", ".ipynb":
		if c := asJSON(raw); c != nil {
			return c
		}
	case ".csv":
		if c := asTabular(raw); c != nil {
			return c
		}
	case ".txt", ".log", ".md":
		return &Content{Kind: KindText, Raw: raw, Text: string(raw)}
	}

	return sniff(raw)
}

// sniff classifies content by inspection when the path extension did not
// settle it.
func sniff(raw []byte) *Content {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		if c := asJSON(raw); c != nil {
			return c
		}
	}

	if c := asTabular(raw); c != nil && len(c.Header) > 1 {
		return c
	}

	if isPrintable(raw) {
		return &Content{Kind: KindText, Raw: raw, Text: string(raw)}
	}

	return &Content{Kind: KindUnknown, Raw: raw}
}

func asJSON(raw []byte) *Content {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return &Content{Kind: KindJSON, Raw: raw, JSON: doc}
}

func asTabular(raw []byte) *Content {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil
	}

	content := &Content{Kind: KindTabular, Raw: raw, Header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil
		}
		// Rows must be rectangular with the header for the preview to mean
		// anything; bail to the next classifier otherwise.
		if len(record) != len(header) {
			return nil
		}
		content.TotalRows++
		if len(content.Rows) < PreviewRows {
			content.Rows = append(content.Rows, record)
		}
	}

	return content
}

func isPrintable(raw []byte) bool {
	for _, b := range raw {
		if b < 0x09 || (b > 0x0d && b < 0x20) {
			return false
		}
	}
	return true
}

package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/hashicorp/go-retryablehttp"
)

// FileType tags which half of a sealed dataset a signed URL is for.
type FileType string

const (
	FileTypeDataset FileType = "dataset"
	FileTypeKey     FileType = "key"
)

// UploadLocation is a signed write location issued by the orchestrator.
type UploadLocation struct {
	UploadURL string `json:"upload_url"`
	GCSPath   string `json:"gcs_path"`
	ID        string `json:"id"`
}

// UploadURLRequest identifies the blob a write location is requested for.
type UploadURLRequest struct {
	WorkflowID string
	DatasetID  string
	Filename   string
	FileType   FileType
	Owner      string
}

// UploadURL requests a signed write location for one half of a sealed
// dataset (the ciphertext or the wrapped key).
func (c *Client) UploadURL(ctx context.Context, req UploadURLRequest) (*UploadLocation, error) {
	q := url.Values{}
	q.Set("workflow_id", req.WorkflowID)
	q.Set("dataset_id", req.DatasetID)
	q.Set("filename", req.Filename)
	q.Set("file_type", string(req.FileType))
	q.Set("owner", req.Owner)

	var loc UploadLocation
	if err := c.doJSON(ctx, http.MethodPost, "/upload-url", q, &loc); err != nil {
		return nil, fmt.Errorf("%w: %s blob: %v", cerrors.ErrUploadURL, req.FileType, err)
	}
	if loc.UploadURL == "" {
		return nil, fmt.Errorf("%w: %s blob: response is missing upload_url", cerrors.ErrUploadURL, req.FileType)
	}
	return &loc, nil
}

// DownloadURL resolves a storage path to a signed read location.
func (c *Client) DownloadURL(ctx context.Context, gcsPath string) (string, error) {
	q := url.Values{}
	q.Set("gcs_path", gcsPath)

	var resp struct {
		DownloadURL string `json:"download_url"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/download-url", q, &resp); err != nil {
		return "", err
	}
	if resp.DownloadURL == "" {
		return "", fmt.Errorf("no download URL issued for %s", gcsPath)
	}
	return resp.DownloadURL, nil
}

// PutObject writes raw bytes to a signed URL. These transfers go straight to
// storage, not through the orchestrator.
func (c *Client) PutObject(ctx context.Context, signedURL string, data []byte) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, signedURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: building request: %v", cerrors.ErrTransfer, err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", cerrors.ErrTransfer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: storage returned status %d: %s",
			cerrors.ErrTransfer, resp.StatusCode, readDetail(resp.Body))
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// GetObject reads raw bytes from a signed URL.
func (c *Client) GetObject(ctx context.Context, signedURL string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", cerrors.ErrTransfer, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrTransfer, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: storage returned status %d", cerrors.ErrTransfer, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

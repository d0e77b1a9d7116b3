// Package uploader transfers sealed datasets to their signed storage
// locations.
//
// Each dataset becomes two blobs: the nonce-prefixed ciphertext and the
// wrapped data encryption key. The two transfers run concurrently and are
// not committed atomically; when one side fails after the other succeeded,
// the upload as a whole is reported failed and the surviving half is left
// orphaned in storage for the orchestrator's cleanup to reap.
package uploader

import (
	"context"
	"fmt"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/orchestrator"
	"github.com/google/uuid"
)

// DatasetUpload records the outcome of uploading one sealed dataset.
type DatasetUpload struct {
	WorkflowID     string `json:"workflow_id"`
	DatasetID      string `json:"dataset_id"`
	Filename       string `json:"filename"`
	Owner          string `json:"owner"`
	CiphertextPath string `json:"ciphertext_gcs"`
	WrappedKeyPath string `json:"wrapped_dek_gcs"`

	// Per-side completion flags. Both must be true for the upload to be
	// considered complete; Upload never returns a record with either false.
	CiphertextUploaded bool `json:"ciphertext_uploaded"`
	WrappedKeyUploaded bool `json:"wrapped_key_uploaded"`
}

// Spec describes one sealed dataset to upload.
type Spec struct {
	WorkflowID string
	Filename   string
	Owner      string

	// Blob is the nonce-prefixed ciphertext.
	Blob []byte

	// WrappedKey is the RSA-wrapped data encryption key.
	WrappedKey []byte
}

// Coordinator acquires signed write locations and transfers sealed dataset
// blobs to them.
type Coordinator struct {
	client *orchestrator.Client
}

// NewCoordinator creates a Coordinator using client for URL acquisition
// and transfers.
func NewCoordinator(client *orchestrator.Client) *Coordinator {
	return &Coordinator{client: client}
}

// Upload transfers spec's ciphertext and wrapped key to freshly acquired
// signed locations, tagged by a dataset id generated once for this call.
//
// The two PUTs run concurrently with no ordering guarantee. The returned
// record is only produced when both sides succeed; otherwise the error
// names which side failed (wrapping ErrTransfer) or reports that the
// locations could not be obtained (wrapping ErrUploadURL).
func (c *Coordinator) Upload(ctx context.Context, spec Spec) (*DatasetUpload, error) {
	datasetID := uuid.New().String()

	cipherLoc, err := c.client.UploadURL(ctx, orchestrator.UploadURLRequest{
		WorkflowID: spec.WorkflowID,
		DatasetID:  datasetID,
		Filename:   spec.Filename,
		FileType:   orchestrator.FileTypeDataset,
		Owner:      spec.Owner,
	})
	if err != nil {
		return nil, err
	}

	keyLoc, err := c.client.UploadURL(ctx, orchestrator.UploadURLRequest{
		WorkflowID: spec.WorkflowID,
		DatasetID:  datasetID,
		Filename:   spec.Filename,
		FileType:   orchestrator.FileTypeKey,
		Owner:      spec.Owner,
	})
	if err != nil {
		return nil, err
	}

	cipherErr := make(chan error, 1)
	keyErr := make(chan error, 1)

	go func() {
		cipherErr <- c.client.PutObject(ctx, cipherLoc.UploadURL, spec.Blob)
	}()
	go func() {
		keyErr <- c.client.PutObject(ctx, keyLoc.UploadURL, spec.WrappedKey)
	}()

	errCipher := <-cipherErr
	errKey := <-keyErr

	if errCipher != nil && errKey != nil {
		return nil, fmt.Errorf("%w: ciphertext and wrapped key for dataset %s: %v; %v",
			cerrors.ErrTransfer, datasetID, errCipher, errKey)
	}
	if errCipher != nil {
		return nil, fmt.Errorf("ciphertext for dataset %s: %w", datasetID, errCipher)
	}
	if errKey != nil {
		return nil, fmt.Errorf("wrapped key for dataset %s: %w", datasetID, errKey)
	}

	return &DatasetUpload{
		WorkflowID:         spec.WorkflowID,
		DatasetID:          datasetID,
		Filename:           spec.Filename,
		Owner:              spec.Owner,
		CiphertextPath:     cipherLoc.GCSPath,
		WrappedKeyPath:     keyLoc.GCSPath,
		CiphertextUploaded: true,
		WrappedKeyUploaded: true,
	}, nil
}

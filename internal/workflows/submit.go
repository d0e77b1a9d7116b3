package workflows

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleanroom-sh/cleanroom/internal/envelope"
	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
	"github.com/cleanroom-sh/cleanroom/internal/journal"
	"github.com/cleanroom-sh/cleanroom/internal/uploader"
)

// SubmitOptions configures a dataset submission.
type SubmitOptions struct {
	// WorkflowID is the workflow the dataset belongs to. Required.
	WorkflowID string

	// Path is the local dataset file to submit. Required unless Data is set.
	Path string

	// Data supplies the dataset bytes directly, with Filename naming them.
	// Used when the dataset does not live on disk.
	Data     []byte
	Filename string

	// Owner is the submitting party. Defaults to the configured client id.
	Owner string
}

// SubmitResult contains the outcome of a dataset submission.
type SubmitResult struct {
	// Upload records where both halves of the sealed dataset landed.
	Upload *uploader.DatasetUpload

	// AttestationToken is the token that accompanied the executor key used
	// for sealing, for out-of-band verification.
	AttestationToken string

	// PlaintextBytes is the size of the dataset before sealing.
	PlaintextBytes int64

	// CSVWarning is set when the file does not look like a CSV dataset.
	// The executor currently only consumes CSV inputs.
	CSVWarning bool
}

// Submit seals a dataset against the executor's attested public key and
// uploads the ciphertext and wrapped key.
//
// The plaintext never leaves the process: only the nonce-prefixed
// ciphertext and the RSA-wrapped data encryption key are transferred. A
// fresh key and nonce are used for this call alone.
//
// Returns ErrNotConfigured when no client identity is configured,
// ErrAttestation/ErrInvalidPublicKey for unusable executor key material,
// ErrDatasetTooLarge past the configured size bound, ErrEncryptFailed on
// cipher failure, and ErrUploadURL/ErrTransfer for upload failures with
// the failing side named.
func Submit(ctx context.Context, opts SubmitOptions) (*SubmitResult, error) {
	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	if opts.WorkflowID == "" {
		return nil, fmt.Errorf("%w: dataset submission requires a workflow id", cerrors.ErrWorkflowNotFound)
	}

	owner := opts.Owner
	if owner == "" {
		owner = sess.config.Client.ID
	}

	plaintext, filename, err := readDataset(opts, sess.config.MaxDatasetBytes())
	if err != nil {
		return nil, err
	}

	att, err := sess.client.FetchExecutorKey(ctx)
	if err != nil {
		return nil, err
	}

	pub, err := envelope.ParsePublicKeyPEM(att.PublicKeyPEM)
	if err != nil {
		return nil, err
	}

	sealer := envelope.NewSealer(sess.config.MaxDatasetBytes())
	sealed, err := sealer.Seal(plaintext, pub)
	if err != nil {
		return nil, err
	}

	coordinator := uploader.NewCoordinator(sess.client)
	upload, err := coordinator.Upload(ctx, uploader.Spec{
		WorkflowID: opts.WorkflowID,
		Filename:   filename,
		Owner:      owner,
		Blob:       sealed.Blob,
		WrappedKey: sealed.WrappedKey,
	})
	if err != nil {
		return nil, err
	}

	entry := journal.ForClient("submit", sess.config)
	entry.WorkflowID = opts.WorkflowID
	entry.DatasetID = upload.DatasetID
	entry.Filename = filename
	entry.CiphertextPath = upload.CiphertextPath
	entry.WrappedKeyPath = upload.WrappedKeyPath
	journal.Log(entry)

	return &SubmitResult{
		Upload:           upload,
		AttestationToken: att.AttestationToken,
		PlaintextBytes:   int64(len(plaintext)),
		CSVWarning:       !strings.EqualFold(filepath.Ext(filename), ".csv"),
	}, nil
}

// readDataset resolves the plaintext and filename from opts, enforcing the
// size bound before the file is read into memory.
func readDataset(opts SubmitOptions, maxBytes int64) ([]byte, string, error) {
	if opts.Data != nil {
		if opts.Filename == "" {
			return nil, "", fmt.Errorf("in-memory dataset needs a filename")
		}
		if maxBytes > 0 && int64(len(opts.Data)) > maxBytes {
			return nil, "", fmt.Errorf("%w: %s is %d bytes, limit is %d",
				cerrors.ErrDatasetTooLarge, opts.Filename, len(opts.Data), maxBytes)
		}
		return opts.Data, opts.Filename, nil
	}

	if opts.Path == "" {
		return nil, "", fmt.Errorf("no dataset file given")
	}

	info, err := os.Stat(opts.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to stat dataset file: %w", err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, "", fmt.Errorf("%w: %s is %d bytes, limit is %d",
			cerrors.ErrDatasetTooLarge, opts.Path, info.Size(), maxBytes)
	}

	plaintext, err := os.ReadFile(opts.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read dataset file: %w", err)
	}

	return plaintext, filepath.Base(opts.Path), nil
}

// Package errors provides typed error values for the cleanroom client.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Attestation errors: executor key material problems (ErrAttestation)
//   - Encryption errors: sealing failures (ErrEncryptFailed, ErrKeyWrapFailed)
//   - Upload errors: transfer failures (ErrUploadURL, ErrTransfer)
//   - Workflow errors: lifecycle violations (ErrApprovalNotComplete)
//   - Polling errors: bounded-poll exhaustion (ErrPollTimeout)
//
// # Usage
//
// Return errors from internal packages:
//
//	if len(approvals) < len(collaborators) {
//	    return errors.ErrApprovalNotComplete
//	}
//
// Handle errors in the CLI layer:
//
//	err := workflows.Run(ctx, opts)
//	if errors.Is(err, cerrors.ErrApprovalNotComplete) {
//	    // Show which collaborators have not approved yet
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("%w: %v", cerrors.ErrTransfer, err)
package errors

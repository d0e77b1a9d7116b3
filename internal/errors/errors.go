package errors

import "errors"

// Attestation errors indicate the executor's key material could not be
// obtained or is unusable.
var (
	// ErrAttestation indicates the executor attestation could not be fetched
	// or the response was malformed.
	ErrAttestation = errors.New("failed to fetch executor attestation")

	// ErrInvalidPublicKey indicates the executor public key is not a valid
	// PEM-encoded RSA public key.
	ErrInvalidPublicKey = errors.New("invalid executor public key")
)

// Encryption errors indicate failures while sealing a dataset.
var (
	// ErrEncryptFailed indicates dataset encryption failed.
	ErrEncryptFailed = errors.New("failed to encrypt dataset")

	// ErrKeyWrapFailed indicates the data encryption key could not be wrapped
	// with the executor public key.
	ErrKeyWrapFailed = errors.New("failed to wrap data encryption key")

	// ErrDatasetTooLarge indicates the dataset exceeds the configured size bound.
	ErrDatasetTooLarge = errors.New("dataset exceeds maximum size")
)

// Upload errors indicate failures while transferring a sealed dataset.
var (
	// ErrUploadURL indicates signed upload locations could not be obtained.
	ErrUploadURL = errors.New("failed to obtain upload location")

	// ErrTransfer indicates a blob transfer to a signed URL failed.
	ErrTransfer = errors.New("blob transfer failed")
)

// Workflow errors indicate issues with workflow lifecycle operations.
var (
	// ErrApprovalNotComplete indicates a run was requested before every
	// collaborator approved the workflow.
	ErrApprovalNotComplete = errors.New("workflow is not approved by all collaborators")

	// ErrWorkflowNotFound indicates the workflow does not exist.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrWorkflowRejected indicates an operation was attempted on a rejected
	// workflow. Rejection is terminal.
	ErrWorkflowRejected = errors.New("workflow has been rejected")

	// ErrInvalidTransition indicates the requested status change is not
	// permitted from the workflow's current status.
	ErrInvalidTransition = errors.New("invalid workflow status transition")

	// ErrUnknownCollaborator indicates a client that is not part of the
	// workflow attempted an approval action.
	ErrUnknownCollaborator = errors.New("client is not a collaborator on this workflow")
)

// Polling and result errors.
var (
	// ErrNetwork indicates the orchestrator could not be reached.
	ErrNetwork = errors.New("orchestrator is unreachable")

	// ErrPollTimeout indicates log polling exceeded its elapsed-time bound
	// without observing a completion marker.
	ErrPollTimeout = errors.New("timed out waiting for workflow completion")

	// ErrResultFetch indicates a result artifact could not be retrieved.
	ErrResultFetch = errors.New("failed to fetch workflow result")
)

// Configuration errors.
var (
	// ErrNotConfigured indicates the client has not been initialized with an
	// orchestrator URL and client identity.
	ErrNotConfigured = errors.New("cleanroom has not been configured")
)

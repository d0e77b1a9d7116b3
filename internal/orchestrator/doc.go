// Package orchestrator is the HTTP client for the external orchestrator
// service, which proxies executor attestation, brokers signed storage URLs,
// and owns the authoritative workflow records.
//
// The client maps the orchestrator's refusals onto the sentinel errors in
// internal/errors so callers can discriminate with errors.Is:
//
//   - unreachable orchestrator: ErrNetwork
//   - 403 on run: ErrApprovalNotComplete
//   - 404 on workflow endpoints: ErrWorkflowNotFound
//   - malformed attestation: ErrAttestation
//
// Signed-URL transfers (PutObject, GetObject) go directly to storage and
// only ever carry ciphertext and wrapped keys; plaintext never leaves the
// caller.
package orchestrator

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
)

// Attestation binds the executor's public key to a verified execution
// environment. The token is issued by the executor's platform and should be
// verified out of band before trusting the key.
type Attestation struct {
	PublicKeyPEM     string `json:"public_key_pem"`
	AttestationToken string `json:"attestation_token"`
}

// FetchExecutorKey fetches the executor's current public key and attestation
// token via the orchestrator. No retries beyond the transport's bounded
// policy; callers decide whether to try again.
func (c *Client) FetchExecutorKey(ctx context.Context) (*Attestation, error) {
	var att Attestation
	if err := c.doJSON(ctx, http.MethodGet, "/executor-pubkey", nil, &att); err != nil {
		if errors.Is(err, cerrors.ErrNetwork) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", cerrors.ErrAttestation, err)
	}

	if att.PublicKeyPEM == "" {
		return nil, fmt.Errorf("%w: response is missing public_key_pem", cerrors.ErrAttestation)
	}

	return &att, nil
}

package workflows

import (
	"context"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"

	"github.com/cleanroom-sh/cleanroom/internal/envelope"
)

// AttestResult contains the executor's current key material.
type AttestResult struct {
	// PublicKeyPEM is the executor's PEM-encoded RSA public key.
	PublicKeyPEM string

	// AttestationToken binds the key to the executor's verified
	// environment. Verification of the token is out of band.
	AttestationToken string

	// Fingerprint is the hex SHA-256 of the key's DER encoding, for
	// comparing against a fingerprint published by the executor operator.
	Fingerprint string

	// KeyBits is the RSA modulus size.
	KeyBits int
}

// Attest fetches the executor's public key and attestation token and
// verifies the key parses as RSA. It performs no sealing.
func Attest(ctx context.Context) (*AttestResult, error) {
	sess, err := newSession()
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

	result := &AttestResult{
		PublicKeyPEM:     att.PublicKeyPEM,
		AttestationToken: att.AttestationToken,
		KeyBits:          pub.N.BitLen(),
	}

	if der, err := x509.MarshalPKIXPublicKey(pub); err == nil {
		sum := sha256.Sum256(der)
		result.Fingerprint = hex.EncodeToString(sum[:])
	}

	return result, nil
}

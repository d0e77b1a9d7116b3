package envelope

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
)

// ParsePublicKeyPEM parses a PEM-encoded RSA public key as published by the
// executor's attestation endpoint. Both PKIX ("PUBLIC KEY") and PKCS#1
// ("RSA PUBLIC KEY") blocks are accepted.
func ParsePublicKeyPEM(pemData string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", cerrors.ErrInvalidPublicKey)
	}

	switch block.Type {
	case "PUBLIC KEY":
		pub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cerrors.ErrInvalidPublicKey, err)
		}
		rsaPub, ok := pub.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: not an RSA public key", cerrors.ErrInvalidPublicKey)
		}
		return rsaPub, nil
	case "RSA PUBLIC KEY":
		rsaPub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cerrors.ErrInvalidPublicKey, err)
		}
		return rsaPub, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block type %q", cerrors.ErrInvalidPublicKey, block.Type)
	}
}

package envelope

import (
	"crypto/rsa"
	"fmt"

	cerrors "github.com/cleanroom-sh/cleanroom/internal/errors"
)

// Envelope is the sealed form of one dataset: the nonce-prefixed ciphertext
// blob and the wrapped data encryption key. The executor splits the first
// 12 bytes of Blob back off as the nonce.
type Envelope struct {
	// Nonce is the 96-bit AES-GCM nonce, also present as the Blob prefix.
	Nonce []byte

	// Blob is nonce || ciphertext, with the authentication tag appended to
	// the ciphertext. This is what gets uploaded as the dataset blob.
	Blob []byte

	// WrappedKey is the data encryption key, RSA-OAEP encrypted to the
	// executor. It is uploaded as a separate blob.
	WrappedKey []byte
}

// Sealer performs envelope encryption of datasets against an executor
// public key. The zero value is not usable; construct with NewSealer.
type Sealer struct {
	provider Provider

	// maxPlaintext bounds the size of a single dataset. Zero means no bound.
	maxPlaintext int64
}

// NewSealer creates a Sealer using the default crypto provider.
// maxPlaintext bounds accepted dataset sizes in bytes; zero disables
// the bound.
func NewSealer(maxPlaintext int64) *Sealer {
	return &Sealer{provider: DefaultProvider{}, maxPlaintext: maxPlaintext}
}

// NewSealerWithProvider creates a Sealer with a custom crypto provider.
func NewSealerWithProvider(provider Provider, maxPlaintext int64) *Sealer {
	return &Sealer{provider: provider, maxPlaintext: maxPlaintext}
}

// Seal envelope-encrypts plaintext for the holder of pub.
//
// A fresh data encryption key and nonce are generated per call. The key is
// used for exactly one encryption and released with the call frame; it
// leaves this function only inside the wrapped blob, so nonce reuse under a
// repeated key cannot occur. Empty plaintext is valid input and seals to an
// authentication tag over zero bytes.
//
// Returns ErrDatasetTooLarge when plaintext exceeds the configured bound,
// and ErrEncryptFailed or ErrKeyWrapFailed on cipher failures.
func (s *Sealer) Seal(plaintext []byte, pub *rsa.PublicKey) (*Envelope, error) {
	if s.maxPlaintext > 0 && int64(len(plaintext)) > s.maxPlaintext {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d",
			cerrors.ErrDatasetTooLarge, len(plaintext), s.maxPlaintext)
	}

	key, err := s.provider.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrEncryptFailed, err)
	}

	nonce, err := s.provider.GenerateNonce()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrEncryptFailed, err)
	}

	ciphertext, err := s.provider.Seal(key, nonce, plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrEncryptFailed, err)
	}

	wrapped, err := s.provider.Wrap(key, pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cerrors.ErrKeyWrapFailed, err)
	}

	blob := make([]byte, 0, len(nonce)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	return &Envelope{
		Nonce:      nonce,
		Blob:       blob,
		WrappedKey: wrapped,
	}, nil
}

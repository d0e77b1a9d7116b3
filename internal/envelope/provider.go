package envelope

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"
)

// KeySize is the data encryption key size in bytes (AES-256).
const KeySize = 32

// NonceSize is the AES-GCM nonce size in bytes.
const NonceSize = 12

// Provider supplies the cryptographic primitives the sealing pipeline
// needs. Abstracting them keeps the pipeline logic independent of the
// runtime's crypto stack and lets tests substitute deterministic inputs.
type Provider interface {
	// GenerateKey returns a fresh 256-bit symmetric key from a
	// cryptographically secure source.
	GenerateKey() ([]byte, error)

	// GenerateNonce returns a fresh 96-bit nonce from a cryptographically
	// secure source.
	GenerateNonce() ([]byte, error)

	// Seal encrypts plaintext under key and nonce with an authenticated
	// cipher, returning ciphertext with the authentication tag appended.
	Seal(key, nonce, plaintext []byte) ([]byte, error)

	// Wrap encrypts the raw key bytes with the recipient's RSA public key
	// using OAEP with SHA-256 for both the hash and the mask generation
	// function.
	Wrap(key []byte, pub *rsa.PublicKey) ([]byte, error)
}

// DefaultProvider implements Provider with AES-256-GCM and RSA-OAEP from
// the standard library.
type DefaultProvider struct{}

func (DefaultProvider) GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generating symmetric key: %w", err)
	}
	return key, nil
}

func (DefaultProvider) GenerateNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	return nonce, nil
}

func (DefaultProvider) Seal(key, nonce, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(nonce) != gcm.NonceSize() {
		return nil, fmt.Errorf("nonce must be %d bytes, got %d", gcm.NonceSize(), len(nonce))
	}

	return gcm.Seal(nil, nonce, plaintext, nil), nil
}

func (DefaultProvider) Wrap(key []byte, pub *rsa.PublicKey) ([]byte, error) {
	return rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, key, nil)
}

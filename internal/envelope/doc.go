// Package envelope implements hybrid (envelope) encryption of datasets
// against an attested executor public key.
//
// Each dataset is encrypted with a fresh one-time AES-256-GCM data
// encryption key and a fresh 96-bit nonce; the key is then wrapped with
// the executor's RSA public key using OAEP-SHA256. The uploaded artifacts
// are the nonce-prefixed ciphertext blob and the wrapped key — plaintext
// and raw key material never leave the process.
//
// The Provider interface abstracts the underlying primitives so the
// sealing pipeline stays portable and testable.
package envelope

// Package keys wraps the Ed25519 primitives Aletheia signs and verifies
// with. It is a thin shim, not a reimplementation: generation, signing,
// and verification all delegate straight to golang.org/x/crypto/ed25519.
package keys

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/ed25519"
)

const (
	// PublicKeySize is the size in bytes of an Ed25519 public key.
	PublicKeySize = ed25519.PublicKeySize
	// PrivateKeySize is the size in bytes of an Ed25519 expanded private key.
	PrivateKeySize = ed25519.PrivateKeySize
	// SeedSize is the size in bytes of an Ed25519 private key seed.
	SeedSize = ed25519.SeedSize
	// SignatureSize is the size in bytes of an Ed25519 signature.
	SignatureSize = ed25519.SignatureSize
)

// PublicKey is a 32-byte Ed25519 public key.
type PublicKey = ed25519.PublicKey

// PrivateKey is a 64-byte Ed25519 expanded private key (seed || public key).
type PrivateKey = ed25519.PrivateKey

// Generate creates a fresh keypair from the system CSPRNG. The private key
// never needs to leave the caller's process.
func Generate() (PublicKey, PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("keys: generate: %w", err)
	}
	return pub, priv, nil
}

// Sign computes a deterministic Ed25519 signature over message.
func Sign(priv PrivateKey, message []byte) []byte {
	return ed25519.Sign(priv, message)
}

// Verify reports whether sig is a valid Ed25519 signature by pub over
// message. A malformed key or signature yields false, never a panic.
func Verify(pub PublicKey, message, sig []byte) (ok bool) {
	if len(pub) != PublicKeySize || len(sig) != SignatureSize {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return ed25519.Verify(pub, message, sig)
}

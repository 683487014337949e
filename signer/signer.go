// Package signer builds complete Aletheia envelopes for a payload,
// header, and certificate chain.
package signer

import (
	"fmt"

	"github.com/aurel3d/aletheia/cert"
	"github.com/aurel3d/aletheia/compress"
	"github.com/aurel3d/aletheia/envelope"
	"github.com/aurel3d/aletheia/header"
	"github.com/aurel3d/aletheia/keys"
)

// ErrInvalidChain is returned by New when the chain does not satisfy
// spec.md §3's chain invariants, or does not belong to the supplied
// signing key.
type ErrInvalidChain struct{ Reason error }

func (e *ErrInvalidChain) Error() string {
	return fmt.Sprintf("signer: invalid chain: %v", e.Reason)
}

func (e *ErrInvalidChain) Unwrap() error { return e.Reason }

// ErrCreatorIDMismatch is returned by Sign when the header's creator_id
// does not match chain[0]'s subject_id.
var ErrCreatorIDMismatch = fmt.Errorf("signer: header creator_id does not match chain[0].subject_id")

// Signer produces envelope bytes for one certificate chain and signing
// key. It performs every consistency check before writing any bytes, so
// a failed Sign call never produces a partial output.
type Signer struct {
	priv  keys.PrivateKey
	chain cert.Chain
}

// New validates that chain[0]'s public key matches signingKey's public
// half and that the chain satisfies every chain invariant (ordering,
// CA flags, issuer links, per-link signatures, self-signed root), and
// returns a Signer ready to sign payloads.
func New(signingKey keys.PrivateKey, chain cert.Chain) (*Signer, error) {
	if err := chain.Validate(); err != nil {
		return nil, &ErrInvalidChain{Reason: err}
	}
	pub, ok := signingKey.Public().(keys.PublicKey)
	if !ok {
		return nil, &ErrInvalidChain{Reason: fmt.Errorf("signer: signing key has no usable public half")}
	}
	creator := chain.Creator()
	if string(pub) != string(creator.PublicKey) {
		return nil, &ErrInvalidChain{Reason: fmt.Errorf("signer: signing key does not match chain[0].public_key")}
	}
	return &Signer{priv: signingKey, chain: chain}, nil
}

// Sign assembles the canonical signature input — magic, version, flags,
// header, payload, and chain, in that exact order — and signs it. When
// useCompression is true the payload is replaced by its compressed form and
// flag bit 0 is set; either way, the signature covers the stored bytes,
// never the pre-compression plaintext.
func (s *Signer) Sign(payload []byte, h *header.Header, useCompression bool) ([]byte, error) {
	if h.CreatorID != s.chain.Creator().SubjectID {
		return nil, ErrCreatorIDMismatch
	}

	stored := payload
	var flags uint16
	if useCompression {
		c, err := compress.Default.Compress(payload)
		if err != nil {
			return nil, fmt.Errorf("signer: compress payload: %w", err)
		}
		stored = c
		flags |= envelope.FlagCompressed
	}

	headerBytes, err := h.Encode()
	if err != nil {
		return nil, fmt.Errorf("signer: encode header: %w", err)
	}
	chainBytes := cert.EncodeChain(s.chain)

	sigInput := envelope.BuildSignatureInput(0, flags, headerBytes, stored, chainBytes)
	sig := keys.Sign(s.priv, sigInput)

	out, err := envelope.Build(sigInput, sig)
	if err != nil {
		return nil, fmt.Errorf("signer: build envelope: %w", err)
	}
	return out, nil
}

// Package verifier implements the Aletheia verification algorithm: parse,
// validate chain, check trust anchor, verify the file signature. It is a
// pure function of its inputs — no clock, no network, no side effects —
// and stops at the first failure so error messages stay deterministic.
package verifier

import (
	"fmt"

	"github.com/aurel3d/aletheia/cert"
	"github.com/aurel3d/aletheia/envelope"
	"github.com/aurel3d/aletheia/keys"
)

// TrustAnchors is a set of 32-byte root public keys the verifier accepts.
// Trust is rooted in keys, not certificates — the root certificate in a
// chain only needs to pass its own self-signature check.
type TrustAnchors map[[keys.PublicKeySize]byte]struct{}

// NewTrustAnchors builds a TrustAnchors set from raw public keys.
func NewTrustAnchors(roots ...keys.PublicKey) TrustAnchors {
	t := make(TrustAnchors, len(roots))
	for _, r := range roots {
		var k [keys.PublicKeySize]byte
		copy(k[:], r)
		t[k] = struct{}{}
	}
	return t
}

// Contains reports whether pub is a trusted root.
func (t TrustAnchors) Contains(pub keys.PublicKey) bool {
	if len(pub) != keys.PublicKeySize {
		return false
	}
	var k [keys.PublicKeySize]byte
	copy(k[:], pub)
	_, ok := t[k]
	return ok
}

// RevokedSerials is an optional, caller-supplied set of revoked
// certificate serials (lowercase hex). The verifier consults it only if
// non-nil; it is not part of the core wire format, only a pure input.
type RevokedSerials map[string]struct{}

// Revoked reports whether serial (raw bytes) is in the set.
func (r RevokedSerials) Revoked(serial []byte) bool {
	if len(r) == 0 {
		return false
	}
	_, ok := r[fmt.Sprintf("%x", serial)]
	return ok
}

// Result is the successful verdict: the envelope's signature and chain
// check out against a trusted root.
type Result struct {
	CreatorID   string
	CreatorName string
	SignedAt    int64
	ContentType string
}

// ErrCreatorIDMismatch is returned when the header's creator_id does not
// match chain[0]'s subject_id.
var ErrCreatorIDMismatch = fmt.Errorf("verifier: header creator_id does not match chain[0].subject_id")

// ErrRootNotTrusted is returned when the chain's root public key is not
// a member of the supplied trust anchors.
var ErrRootNotTrusted = fmt.Errorf("verifier: root certificate public key is not a trusted anchor")

// ErrFileSignatureInvalid is returned when the trailing 64-byte envelope
// signature does not verify under chain[0]'s public key.
var ErrFileSignatureInvalid = fmt.Errorf("verifier: envelope signature invalid")

// ErrParseFailed wraps a structural envelope.Parse failure.
type ErrParseFailed struct{ Inner error }

func (e *ErrParseFailed) Error() string { return fmt.Sprintf("verifier: parse failed: %v", e.Inner) }
func (e *ErrParseFailed) Unwrap() error  { return e.Inner }

// ErrCertRevoked is returned when a chain certificate's serial is a
// member of the optional revoked-serials input.
type ErrCertRevoked struct{ Index int }

func (e *ErrCertRevoked) Error() string {
	return fmt.Sprintf("verifier: certificate at index %d is revoked", e.Index)
}

// Verify runs the full algorithm of spec.md §4.5 against b, stopping at
// the first failure. revoked may be nil to skip the optional revocation
// check entirely.
func Verify(b []byte, trusted TrustAnchors, revoked RevokedSerials) (*Result, error) {
	parsed, err := envelope.Parse(b)
	if err != nil {
		return nil, &ErrParseFailed{Inner: err}
	}

	if err := parsed.Chain.ValidateCAFlags(); err != nil {
		return nil, translateChainError(err)
	}

	creator := parsed.Chain.Creator()
	if parsed.Header.CreatorID != creator.SubjectID {
		return nil, ErrCreatorIDMismatch
	}

	if err := parsed.Chain.ValidateSignatures(); err != nil {
		return nil, translateChainError(err)
	}

	if revoked != nil {
		for i, c := range parsed.Chain {
			if revoked.Revoked(c.Serial) {
				return nil, &ErrCertRevoked{Index: i}
			}
		}
	}

	root := parsed.Chain.Root()
	if !trusted.Contains(root.PublicKey) {
		return nil, ErrRootNotTrusted
	}

	sigInput := b[:len(b)-len(parsed.Signature)]
	if !keys.Verify(creator.PublicKey, sigInput, parsed.Signature) {
		return nil, ErrFileSignatureInvalid
	}

	return &Result{
		CreatorID:   creator.SubjectID,
		CreatorName: creator.SubjectName,
		SignedAt:    parsed.Header.SignedAt,
		ContentType: parsed.Header.ContentType,
	}, nil
}

// translateChainError passes cert package chain errors through
// unchanged — they already carry the exact variant and index spec.md
// §4.5 names (CreatorIsCa, IntermediateNotCa, IssuerChainBroken,
// CertSignatureInvalid, RootNotSelfSigned).
func translateChainError(err error) error {
	return err
}

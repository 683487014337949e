package cert

import (
	"fmt"

	"github.com/aurel3d/aletheia/canon"
	"github.com/aurel3d/aletheia/keys"
)

// Chain is the ordered certificate sequence from creator (index 0) to the
// self-signed root (last index).
type Chain []*Certificate

// EncodeChain writes the canonical array form used inside an envelope:
// a count followed by each certificate's record, individually
// length-prefixed so a reader can split the blob without re-parsing.
func EncodeChain(chain Chain) []byte {
	w := canon.NewWriter()
	w.Uint(uint64(len(chain)))
	for _, c := range chain {
		w.Bytes(c.Encode(true))
	}
	return w.Bytes()
}

// DecodeChain parses the canonical chain array produced by EncodeChain.
func DecodeChain(b []byte) (Chain, error) {
	r := canon.NewReader(b)
	count, err := r.Uint()
	if err != nil {
		return nil, fmt.Errorf("cert: chain count: %w", err)
	}
	chain := make(Chain, 0, count)
	for i := uint64(0); i < count; i++ {
		rec, err := r.Bytes()
		if err != nil {
			return nil, fmt.Errorf("cert: chain entry %d: %w", i, err)
		}
		c, err := DecodeCertificate(rec)
		if err != nil {
			return nil, fmt.Errorf("cert: chain entry %d: %w", i, err)
		}
		chain = append(chain, c)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("cert: %d trailing bytes after chain", r.Len())
	}
	return chain, nil
}

// Validate checks every structural and cryptographic invariant spec.md
// §3/§4.5 place on a chain: non-empty, creator not a CA, every
// intermediate a CA, issuer links intact, per-link signatures verify,
// and the root is self-signed. It does not check trust-anchor membership
// or the header/creator-id match — those are caller concerns (the
// verifier checks trust anchors; the signer has no header yet).
//
// Validate runs ValidateCAFlags then ValidateSignatures, in that order.
// A caller that needs to interleave its own check between the two
// (the verifier checks header.creator_id against chain[0] in between,
// per spec.md §4.5's stop-at-first-failure ordering) should call them
// separately instead of calling Validate.
func (chain Chain) Validate() error {
	if err := chain.ValidateCAFlags(); err != nil {
		return err
	}
	return chain.ValidateSignatures()
}

// ValidateCAFlags checks the chain is non-empty, the creator (index 0)
// is not a CA, and every certificate at index >= 1 is a CA. It performs
// no cryptographic verification.
func (chain Chain) ValidateCAFlags() error {
	if len(chain) == 0 {
		return ErrEmptyChain
	}
	if chain[0].IsCA {
		return ErrCreatorIsCA
	}
	for i := 1; i < len(chain); i++ {
		if !chain[i].IsCA {
			return &ErrIntermediateNotCA{Index: i}
		}
	}
	return nil
}

// ValidateSignatures checks that issuer links are intact, every
// certificate's signature verifies under the next certificate's public
// key, and the root is self-signed with a self-verifying signature. It
// assumes the chain is non-empty; callers should run ValidateCAFlags
// (or otherwise establish non-emptiness) first.
func (chain Chain) ValidateSignatures() error {
	for i := 0; i < len(chain)-1; i++ {
		if chain[i].IssuerID != chain[i+1].SubjectID {
			return &ErrIssuerChainBroken{Index: i}
		}
		msg := chain[i].Encode(false)
		if !keys.Verify(chain[i+1].PublicKey, msg, chain[i].Signature) {
			return &ErrCertSignatureInvalid{Index: i}
		}
	}
	root := chain[len(chain)-1]
	if !root.SelfSigned() {
		return ErrRootNotSelfSigned
	}
	msg := root.Encode(false)
	if !keys.Verify(root.PublicKey, msg, root.Signature) {
		return &ErrCertSignatureInvalid{Index: len(chain) - 1}
	}
	return nil
}

// Root returns the chain's self-signed root certificate.
func (chain Chain) Root() *Certificate {
	if len(chain) == 0 {
		return nil
	}
	return chain[len(chain)-1]
}

// Creator returns the chain's leaf (creator) certificate.
func (chain Chain) Creator() *Certificate {
	if len(chain) == 0 {
		return nil
	}
	return chain[0]
}

package cert

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aurel3d/aletheia/keys"
)

// Authority holds a signing keypair and the certificate that authorizes
// it to issue further certificates.
type Authority struct {
	cert *Certificate
	priv keys.PrivateKey
}

// NewRootAuthority generates a fresh Ed25519 keypair and a self-signed,
// CA-enabled root certificate for subjectID/subjectName. This is the only
// path that produces a certificate with issuer_id == subject_id.
func NewRootAuthority(subjectID, subjectName string) (*Authority, *Certificate, error) {
	pub, priv, err := keys.Generate()
	if err != nil {
		return nil, nil, fmt.Errorf("cert: generate root keypair: %w", err)
	}

	root := &Certificate{
		Version:     RecordVersion,
		Serial:      newSerial(),
		SubjectID:   subjectID,
		SubjectName: subjectName,
		PublicKey:   pub,
		IssuerID:    subjectID,
		IssuedAt:    time.Now().Unix(),
		IsCA:        true,
	}
	root.Signature = keys.Sign(priv, root.Encode(false))

	return &Authority{cert: root, priv: priv}, root, nil
}

// LoadAuthority rehydrates an Authority from a previously issued private
// key and the certificate it corresponds to, such as after a process
// restart. It fails if the key's public half does not match the
// certificate's.
func LoadAuthority(priv keys.PrivateKey, c *Certificate) (*Authority, error) {
	pub, ok := priv.Public().(keys.PublicKey)
	if !ok || string(pub) != string(c.PublicKey) {
		return nil, fmt.Errorf("cert: private key does not match certificate public_key")
	}
	return &Authority{cert: c, priv: priv}, nil
}

// Certificate returns the authority's own certificate.
func (a *Authority) Certificate() *Certificate { return a.cert }

// PrivateKey returns a copy of the authority's signing key, for callers
// that need to persist it (a key store, a Signer construction).
func (a *Authority) PrivateKey() keys.PrivateKey {
	return append(keys.PrivateKey(nil), a.priv...)
}

// Issue produces a new certificate naming subjectID/subjectName/
// subjectPublicKey, signed by the authority's key, with issuer_id set to
// the authority's own subject_id. It fails with ErrNotACA if the
// authority's certificate does not carry is_ca.
func (a *Authority) Issue(subjectID, subjectName string, subjectPublicKey keys.PublicKey, isCA bool) (*Certificate, error) {
	if !a.cert.IsCA {
		return nil, ErrNotACA
	}

	c := &Certificate{
		Version:     RecordVersion,
		Serial:      newSerial(),
		SubjectID:   subjectID,
		SubjectName: subjectName,
		PublicKey:   append(keys.PublicKey(nil), subjectPublicKey...),
		IssuerID:    a.cert.SubjectID,
		IssuedAt:    time.Now().Unix(),
		IsCA:        isCA,
	}
	c.Signature = keys.Sign(a.priv, c.Encode(false))
	return c, nil
}

// newSerial returns a fresh 16-byte opaque identifier: a random (version 4)
// UUID, so 122 of its 128 bits are random and the version and variant bits
// are fixed. The authority keeps no counter of its own.
func newSerial() []byte {
	id := uuid.New()
	return id[:]
}

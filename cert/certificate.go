// Package cert implements the Aletheia certificate record, chain
// validation, and the certificate authority that issues records.
package cert

import (
	"fmt"

	"github.com/aurel3d/aletheia/canon"
	"github.com/aurel3d/aletheia/keys"
)

// RecordVersion is the only certificate record format version this module
// writes and reads.
const RecordVersion = 1

// Field tags for the canonical certificate record, in the fixed order the
// encoder always emits them.
const (
	tagVersion     byte = 1
	tagSerial      byte = 2
	tagSubjectID   byte = 3
	tagSubjectName byte = 4
	tagPublicKey   byte = 5
	tagIssuerID    byte = 6
	tagIssuedAt    byte = 7
	tagIsCA        byte = 8
	tagSignature   byte = 9
)

// Certificate is one link in a trust chain: either the creator's
// end-entity certificate, an intermediate CA, or the self-signed root.
type Certificate struct {
	Version     uint64
	Serial      []byte
	SubjectID   string
	SubjectName string
	PublicKey   keys.PublicKey
	IssuerID    string
	IssuedAt    int64
	IsCA        bool
	Signature   []byte // 64 bytes once signed; empty before signing
}

// Encode returns the canonical encoding of the certificate record. When
// includeSignature is false the signature field is omitted entirely —
// that is the exact byte sequence issuers and verifiers sign and check.
func (c *Certificate) Encode(includeSignature bool) []byte {
	w := canon.NewWriter()
	w.Tag(tagVersion)
	w.Uint(c.Version)
	w.Tag(tagSerial)
	w.Bytes(c.Serial)
	w.Tag(tagSubjectID)
	w.String(c.SubjectID)
	w.Tag(tagSubjectName)
	w.String(c.SubjectName)
	w.Tag(tagPublicKey)
	w.Bytes(c.PublicKey)
	w.Tag(tagIssuerID)
	w.String(c.IssuerID)
	w.Tag(tagIssuedAt)
	w.Int(c.IssuedAt)
	w.Tag(tagIsCA)
	w.Bool(c.IsCA)
	if includeSignature {
		w.Tag(tagSignature)
		w.Bytes(c.Signature)
	}
	return w.Bytes()
}

// DecodeCertificate parses a canonical certificate record. Fields may
// appear in any order; decoding is permissive about order but still
// rejects anything that fails to supply every required field.
func DecodeCertificate(b []byte) (*Certificate, error) {
	r := canon.NewReader(b)
	c := &Certificate{}
	seen := map[byte]bool{}

	for r.Len() > 0 {
		tag, err := r.Tag()
		if err != nil {
			return nil, fmt.Errorf("cert: read tag: %w", err)
		}
		switch tag {
		case tagVersion:
			v, err := r.Uint()
			if err != nil {
				return nil, fmt.Errorf("cert: version: %w", err)
			}
			c.Version = v
		case tagSerial:
			v, err := r.Bytes()
			if err != nil {
				return nil, fmt.Errorf("cert: serial: %w", err)
			}
			c.Serial = append([]byte(nil), v...)
		case tagSubjectID:
			v, err := r.String()
			if err != nil {
				return nil, fmt.Errorf("cert: subject_id: %w", err)
			}
			c.SubjectID = v
		case tagSubjectName:
			v, err := r.String()
			if err != nil {
				return nil, fmt.Errorf("cert: subject_name: %w", err)
			}
			c.SubjectName = v
		case tagPublicKey:
			v, err := r.Bytes()
			if err != nil {
				return nil, fmt.Errorf("cert: public_key: %w", err)
			}
			c.PublicKey = append(keys.PublicKey(nil), v...)
		case tagIssuerID:
			v, err := r.String()
			if err != nil {
				return nil, fmt.Errorf("cert: issuer_id: %w", err)
			}
			c.IssuerID = v
		case tagIssuedAt:
			v, err := r.Int()
			if err != nil {
				return nil, fmt.Errorf("cert: issued_at: %w", err)
			}
			c.IssuedAt = v
		case tagIsCA:
			v, err := r.Bool()
			if err != nil {
				return nil, fmt.Errorf("cert: is_ca: %w", err)
			}
			c.IsCA = v
		case tagSignature:
			v, err := r.Bytes()
			if err != nil {
				return nil, fmt.Errorf("cert: signature: %w", err)
			}
			c.Signature = append([]byte(nil), v...)
		default:
			return nil, fmt.Errorf("cert: unknown field tag %d", tag)
		}
		seen[tag] = true
	}

	for _, required := range []byte{tagVersion, tagSerial, tagSubjectID, tagSubjectName, tagPublicKey, tagIssuerID, tagIssuedAt, tagIsCA} {
		if !seen[required] {
			return nil, fmt.Errorf("cert: missing required field tag %d", required)
		}
	}
	if c.PublicKey == nil || len(c.PublicKey) != keys.PublicKeySize {
		return nil, fmt.Errorf("cert: public_key must be %d bytes", keys.PublicKeySize)
	}

	return c, nil
}

// SelfSigned reports whether c claims to be its own issuer.
func (c *Certificate) SelfSigned() bool {
	return c.IssuerID == c.SubjectID
}

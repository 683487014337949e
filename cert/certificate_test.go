package cert

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aurel3d/aletheia/canon"
	"github.com/aurel3d/aletheia/keys"
)

// manualRecord hand-builds a certificate record with fields in a
// different order than Encode would choose, to exercise decoder
// permissiveness.
func manualRecord(t *testing.T, pub keys.PublicKey) []byte {
	t.Helper()
	w := canon.NewWriter()
	w.Tag(tagSubjectID)
	w.String("a@x")
	w.Tag(tagVersion)
	w.Uint(1)
	w.Tag(tagSerial)
	w.Bytes([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16})
	w.Tag(tagSubjectName)
	w.String("A")
	w.Tag(tagPublicKey)
	w.Bytes(pub)
	w.Tag(tagIssuerID)
	w.String("ca@x")
	w.Tag(tagIssuedAt)
	w.Int(1700000000)
	w.Tag(tagIsCA)
	w.Bool(false)
	return w.Bytes()
}

func testCert(t *testing.T) *Certificate {
	t.Helper()
	pub, _, err := keys.Generate()
	require.NoError(t, err)
	return &Certificate{
		Version:     RecordVersion,
		Serial:      []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SubjectID:   "a@x",
		SubjectName: "A",
		PublicKey:   pub,
		IssuerID:    "ca@x",
		IssuedAt:    1700000000,
		IsCA:        false,
		Signature:   make([]byte, keys.SignatureSize),
	}
}

func TestCertificateEncodeDecodeRoundTrip(t *testing.T) {
	c := testCert(t)
	enc := c.Encode(true)

	decoded, err := DecodeCertificate(enc)
	require.NoError(t, err)
	require.Equal(t, c.Version, decoded.Version)
	require.Equal(t, c.Serial, decoded.Serial)
	require.Equal(t, c.SubjectID, decoded.SubjectID)
	require.Equal(t, c.SubjectName, decoded.SubjectName)
	require.Equal(t, []byte(c.PublicKey), []byte(decoded.PublicKey))
	require.Equal(t, c.IssuerID, decoded.IssuerID)
	require.Equal(t, c.IssuedAt, decoded.IssuedAt)
	require.Equal(t, c.IsCA, decoded.IsCA)
	require.Equal(t, c.Signature, decoded.Signature)
}

func TestCertificateEncodeDeterministic(t *testing.T) {
	c := testCert(t)
	require.Equal(t, c.Encode(true), c.Encode(true))
	require.Equal(t, c.Encode(false), c.Encode(false))
}

func TestCertificateEncodeOmitsSignatureWhenExcluded(t *testing.T) {
	c := testCert(t)
	withoutSig := c.Encode(false)
	withSig := c.Encode(true)
	require.Less(t, len(withoutSig), len(withSig))

	decoded, err := DecodeCertificate(withoutSig)
	require.NoError(t, err)
	require.Empty(t, decoded.Signature)
}

func TestDecodeCertificateRejectsMissingField(t *testing.T) {
	c := testCert(t)
	enc := c.Encode(true)
	// Keep only the first field (version) so every other required field is
	// missing.
	_, err := DecodeCertificate(enc[:2])
	require.Error(t, err)
}

func TestDecodeCertificateIsOrderPermissive(t *testing.T) {
	pub, _, err := keys.Generate()
	require.NoError(t, err)

	// Manually build a record with fields in a different order than the
	// encoder would choose, to confirm the decoder doesn't care.
	w := manualRecord(t, pub)
	decoded, err := DecodeCertificate(w)
	require.NoError(t, err)
	require.Equal(t, "a@x", decoded.SubjectID)
	require.Equal(t, uint64(1), decoded.Version)
}

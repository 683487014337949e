package envelope

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aurel3d/aletheia/cert"
	"github.com/aurel3d/aletheia/header"
	"github.com/aurel3d/aletheia/keys"
)

func buildTestEnvelope(t *testing.T, payload []byte) ([]byte, cert.Chain) {
	t.Helper()
	authority, root, err := cert.NewRootAuthority("ca@x", "CA")
	require.NoError(t, err)
	pub, priv, err := keys.Generate()
	require.NoError(t, err)
	leaf, err := authority.Issue("a@x", "A", pub, false)
	require.NoError(t, err)
	chain := cert.Chain{leaf, root}

	h := &header.Header{CreatorID: "a@x", SignedAt: 1700000000}
	headerBytes, err := h.Encode()
	require.NoError(t, err)
	chainBytes := cert.EncodeChain(chain)

	sigInput := BuildSignatureInput(0, 0, headerBytes, payload, chainBytes)
	sig := keys.Sign(priv, sigInput)
	out, err := Build(sigInput, sig)
	require.NoError(t, err)
	return out, chain
}

func TestParseBuildRoundTrip(t *testing.T) {
	payload := []byte("hello")
	b, _ := buildTestEnvelope(t, payload)

	parsed, err := Parse(b)
	require.NoError(t, err)
	require.Equal(t, SupportedVersionMajor, parsed.VersionMajor)
	require.Equal(t, uint16(0), parsed.Flags)
	require.Equal(t, "a@x", parsed.Header.CreatorID)
	require.Equal(t, payload, parsed.Payload)
	require.Len(t, parsed.Chain, 2)
	require.Len(t, parsed.Signature, 64)
}

func TestRangesAreContiguousAndCoverWholeBuffer(t *testing.T) {
	b, _ := buildTestEnvelope(t, []byte("hello"))
	parsed, err := Parse(b)
	require.NoError(t, err)

	r := parsed.Ranges
	require.Equal(t, 0, r.Magic.Start)
	require.Equal(t, r.Magic.End, r.Version.Start)
	require.Equal(t, r.Version.End, r.Flags.Start)
	require.Equal(t, r.Flags.End, r.Header.Start)
	require.Equal(t, r.Header.End, r.Payload.Start)
	require.Equal(t, r.Payload.End, r.Chain.Start)
	require.Equal(t, r.Chain.End, r.Signature.Start)
	require.Equal(t, len(b), r.Signature.End)
	require.Equal(t, len(b)-64, r.Signature.Start)
}

func TestZeroLengthPayload(t *testing.T) {
	b, _ := buildTestEnvelope(t, nil)
	parsed, err := Parse(b)
	require.NoError(t, err)
	require.Empty(t, parsed.Payload)
	require.Equal(t, parsed.Ranges.Payload.Start+8, parsed.Ranges.Payload.End)
}

func TestBadMagic(t *testing.T) {
	b, _ := buildTestEnvelope(t, []byte("x"))
	b[0] ^= 0xff
	_, err := Parse(b)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestUnsupportedVersion(t *testing.T) {
	b, _ := buildTestEnvelope(t, []byte("x"))
	b[8] = 2
	_, err := Parse(b)
	var target *ErrUnsupportedVersion
	require.ErrorAs(t, err, &target)
	require.Equal(t, uint8(2), target.Major)
}

func TestReservedFlagsSet(t *testing.T) {
	b, _ := buildTestEnvelope(t, []byte("x"))
	b[10] |= 0x02
	_, err := Parse(b)
	var target *ErrReservedFlagsSet
	require.ErrorAs(t, err, &target)
}

func TestTruncatedSignature(t *testing.T) {
	b, _ := buildTestEnvelope(t, []byte("x"))
	b = b[:len(b)-1]
	_, err := Parse(b)
	var target *ErrSignatureLengthMismatch
	require.ErrorAs(t, err, &target)
	require.Equal(t, 63, target.Got)
}

func TestTrailingBytes(t *testing.T) {
	b, _ := buildTestEnvelope(t, []byte("x"))
	b = append(b, 0)
	_, err := Parse(b)
	var target *ErrTrailingBytes
	require.ErrorAs(t, err, &target)
	require.Equal(t, 1, target.N)
}

func TestTruncatedInput(t *testing.T) {
	_, err := Parse([]byte{0x41, 0x4C, 0x45})
	var target *ErrTruncatedInput
	require.ErrorAs(t, err, &target)
}

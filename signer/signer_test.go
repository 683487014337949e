package signer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aurel3d/aletheia/cert"
	"github.com/aurel3d/aletheia/envelope"
	"github.com/aurel3d/aletheia/header"
	"github.com/aurel3d/aletheia/keys"
)

func testChain(t *testing.T) (cert.Chain, keys.PrivateKey) {
	t.Helper()
	authority, root, err := cert.NewRootAuthority("ca@x", "CA")
	require.NoError(t, err)
	pub, priv, err := keys.Generate()
	require.NoError(t, err)
	leaf, err := authority.Issue("a@x", "A", pub, false)
	require.NoError(t, err)
	return cert.Chain{leaf, root}, priv
}

func TestNewRejectsKeyMismatch(t *testing.T) {
	chain, _ := testChain(t)
	_, otherPriv, err := keys.Generate()
	require.NoError(t, err)

	_, err = New(otherPriv, chain)
	require.Error(t, err)
	var target *ErrInvalidChain
	require.ErrorAs(t, err, &target)
}

func TestNewRejectsInvalidChain(t *testing.T) {
	chain, priv := testChain(t)
	broken := cert.Chain{chain[0]}
	broken[0].IssuerID = "someone-else"

	_, err := New(priv, broken)
	require.Error(t, err)
	var target *ErrInvalidChain
	require.ErrorAs(t, err, &target)
}

func TestSignRejectsCreatorIDMismatch(t *testing.T) {
	chain, priv := testChain(t)
	s, err := New(priv, chain)
	require.NoError(t, err)

	h := &header.Header{CreatorID: "not-a@x", SignedAt: 1}
	_, err = s.Sign([]byte("hi"), h, false)
	require.ErrorIs(t, err, ErrCreatorIDMismatch)
}

func TestSignProducesParsableEnvelope(t *testing.T) {
	chain, priv := testChain(t)
	s, err := New(priv, chain)
	require.NoError(t, err)

	h := &header.Header{CreatorID: "a@x", SignedAt: 1700000000, ContentType: "text/plain"}
	out, err := s.Sign([]byte("hello world"), h, false)
	require.NoError(t, err)

	parsed, err := envelope.Parse(out)
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), parsed.Payload)
	require.False(t, parsed.Compressed())
	require.Equal(t, "a@x", parsed.Header.CreatorID)
	require.Len(t, parsed.Chain, 2)
}

func TestSignWithCompressionSetsFlagAndStoresCompressedBytes(t *testing.T) {
	chain, priv := testChain(t)
	s, err := New(priv, chain)
	require.NoError(t, err)

	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i % 7)
	}
	h := &header.Header{CreatorID: "a@x", SignedAt: 1}
	out, err := s.Sign(payload, h, true)
	require.NoError(t, err)

	parsed, err := envelope.Parse(out)
	require.NoError(t, err)
	require.True(t, parsed.Compressed())
	require.NotEqual(t, payload, parsed.Payload)
}

func TestSignIsDeterministicGivenSameInputs(t *testing.T) {
	chain, priv := testChain(t)
	s, err := New(priv, chain)
	require.NoError(t, err)

	h := &header.Header{CreatorID: "a@x", SignedAt: 42}
	out1, err := s.Sign([]byte("same"), h, false)
	require.NoError(t, err)
	out2, err := s.Sign([]byte("same"), h, false)
	require.NoError(t, err)
	require.Equal(t, out1, out2)
}

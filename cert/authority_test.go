package cert

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aurel3d/aletheia/keys"
)

func TestNewRootAuthoritySelfSigned(t *testing.T) {
	authority, root, err := NewRootAuthority("ca@x", "CA")
	require.NoError(t, err)
	require.True(t, root.IsCA)
	require.True(t, root.SelfSigned())
	require.GreaterOrEqual(t, len(root.Serial), 16)
	require.True(t, keys.Verify(root.PublicKey, root.Encode(false), root.Signature))
	require.Same(t, root, authority.Certificate())
}

func TestIssueRequiresCA(t *testing.T) {
	authority, _, err := NewRootAuthority("ca@x", "CA")
	require.NoError(t, err)

	pub, _, err := keys.Generate()
	require.NoError(t, err)
	leaf, err := authority.Issue("a@x", "A", pub, false)
	require.NoError(t, err)
	require.False(t, leaf.IsCA)
	require.Equal(t, "ca@x", leaf.IssuerID)
	require.True(t, keys.Verify(authority.Certificate().PublicKey, leaf.Encode(false), leaf.Signature))

	// An authority built from a non-CA certificate must refuse to issue.
	leafPub, leafPriv, err := keys.Generate()
	require.NoError(t, err)
	_ = leafPriv
	nonCA := &Authority{cert: &Certificate{IsCA: false, SubjectID: "x"}, priv: nil}
	_, err = nonCA.Issue("y", "Y", leafPub, false)
	require.ErrorIs(t, err, ErrNotACA)
}

func TestAuthorityPrivateKeyMatchesCertificate(t *testing.T) {
	authority, root, err := NewRootAuthority("ca@x", "CA")
	require.NoError(t, err)
	priv := authority.PrivateKey()
	require.Equal(t, keys.PublicKey(root.PublicKey), priv.Public().(keys.PublicKey))
}

func TestLoadAuthorityRejectsKeyMismatch(t *testing.T) {
	_, root, err := NewRootAuthority("ca@x", "CA")
	require.NoError(t, err)
	_, otherPriv, err := keys.Generate()
	require.NoError(t, err)

	_, err = LoadAuthority(otherPriv, root)
	require.Error(t, err)
}

func TestLoadAuthorityRoundTrip(t *testing.T) {
	authority, root, err := NewRootAuthority("ca@x", "CA")
	require.NoError(t, err)

	reloaded, err := LoadAuthority(authority.priv, root)
	require.NoError(t, err)

	pub, _, err := keys.Generate()
	require.NoError(t, err)
	leaf, err := reloaded.Issue("a@x", "A", pub, false)
	require.NoError(t, err)
	require.True(t, keys.Verify(root.PublicKey, leaf.Encode(false), leaf.Signature))
}

func TestTwoSerialsDiffer(t *testing.T) {
	authority, _, err := NewRootAuthority("ca@x", "CA")
	require.NoError(t, err)
	pub, _, err := keys.Generate()
	require.NoError(t, err)
	c1, err := authority.Issue("a@x", "A", pub, false)
	require.NoError(t, err)
	c2, err := authority.Issue("b@x", "B", pub, false)
	require.NoError(t, err)
	require.NotEqual(t, c1.Serial, c2.Serial)
}

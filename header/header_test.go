package header

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTripRequiredOnly(t *testing.T) {
	h := &Header{CreatorID: "a@x", SignedAt: 1700000000}
	enc, err := h.Encode()
	require.NoError(t, err)

	decoded, err := Decode(enc)
	require.NoError(t, err)
	require.Equal(t, h.CreatorID, decoded.CreatorID)
	require.Equal(t, h.SignedAt, decoded.SignedAt)
	require.Empty(t, decoded.ContentType)
	require.Nil(t, decoded.Custom)
}

func TestHeaderRoundTripFull(t *testing.T) {
	h := &Header{
		CreatorID:    "a@x",
		SignedAt:     1700000000,
		ContentType:  "image/png",
		OriginalName: "photo.png",
		Description:  "a photo",
		Custom:       map[string]any{"b": 1, "a": "x"},
	}
	enc, err := h.Encode()
	require.NoError(t, err)
	decoded, err := Decode(enc)
	require.NoError(t, err)
	require.Equal(t, h.ContentType, decoded.ContentType)
	require.Equal(t, h.OriginalName, decoded.OriginalName)
	require.Equal(t, h.Description, decoded.Description)
	require.Equal(t, float64(1), decoded.Custom["b"])
	require.Equal(t, "x", decoded.Custom["a"])
}

func TestHeaderEncodeDeterministic(t *testing.T) {
	h := &Header{CreatorID: "a@x", SignedAt: 1, Custom: map[string]any{"z": 1, "a": 2}}
	a, err := h.Encode()
	require.NoError(t, err)
	b, err := h.Encode()
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestHeaderOnlyRequiredFieldsEncodesMinimally(t *testing.T) {
	h := &Header{CreatorID: "a@x", SignedAt: 1700000000}
	enc, err := h.Encode()
	require.NoError(t, err)
	// tag 1, "a@x"; tag 2, zigzag varint of 1700000000; nothing else.
	require.Equal(t, []byte{0x01, 0x03, 'a', '@', 'x', 0x02, 0x80, 0xc4, 0x9f, 0xd5, 0x0c}, enc)
	decoded, err := Decode(enc)
	require.NoError(t, err)
	reenc, err := decoded.Encode()
	require.NoError(t, err)
	require.Equal(t, enc, reenc)
}

func TestDecodeMissingRequiredFields(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)
}

// Package compress implements the single pluggable payload transform
// behind envelope flag bit 0. The signer compresses; neither the signer
// nor the verifier ever decompresses — signatures cover the stored bytes
// exactly as written, compressed or not — so Decompress is only called by
// a caller that actually wants the plaintext payload back.
package compress

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/s2"
)

// PayloadCodec compresses and decompresses an opaque payload. The stored
// form it produces always starts with an explicit little-endian u64
// decompressed-length prefix ahead of the compressed stream, so a reader
// can validate the result without trusting the codec's own framing.
type PayloadCodec interface {
	Compress(payload []byte) ([]byte, error)
	Decompress(stored []byte) ([]byte, error)
}

// S2Codec is the v1 codec: an LZ4-family block format
// (github.com/klauspost/compress/s2), single-pass in both directions.
type S2Codec struct{}

// Compress returns the length-prefixed, compressed form of payload.
func (S2Codec) Compress(payload []byte) ([]byte, error) {
	compressed := s2.Encode(nil, payload)
	out := make([]byte, 8+len(compressed))
	binary.LittleEndian.PutUint64(out[:8], uint64(len(payload)))
	copy(out[8:], compressed)
	return out, nil
}

// Decompress validates and reverses Compress. It fails if the stream is
// truncated, not valid S2, or decompresses to a different length than
// the prefix promised.
func (S2Codec) Decompress(stored []byte) ([]byte, error) {
	if len(stored) < 8 {
		return nil, fmt.Errorf("compress: truncated stream")
	}
	want := binary.LittleEndian.Uint64(stored[:8])
	decoded, err := s2.Decode(nil, stored[8:])
	if err != nil {
		return nil, fmt.Errorf("compress: decode: %w", err)
	}
	if uint64(len(decoded)) != want {
		return nil, fmt.Errorf("compress: length mismatch: want %d got %d", want, len(decoded))
	}
	return decoded, nil
}

// Default is the codec selected for envelope flag bit 0 in this version.
var Default PayloadCodec = S2Codec{}

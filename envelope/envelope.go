// Package envelope implements the Aletheia `.alx` binary codec: reading
// and writing the exact byte layout spec.md §6 defines, with byte-range
// tracking for every region. It never copies the payload region — parsed
// payload bytes are a subslice of the input buffer.
package envelope

import (
	"encoding/binary"
	"fmt"

	"github.com/aurel3d/aletheia/cert"
	"github.com/aurel3d/aletheia/header"
)

// Magic is the 8-byte tag every envelope starts with ("ALETHEIA").
var Magic = [8]byte{0x41, 0x4C, 0x45, 0x54, 0x48, 0x45, 0x49, 0x41}

const (
	// SupportedVersionMajor is the only version-major this codec reads
	// or writes.
	SupportedVersionMajor uint8 = 1

	// FlagCompressed is envelope flag bit 0.
	FlagCompressed uint16 = 1 << 0

	reservedFlagsMask uint16 = ^FlagCompressed

	magicSize         = 8
	headerLenSize     = 4
	payloadLenSize    = 8
	chainLenSize      = 4
	signatureSize     = 64
	fixedPrefixBefore = magicSize + 1 + 1 + 2 // magic, major, minor, flags
)

// Range is a half-open byte interval [Start, End) within the envelope.
type Range struct {
	Start, End int
}

// Ranges locates every region of a parsed envelope. The seven regions are
// contiguous, non-overlapping, appear in this order, and their union is
// exactly [0, len(bytes)). Each region bundles its own length prefix (if
// it has one) together with the data it describes.
type Ranges struct {
	Magic     Range
	Version   Range
	Flags     Range
	Header    Range // header-length prefix + header bytes
	Payload   Range // payload-length prefix + payload bytes
	Chain     Range // chain-length prefix + chain bytes
	Signature Range // always the last 64 bytes
}

// Parsed is the structured view Parse produces.
type Parsed struct {
	VersionMajor uint8
	VersionMinor uint8
	Flags        uint16
	Header       *header.Header
	Payload      []byte // raw stored bytes: compressed iff FlagCompressed is set
	Chain        cert.Chain
	Signature    []byte
	Ranges       Ranges
}

// Compressed reports whether flag bit 0 is set.
func (p *Parsed) Compressed() bool {
	return p.Flags&FlagCompressed != 0
}

const maxInt = int(^uint(0) >> 1)

// Parse reads an envelope byte sequence into a Parsed view. It stops at
// the first structural error.
func Parse(b []byte) (*Parsed, error) {
	offset := 0
	need := func(n int) error {
		if len(b)-offset < n {
			return &ErrTruncatedInput{Offset: offset, Need: n - (len(b) - offset)}
		}
		return nil
	}

	if err := need(magicSize); err != nil {
		return nil, err
	}
	var magic [8]byte
	copy(magic[:], b[offset:offset+magicSize])
	if magic != Magic {
		return nil, ErrBadMagic
	}
	magicRange := Range{offset, offset + magicSize}
	offset += magicSize

	if err := need(2); err != nil {
		return nil, err
	}
	versionMajor := b[offset]
	versionMinor := b[offset+1]
	if versionMajor != SupportedVersionMajor {
		return nil, &ErrUnsupportedVersion{Major: versionMajor}
	}
	versionRange := Range{offset, offset + 2}
	offset += 2

	if err := need(2); err != nil {
		return nil, err
	}
	flags := binary.LittleEndian.Uint16(b[offset : offset+2])
	if flags&reservedFlagsMask != 0 {
		return nil, &ErrReservedFlagsSet{Bits: flags & reservedFlagsMask}
	}
	flagsRange := Range{offset, offset + 2}
	offset += 2

	headerStart := offset
	if err := need(headerLenSize); err != nil {
		return nil, err
	}
	headerLen := binary.LittleEndian.Uint32(b[offset : offset+headerLenSize])
	offset += headerLenSize
	if err := need(int(headerLen)); err != nil {
		return nil, err
	}
	headerBytes := b[offset : offset+int(headerLen)]
	offset += int(headerLen)
	headerRange := Range{headerStart, offset}

	parsedHeader, err := header.Decode(headerBytes)
	if err != nil {
		return nil, &ErrHeaderDecode{Reason: err.Error()}
	}

	payloadStart := offset
	if err := need(payloadLenSize); err != nil {
		return nil, err
	}
	payloadLen := binary.LittleEndian.Uint64(b[offset : offset+payloadLenSize])
	offset += payloadLenSize
	if payloadLen > uint64(maxInt) {
		return nil, ErrPayloadLengthOverflow
	}
	if err := need(int(payloadLen)); err != nil {
		return nil, err
	}
	payloadBytes := b[offset : offset+int(payloadLen)]
	offset += int(payloadLen)
	payloadRange := Range{payloadStart, offset}

	chainStart := offset
	if err := need(chainLenSize); err != nil {
		return nil, err
	}
	chainLen := binary.LittleEndian.Uint32(b[offset : offset+chainLenSize])
	offset += chainLenSize
	if err := need(int(chainLen)); err != nil {
		return nil, err
	}
	chainBytes := b[offset : offset+int(chainLen)]
	offset += int(chainLen)
	chainRange := Range{chainStart, offset}

	chain, err := cert.DecodeChain(chainBytes)
	if err != nil {
		return nil, &ErrChainDecode{Reason: err.Error()}
	}
	if len(chain) == 0 {
		return nil, ErrEmptyChain
	}

	remaining := len(b) - offset
	if remaining < signatureSize {
		return nil, &ErrSignatureLengthMismatch{Got: remaining}
	}
	if remaining > signatureSize {
		return nil, &ErrTrailingBytes{N: remaining - signatureSize}
	}
	signature := b[offset : offset+signatureSize]
	signatureRange := Range{offset, offset + signatureSize}

	return &Parsed{
		VersionMajor: versionMajor,
		VersionMinor: versionMinor,
		Flags:        flags,
		Header:       parsedHeader,
		Payload:      payloadBytes,
		Chain:        chain,
		Signature:    signature,
		Ranges: Ranges{
			Magic:     magicRange,
			Version:   versionRange,
			Flags:     flagsRange,
			Header:    headerRange,
			Payload:   payloadRange,
			Chain:     chainRange,
			Signature: signatureRange,
		},
	}, nil
}

// BuildSignatureInput assembles the exact byte sequence a signer signs
// and a verifier recomputes: magic, version, flags, header-length,
// header, payload-length, payload, chain-length, chain bytes, in exactly
// this order with no padding.
func BuildSignatureInput(versionMinor uint8, flags uint16, headerBytes, payloadBytes, chainBytes []byte) []byte {
	size := magicSize + 2 + 2 + headerLenSize + len(headerBytes) + payloadLenSize + len(payloadBytes) + chainLenSize + len(chainBytes)
	out := make([]byte, size)
	offset := 0
	offset += copy(out[offset:], Magic[:])
	out[offset] = SupportedVersionMajor
	out[offset+1] = versionMinor
	offset += 2
	binary.LittleEndian.PutUint16(out[offset:], flags)
	offset += 2
	binary.LittleEndian.PutUint32(out[offset:], uint32(len(headerBytes)))
	offset += headerLenSize
	offset += copy(out[offset:], headerBytes)
	binary.LittleEndian.PutUint64(out[offset:], uint64(len(payloadBytes)))
	offset += payloadLenSize
	offset += copy(out[offset:], payloadBytes)
	binary.LittleEndian.PutUint32(out[offset:], uint32(len(chainBytes)))
	offset += chainLenSize
	offset += copy(out[offset:], chainBytes)
	return out
}

// Build assembles a complete envelope from a precomputed signature input
// and its signature. Callers obtain sigInput from BuildSignatureInput so
// the two never drift apart.
func Build(sigInput, signature []byte) ([]byte, error) {
	if len(signature) != signatureSize {
		return nil, fmt.Errorf("envelope: signature must be %d bytes, got %d", signatureSize, len(signature))
	}
	out := make([]byte, len(sigInput)+signatureSize)
	copy(out, sigInput)
	copy(out[len(sigInput):], signature)
	return out, nil
}

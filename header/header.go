// Package header implements the canonical encoding of the envelope's
// metadata record.
package header

import (
	"encoding/json"
	"fmt"

	"github.com/aurel3d/aletheia/canon"
)

// Field tags, in the fixed order the encoder emits them.
const (
	tagCreatorID    byte = 1
	tagSignedAt     byte = 2
	tagContentType  byte = 3
	tagOriginalName byte = 4
	tagDescription  byte = 5
	tagCustom       byte = 6
)

// Header is the header region of an envelope.
type Header struct {
	CreatorID    string // required: must equal chain[0].subject_id
	SignedAt     int64  // required: epoch seconds
	ContentType  string // optional
	OriginalName string // optional
	Description  string // optional

	// Custom is an application extension point. Values must be JSON
	// marshalable; the map is serialized as a single canonical JSON blob
	// (encoding/json sorts map keys alphabetically), so two headers with
	// the same logical Custom map always encode identically regardless
	// of how the caller populated it.
	Custom map[string]any
}

// Encode returns the canonical encoding of the header. Absent optional
// fields are omitted entirely rather than written as empty values.
func (h *Header) Encode() ([]byte, error) {
	w := canon.NewWriter()
	w.Tag(tagCreatorID)
	w.String(h.CreatorID)
	w.Tag(tagSignedAt)
	w.Int(h.SignedAt)
	if h.ContentType != "" {
		w.Tag(tagContentType)
		w.String(h.ContentType)
	}
	if h.OriginalName != "" {
		w.Tag(tagOriginalName)
		w.String(h.OriginalName)
	}
	if h.Description != "" {
		w.Tag(tagDescription)
		w.String(h.Description)
	}
	if len(h.Custom) > 0 {
		blob, err := json.Marshal(h.Custom)
		if err != nil {
			return nil, fmt.Errorf("header: encode custom: %w", err)
		}
		w.Tag(tagCustom)
		w.Bytes(blob)
	}
	return w.Bytes(), nil
}

// Decode parses a canonical header record. Fields may appear in any
// order.
func Decode(b []byte) (*Header, error) {
	r := canon.NewReader(b)
	h := &Header{}
	var sawCreatorID, sawSignedAt bool

	for r.Len() > 0 {
		tag, err := r.Tag()
		if err != nil {
			return nil, fmt.Errorf("header: read tag: %w", err)
		}
		switch tag {
		case tagCreatorID:
			v, err := r.String()
			if err != nil {
				return nil, fmt.Errorf("header: creator_id: %w", err)
			}
			h.CreatorID = v
			sawCreatorID = true
		case tagSignedAt:
			v, err := r.Int()
			if err != nil {
				return nil, fmt.Errorf("header: signed_at: %w", err)
			}
			h.SignedAt = v
			sawSignedAt = true
		case tagContentType:
			v, err := r.String()
			if err != nil {
				return nil, fmt.Errorf("header: content_type: %w", err)
			}
			h.ContentType = v
		case tagOriginalName:
			v, err := r.String()
			if err != nil {
				return nil, fmt.Errorf("header: original_name: %w", err)
			}
			h.OriginalName = v
		case tagDescription:
			v, err := r.String()
			if err != nil {
				return nil, fmt.Errorf("header: description: %w", err)
			}
			h.Description = v
		case tagCustom:
			blob, err := r.Bytes()
			if err != nil {
				return nil, fmt.Errorf("header: custom: %w", err)
			}
			var custom map[string]any
			if err := json.Unmarshal(blob, &custom); err != nil {
				return nil, fmt.Errorf("header: decode custom: %w", err)
			}
			h.Custom = custom
		default:
			return nil, fmt.Errorf("header: unknown field tag %d", tag)
		}
	}

	if !sawCreatorID {
		return nil, fmt.Errorf("header: missing required field creator_id")
	}
	if !sawSignedAt {
		return nil, fmt.Errorf("header: missing required field signed_at")
	}
	return h, nil
}

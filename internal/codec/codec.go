// Package codec serializes decoded programs as JSON or canonical CBOR so
// they can be edited or stored and fed back to the assembler.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"pvmkit/internal/disasm"
)

// Format names a serialization.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	CBOR Format = "cbor"
)

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Text, JSON, CBOR:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or cbor)", s)
	}
}

// cborEncMode uses canonical options for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalJSON serializes a Program to indented JSON.
func MarshalJSON(p *disasm.Program) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// UnmarshalJSON deserializes a Program from JSON.
func UnmarshalJSON(data []byte) (*disasm.Program, error) {
	var p disasm.Program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("codec: unmarshal json program: %w", err)
	}
	return &p, nil
}

// MarshalCBOR serializes a Program to canonical CBOR bytes.
func MarshalCBOR(p *disasm.Program) ([]byte, error) {
	return cborEncMode.Marshal(p)
}

// UnmarshalCBOR deserializes a Program from CBOR bytes.
func UnmarshalCBOR(data []byte) (*disasm.Program, error) {
	var p disasm.Program
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("codec: unmarshal cbor program: %w", err)
	}
	return &p, nil
}

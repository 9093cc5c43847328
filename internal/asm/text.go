package asm

import (
	"fmt"

	"pvmkit/internal/listing"
)

// AssembleText parses an assembly listing and encodes it.
func AssembleText(src string) ([]byte, error) {
	p, err := listing.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing error: %w", err)
	}
	return Assemble(p)
}

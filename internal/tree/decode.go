package tree

import (
	"fmt"
	"io"

	"github.com/ohler55/ojg/oj"
)

// Decode parses a JSON document from r into mappings, sequences and scalars.
// Integers decode as int64 and other numbers as float64.
func Decode(r io.Reader) (interface{}, error) {
	doc, err := oj.Load(r)
	if err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	return doc, nil
}

// DecodeBytes parses a JSON document held in memory.
func DecodeBytes(data []byte) (interface{}, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}

	return doc, nil
}

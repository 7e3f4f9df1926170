package output

import (
	"bytes"
	"fmt"

	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

// Supported formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

const indent = 2

// EncodeJSON renders doc as indented JSON with sorted keys. A discarded
// (nil) document renders as null.
func EncodeJSON(doc interface{}) ([]byte, error) {
	out, err := oj.Marshal(doc, &ojg.Options{Indent: indent, Sort: true, HTMLUnsafe: true})
	if err != nil {
		return nil, fmt.Errorf("serializing JSON: %w", err)
	}

	return withNewline(out), nil
}

// EncodeCompactJSON renders doc on a single line with sorted keys.
func EncodeCompactJSON(doc interface{}) ([]byte, error) {
	out, err := oj.Marshal(doc, &ojg.Options{Sort: true, HTMLUnsafe: true})
	if err != nil {
		return nil, fmt.Errorf("serializing JSON: %w", err)
	}

	return withNewline(out), nil
}

// EncodeYAML renders doc as YAML. Mapping keys are sorted by the encoder.
func EncodeYAML(doc interface{}) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("serializing YAML: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("serializing YAML: %w", err)
	}

	return buf.Bytes(), nil
}

func withNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}

	return b
}

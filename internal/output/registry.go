package output

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Encoder serializes a document.
type Encoder func(doc interface{}) ([]byte, error)

type entry struct {
	encode Encoder
	ext    string
}

// Registry maps format names to encoders and their file extensions.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]entry)}
}

// Register adds an encoder under name, replacing an existing one.
func (r *Registry) Register(name, ext string, enc Encoder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.formats[name] = entry{encode: enc, ext: ext}
}

// Encoder returns the encoder for name.
func (r *Registry) Encoder(name string) (Encoder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.formats[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %s)", name, r.availableLocked())
	}

	return e.encode, nil
}

// Encode serializes doc in the named format.
func (r *Registry) Encode(name string, doc interface{}) ([]byte, error) {
	enc, err := r.Encoder(name)
	if err != nil {
		return nil, err
	}

	return enc(doc)
}

// TargetPath places the output for input in dir, replacing the input's
// extension with the one registered for format.
func (r *Registry) TargetPath(dir, input, format string) string {
	r.mu.RLock()
	ext := r.formats[format].ext
	r.mu.RUnlock()

	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	return filepath.Join(dir, base+ext)
}

// Formats returns the registered names in ascending order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.formatsLocked()
}

func (r *Registry) formatsLocked() []string {
	names := make([]string, 0, len(r.formats))
	for name := range r.formats {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// AvailableFormats returns the registered names joined by commas.
func (r *Registry) AvailableFormats() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.availableLocked()
}

func (r *Registry) availableLocked() string {
	formats := r.formatsLocked()
	if len(formats) == 0 {
		return "none"
	}

	return strings.Join(formats, ", ")
}

// DefaultRegistry returns a registry with the json and yaml formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(FormatJSON, ".json", EncodeJSON)
	r.Register(FormatYAML, ".yaml", EncodeYAML)

	return r
}

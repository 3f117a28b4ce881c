package providers

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk registry document:
//
//	providers:
//	  - key_kind: domain
//	    key: strike.me
//	    name: Strike
//	    type: lightning_provider
type File struct {
	Providers []ProviderRecord `yaml:"providers"`
}

// Load decodes a registry document and builds a Registry from it.
// Unknown fields are rejected so a typo in key_kind does not silently drop a record.
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode provider registry: %w", err)
	}
	return New(f.Providers...)
}

// LoadFile reads the registry from path. An empty path yields Default().
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open provider registry: %w", err)
	}
	defer f.Close()

	reg, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

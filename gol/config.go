package gol

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadParams reads a yaml parameter file. Keys missing from the file keep their
// DefaultParams values and unknown keys are rejected.
func LoadParams(path string) (Params, error) {
	file, err := os.Open(path)
	if err != nil {
		return Params{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()
	return DecodeParams(file)
}

// DecodeParams is LoadParams for an already open reader
func DecodeParams(r io.Reader) (Params, error) {
	p := DefaultParams()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Params{}, fmt.Errorf("%w: decode config: %v", ErrInvalidParams, err)
	}
	return p, nil
}

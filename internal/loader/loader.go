// Package loader reads schema and sample documents from disk. Input files
// may carry comments and trailing commas (JWCC); they are standardized to
// plain JSON before parsing, so hand-maintained schemas stay readable.
package loader

import (
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"github.com/dbsmedya/gomutate/internal/jsonval"
	"github.com/dbsmedya/gomutate/internal/schema"
)

// ReadJSON reads path and returns standardized JSON bytes. Plain JSON passes
// through unchanged.
func ReadJSON(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("standardize %s: %w", path, err)
	}
	return standardized, nil
}

// LoadSchema reads and parses a schema file.
func LoadSchema(path string) (*schema.Node, error) {
	data, err := ReadJSON(path)
	if err != nil {
		return nil, err
	}

	node, err := schema.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return node, nil
}

// LoadSample reads and decodes a sample document file.
func LoadSample(path string) (interface{}, error) {
	data, err := ReadJSON(path)
	if err != nil {
		return nil, err
	}

	value, err := jsonval.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", path, err)
	}
	return value, nil
}

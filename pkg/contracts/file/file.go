// Package file provides a directory-backed connector contract source: one
// JSON file per capability at <root>/<provider>/<name>.json.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/edvalho/recipelint/pkg/contracts"
)

// Source implements the contracts.Source interface using the file system.
type Source struct {
	root string
}

// NewSource creates a file-backed contract source rooted at the given
// directory. A file:// prefix is accepted and stripped.
func NewSource(root string) *Source {
	return &Source{root: strings.Replace(root, "file://", "", 1)}
}

func (s *Source) Lookup(_ context.Context, provider, name string) (*contracts.Contract, error) {
	path := filepath.Join(s.root, provider, name+".json")

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no contract file for %s/%s", contracts.ErrUnavailable, provider, name)
		}

		return nil, fmt.Errorf("%w: reading %s: %s", contracts.ErrUnavailable, path, err)
	}

	var contract contracts.Contract
	if err := json.Unmarshal(raw, &contract); err != nil {
		return nil, fmt.Errorf("%w: %s does not decode: %s", contracts.ErrUnavailable, path, err)
	}

	if contract.Provider == "" {
		contract.Provider = provider
	}

	if contract.Name == "" {
		contract.Name = name
	}

	return &contract, nil
}

// HealthCheck verifies the contract root directory exists.
func (s *Source) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); err != nil {
		return fmt.Errorf("contract root %s: %w", s.root, err)
	}

	return nil
}

// Close performs any necessary cleanup. For the file source there is nothing
// to clean up.
func (s *Source) Close(_ context.Context) error {
	return nil
}

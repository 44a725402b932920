// Package contracts provides access to the published connector contracts the
// schema cross-validator compares recipes against. The validation core only
// ever reads this data; ownership and caching live with the backing store.
package contracts

import (
	"context"
	"errors"

	"github.com/edvalho/recipelint/pkg/models"
)

// Static error variables for linter compliance.
var (
	ErrUnavailable = errors.New("connector contract unavailable")
)

// Contract is a connector's published action/trigger contract: the typed
// field trees for its input and output.
type Contract struct {
	Provider string                `json:"provider"`
	Name     string                `json:"name"`
	Input    []*models.SchemaField `json:"input,omitempty"`
	Output   []*models.SchemaField `json:"output,omitempty"`
}

// Source is a contract store. Implementations back it with a directory, a
// Redis cache, a relational database, or anything else that can answer
// (provider, name) lookups.
type Source interface {
	// Lookup returns the contract for a (provider, name) pair, or an error
	// wrapping ErrUnavailable when the connector is unknown or the store
	// cannot be reached.
	Lookup(ctx context.Context, provider, name string) (*Contract, error)
	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// Lookup is the pure collaborator function the validation pass consumes: a
// snapshot view with no I/O behind it.
type Lookup func(provider, name string) (*Contract, bool)

// Key builds the canonical map key for a (provider, name) pair.
func Key(provider, name string) string {
	return provider + "/" + name
}

// Static is an in-memory Source keyed by Key(provider, name), used by tests
// and by callers that already hold the contracts they need.
type Static map[string]*Contract

func (s Static) Lookup(_ context.Context, provider, name string) (*Contract, error) {
	contract, ok := s[Key(provider, name)]
	if !ok {
		return nil, ErrUnavailable
	}

	return contract, nil
}

func (s Static) HealthCheck(_ context.Context) error { return nil }

func (s Static) Close(_ context.Context) error { return nil }

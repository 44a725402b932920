// Package redis provides a Redis-backed connector contract source. The cache
// is populated and owned by the hosting platform; this source only reads.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/edvalho/recipelint/pkg/contracts"
)

const keyPrefix = "contract:"

// Source implements the contracts.Source interface on a Redis cache keyed
// contract:<provider>:<name>.
type Source struct {
	client redis.UniversalClient
}

// NewSource connects to the Redis URL (redis://host:port/db).
func NewSource(url string) (*Source, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	return &Source{client: redis.NewClient(opts)}, nil
}

func (s *Source) Lookup(ctx context.Context, provider, name string) (*contracts.Contract, error) {
	key := keyPrefix + provider + ":" + name

	raw, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: no cached contract for %s/%s", contracts.ErrUnavailable, provider, name)
		}

		return nil, fmt.Errorf("%w: redis get %s: %s", contracts.ErrUnavailable, key, err)
	}

	var contract contracts.Contract
	if err := json.Unmarshal([]byte(raw), &contract); err != nil {
		return nil, fmt.Errorf("%w: cached contract %s does not decode: %s", contracts.ErrUnavailable, key, err)
	}

	return &contract, nil
}

func (s *Source) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Source) Close(_ context.Context) error {
	return s.client.Close()
}

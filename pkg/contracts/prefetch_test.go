package contracts

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvalho/recipelint/pkg/models"
)

func TestStatic_Lookup(t *testing.T) {
	source := Static{
		Key("salesforce", "new_record"): {
			Provider: "salesforce",
			Name:     "new_record",
			Output:   []*models.SchemaField{{Name: "id", Type: models.FieldTypeString}},
		},
	}

	contract, err := source.Lookup(context.Background(), "salesforce", "new_record")
	require.NoError(t, err)
	assert.Equal(t, "salesforce", contract.Provider)

	_, err = source.Lookup(context.Background(), "salesforce", "unknown")
	assert.ErrorIs(t, err, ErrUnavailable)
}

// countingSource records lookup calls and can fail selected pairs.
type countingSource struct {
	calls atomic.Int64
	fail  map[string]error
	delay time.Duration
}

func (s *countingSource) Lookup(ctx context.Context, provider, name string) (*Contract, error) {
	s.calls.Add(1)

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := s.fail[Key(provider, name)]; ok {
		return nil, err
	}

	return &Contract{Provider: provider, Name: name}, nil
}

func (s *countingSource) HealthCheck(_ context.Context) error { return nil }

func (s *countingSource) Close(_ context.Context) error { return nil }

func TestPrefetcher_Fetch(t *testing.T) {
	source := &countingSource{}
	prefetcher := NewPrefetcher(source, slog.Default())

	snapshot := prefetcher.Fetch(context.Background(), []Pair{
		{Provider: "salesforce", Name: "new_record"},
		{Provider: "shopify", Name: "create_order"},
		{Provider: "slack", Name: "post_message"},
	})

	assert.Len(t, snapshot, 3)
	assert.EqualValues(t, 3, source.calls.Load())

	contract, ok := snapshot.Lookup("shopify", "create_order")
	require.True(t, ok)
	assert.Equal(t, "shopify", contract.Provider)

	_, ok = snapshot.Lookup("shopify", "unknown")
	assert.False(t, ok)
}

func TestPrefetcher_DeduplicatesPairs(t *testing.T) {
	source := &countingSource{}
	prefetcher := NewPrefetcher(source, slog.Default())

	snapshot := prefetcher.Fetch(context.Background(), []Pair{
		{Provider: "salesforce", Name: "new_record"},
		{Provider: "salesforce", Name: "new_record"},
		{Provider: "salesforce", Name: "new_record"},
	})

	assert.Len(t, snapshot, 1)
	assert.EqualValues(t, 1, source.calls.Load())
}

func TestPrefetcher_UnavailableContractsAreAbsent(t *testing.T) {
	source := &countingSource{
		fail: map[string]error{
			Key("slack", "post_message"): ErrUnavailable,
		},
	}
	prefetcher := NewPrefetcher(source, slog.Default())

	snapshot := prefetcher.Fetch(context.Background(), []Pair{
		{Provider: "salesforce", Name: "new_record"},
		{Provider: "slack", Name: "post_message"},
	})

	assert.Len(t, snapshot, 1)

	_, ok := snapshot.Lookup("slack", "post_message")
	assert.False(t, ok)
}

func TestPrefetcher_InfrastructureErrorsDegrade(t *testing.T) {
	source := &countingSource{
		fail: map[string]error{
			Key("slack", "post_message"): errors.New("connection refused"),
		},
	}
	prefetcher := NewPrefetcher(source, slog.Default())

	snapshot := prefetcher.Fetch(context.Background(), []Pair{
		{Provider: "slack", Name: "post_message"},
	})

	assert.Empty(t, snapshot, "a broken store yields an empty snapshot, not a failure")
}

func TestPrefetcher_LookupTimeout(t *testing.T) {
	source := &countingSource{delay: 200 * time.Millisecond}
	prefetcher := NewPrefetcher(source, slog.Default()).WithTimeout(20 * time.Millisecond)

	snapshot := prefetcher.Fetch(context.Background(), []Pair{
		{Provider: "salesforce", Name: "new_record"},
	})

	assert.Empty(t, snapshot)
}

package contracts

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultPrefetchWorkers = 4
	defaultLookupTimeout   = 5 * time.Second
)

// Pair names one distinct connector capability to prefetch.
type Pair struct {
	Provider string
	Name     string
}

// Snapshot is the result of a prefetch: an immutable view the single-threaded
// validation pass reads from. Pairs that could not be fetched are simply
// absent and degrade to schema-unavailable warnings downstream.
type Snapshot map[string]*Contract

// Lookup satisfies the pure collaborator contract of the validation pass.
func (s Snapshot) Lookup(provider, name string) (*Contract, bool) {
	contract, ok := s[Key(provider, name)]

	return contract, ok
}

// Prefetcher fetches the contracts for all distinct (provider, name) pairs of
// a recipe before the validation pass begins. Fetches are independent and
// idempotent, so they run concurrently under a bounded worker count; each one
// carries its own timeout so a slow store degrades instead of hanging the
// pass.
type Prefetcher struct {
	source  Source
	logger  *slog.Logger
	workers int
	timeout time.Duration
}

func NewPrefetcher(source Source, logger *slog.Logger) *Prefetcher {
	return &Prefetcher{
		source:  source,
		logger:  logger.With("module", "contract_prefetcher"),
		workers: defaultPrefetchWorkers,
		timeout: defaultLookupTimeout,
	}
}

// WithWorkers bounds the fetch concurrency.
func (p *Prefetcher) WithWorkers(n int) *Prefetcher {
	if n > 0 {
		p.workers = n
	}

	return p
}

// WithTimeout sets the per-lookup timeout.
func (p *Prefetcher) WithTimeout(d time.Duration) *Prefetcher {
	if d > 0 {
		p.timeout = d
	}

	return p
}

// Fetch resolves every pair it can before ctx runs out and returns whatever
// was fetched. Lookup failures are logged, never returned: an absent contract
// is a validation Warning, not an infrastructure error.
func (p *Prefetcher) Fetch(ctx context.Context, pairs []Pair) Snapshot {
	snapshot := make(Snapshot, len(pairs))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	sem := make(chan struct{}, p.workers)
	seen := make(map[string]bool, len(pairs))

	for _, pair := range pairs {
		if seen[Key(pair.Provider, pair.Name)] {
			continue
		}

		seen[Key(pair.Provider, pair.Name)] = true

		wg.Add(1)

		go func(pair Pair) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			lookupCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			contract, err := p.source.Lookup(lookupCtx, pair.Provider, pair.Name)
			if err != nil {
				if !errors.Is(err, ErrUnavailable) {
					p.logger.Warn("Contract lookup failed",
						"provider", pair.Provider, "name", pair.Name, "error", err)
				}

				return
			}

			mu.Lock()
			snapshot[Key(pair.Provider, pair.Name)] = contract
			mu.Unlock()
		}(pair)
	}

	wg.Wait()

	return snapshot
}

// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edvalho/recipelint/pkg/contracts"
	"github.com/edvalho/recipelint/pkg/contracts/file"
	"github.com/edvalho/recipelint/pkg/contracts/postgres"
	"github.com/edvalho/recipelint/pkg/contracts/redis"
)

var supportedContractProviders = []string{"file", "redis", "postgres", "postgresql"}

// NewContractSource builds a connector contract source from a URL. The scheme
// selects the backend; anything unrecognized is treated as a file path.
func NewContractSource(ctx context.Context, logger *slog.Logger, contractsURL string) contracts.Source {
	provider := parseContractProvider(contractsURL)

	switch provider {
	case "redis":
		source, err := redis.NewSource(contractsURL)
		if err != nil {
			panic(fmt.Errorf("failed to create Redis contract source: %w", err))
		}

		return source
	case "postgres", "postgresql":
		source, err := postgres.NewSource(ctx, logger, contractsURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL contract source: %w", err))
		}

		return source
	default:
		return file.NewSource(contractsURL)
	}
}

func parseContractProvider(contractsURL string) string {
	parts := strings.Split(contractsURL, "://")

	provider := parts[0]
	for _, supported := range supportedContractProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}

// Package postgres provides a PostgreSQL-backed connector contract source.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/edvalho/recipelint/pkg/contracts"
)

// Source implements the contracts.Source interface using a PostgreSQL
// database.
type Source struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSource connects to the database, runs migrations and returns a ready
// source.
func NewSource(ctx context.Context, logger *slog.Logger, databaseURL string) (*Source, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	source := &Source{
		db:     database,
		logger: logger.With("component", "postgres_contract_source"),
	}

	migrationManager := newMigrationManager(source.logger, database, migrations())
	if err := migrationManager.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run contract migrations: %w", err)
	}

	logger.InfoContext(ctx, "PostgreSQL contract source initialized")

	return source, nil
}

func (s *Source) Lookup(ctx context.Context, provider, name string) (*contracts.Contract, error) {
	query := `
		SELECT input_schema, output_schema
		FROM connector_contracts
		WHERE provider = $1 AND name = $2
	`

	var inputJSON, outputJSON sql.NullString

	err := s.db.QueryRowContext(ctx, query, provider, name).Scan(&inputJSON, &outputJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no contract row for %s/%s", contracts.ErrUnavailable, provider, name)
		}

		return nil, fmt.Errorf("%w: querying contract %s/%s: %s", contracts.ErrUnavailable, provider, name, err)
	}

	contract := &contracts.Contract{Provider: provider, Name: name}

	if inputJSON.Valid {
		if err := json.Unmarshal([]byte(inputJSON.String), &contract.Input); err != nil {
			return nil, fmt.Errorf("%w: input schema for %s/%s does not decode: %s",
				contracts.ErrUnavailable, provider, name, err)
		}
	}

	if outputJSON.Valid {
		if err := json.Unmarshal([]byte(outputJSON.String), &contract.Output); err != nil {
			return nil, fmt.Errorf("%w: output schema for %s/%s does not decode: %s",
				contracts.ErrUnavailable, provider, name, err)
		}
	}

	return contract, nil
}

func (s *Source) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Source) Close(_ context.Context) error {
	return s.db.Close()
}

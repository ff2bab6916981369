package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/flavorgraph/internal/config"
	"github.com/agenthands/flavorgraph/internal/logging"
)

type Neo4jDriver struct {
	Driver   neo4j.DriverWithContext
	Database string
}

func NewNeo4jDriver(ctx context.Context, cfg config.Neo4jConfig) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	logging.Info().Str("uri", cfg.URI).Str("database", cfg.Database).Msg("Connected to Neo4j")
	return &Neo4jDriver{Driver: driver, Database: cfg.Database}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *Neo4jDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{}
	if d.Database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(d.Database))
	}

	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return neo4j.EagerResult{}, classify(err)
	}
	return *result, nil
}

// classify marks outages with ErrStorageUnavailable. Client errors such as
// syntax or constraint violations are returned as plain query failures.
func classify(err error) error {
	if unavailable(err) {
		return fmt.Errorf("%w: failed to execute query: %w", ErrStorageUnavailable, err)
	}
	return fmt.Errorf("failed to execute query: %w", err)
}

func unavailable(err error) bool {
	if neo4j.IsConnectivityError(err) || neo4j.IsTransactionExecutionLimit(err) || neo4j.IsRetryable(err) {
		return true
	}
	var dbErr *neo4j.Neo4jError
	if errors.As(err, &dbErr) {
		return dbErr.Classification() != "ClientError"
	}
	return false
}

// BuildIndices creates the uniqueness constraints the pairing workflow relies
// on. MERGE on these labels is only race free with the constraints in place.
func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	for _, q := range SchemaQueries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			return fmt.Errorf("failed to apply schema %q: %w", q, err)
		}
	}
	return nil
}

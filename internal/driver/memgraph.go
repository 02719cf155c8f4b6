package driver

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// MemgraphDriver talks to Memgraph or Neo4j over Bolt.
type MemgraphDriver struct {
	Driver neo4j.DriverWithContext
	logger logr.Logger
}

func NewMemgraphDriver(ctx context.Context, uri, username, password string, logger logr.Logger) (*MemgraphDriver, error) {
	log := logger.WithName("memgraph")

	auth := neo4j.NoAuth()
	if username != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}
	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to %s: %w", uri, err)
	}

	log.Info("Connected to graph database", "uri", uri)
	return &MemgraphDriver{Driver: driver, logger: log}, nil
}

func (d *MemgraphDriver) Close(ctx context.Context) error {
	return d.Driver.Close(ctx)
}

func (d *MemgraphDriver) ExecuteQuery(ctx context.Context, query string, params map[string]any) (neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, d.Driver, query, params, neo4j.EagerResultTransformer)
	if err != nil {
		return neo4j.EagerResult{}, fmt.Errorf("failed to execute query: %w", err)
	}
	return *result, nil
}

func (d *MemgraphDriver) BuildIndices(ctx context.Context) error {
	for _, q := range IndexQueries {
		if _, err := d.ExecuteQuery(ctx, q, nil); err != nil {
			// Re-creating an existing index fails on Memgraph; keep going.
			d.logger.V(1).Info("Index not created", "query", q, "error", err.Error())
		}
	}
	return nil
}

package test_seeder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestSeeder conhece os dois stores: docPool para produtos, graphPool para
// nós e arestas de composição.
type TestSeeder struct {
	docPool   *pgxpool.Pool
	graphPool *pgxpool.Pool
}

func New(docPool, graphPool *pgxpool.Pool) TestSeeder {
	return TestSeeder{docPool: docPool, graphPool: graphPool}
}

func (ts TestSeeder) TruncateTables(ctx context.Context) {
	graphTables := []string{
		"composition_edges",
		"graph_nodes",
	}

	for _, table := range graphTables {
		_, err := ts.graphPool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
		if err != nil {
			panic(fmt.Sprintf("Failed to truncate %s: %v", table, err))
		}
	}

	_, err := ts.docPool.Exec(ctx, "TRUNCATE TABLE products RESTART IDENTITY CASCADE")
	if err != nil {
		panic(fmt.Sprintf("Failed to truncate products: %v", err))
	}
}

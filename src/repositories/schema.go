package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const docSchemaSQL = `
CREATE TABLE IF NOT EXISTS products (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    code            TEXT NOT NULL,
    name            TEXT NOT NULL,
    family          TEXT,
    product_type    SMALLINT NOT NULL,
    description     TEXT,
    amount_in_stock DOUBLE PRECISION NOT NULL DEFAULT 0,
    unit            TEXT NOT NULL DEFAULT '',
    lead_time       DOUBLE PRECISION NOT NULL DEFAULT 0,
    purchase_price  DOUBLE PRECISION NOT NULL DEFAULT 0,
    deleted         BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Unicidade de code vale só entre produtos não deletados: o code de um
-- produto deletado pode ser reutilizado.
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_code_active ON products(code) WHERE NOT deleted;
CREATE INDEX IF NOT EXISTS idx_products_family ON products(family) WHERE NOT deleted;
`

const graphSchemaSQL = `
CREATE TABLE IF NOT EXISTS graph_nodes (
    product_id UUID PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS composition_edges (
    id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    parent_id       UUID NOT NULL REFERENCES graph_nodes(product_id),
    child_id        UUID NOT NULL REFERENCES graph_nodes(product_id),
    quantity        DOUBLE PRECISION NOT NULL CHECK (quantity > 0),
    relationship_id TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (parent_id, child_id),
    CHECK (parent_id <> child_id)
);

CREATE INDEX IF NOT EXISTS idx_composition_edges_parent ON composition_edges(parent_id);
CREATE INDEX IF NOT EXISTS idx_composition_edges_child  ON composition_edges(child_id);
`

// EnsureDocSchema cria as tabelas do document store se não existirem.
func EnsureDocSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, docSchemaSQL)
	return err
}

// EnsureGraphSchema cria as tabelas do graph store se não existirem.
func EnsureGraphSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, graphSchemaSQL)
	return err
}

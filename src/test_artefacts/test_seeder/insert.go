package test_seeder

import (
	"context"
	"fmt"

	"productbom/src/domain/entities"

	"github.com/google/uuid"
)

// InsertProduct inserts a product into the document store for testing
func (ts TestSeeder) InsertProduct(ctx context.Context, product *entities.Product) {
	query := `
		INSERT INTO products (id, code, name, family, product_type, description, amount_in_stock, unit, lead_time, purchase_price, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := ts.docPool.Exec(ctx, query,
		product.ID,
		product.Code,
		product.Name,
		product.Family,
		product.ProductType,
		product.Description,
		product.AmountInStock,
		product.Unit,
		product.LeadTime,
		product.PurchasePrice,
		product.Deleted,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertProduct failed: %v", err))
	}
}

// InsertNode inserts a graph node into the graph store for testing
func (ts TestSeeder) InsertNode(ctx context.Context, productID uuid.UUID) {
	query := `INSERT INTO graph_nodes (product_id) VALUES ($1) ON CONFLICT (product_id) DO NOTHING`

	_, err := ts.graphPool.Exec(ctx, query, productID)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertNode failed: %v", err))
	}
}

// InsertEdge inserts a composition edge into the graph store for testing
func (ts TestSeeder) InsertEdge(ctx context.Context, edge *entities.CompositionEdge) {
	ts.InsertNode(ctx, edge.ParentID)
	ts.InsertNode(ctx, edge.ChildID)

	query := `
		INSERT INTO composition_edges (parent_id, child_id, quantity, relationship_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := ts.graphPool.Exec(ctx, query,
		edge.ParentID,
		edge.ChildID,
		edge.Quantity,
		edge.RelationshipID,
		edge.CreatedAt,
		edge.UpdatedAt,
	)
	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertEdge failed: %v", err))
	}
}

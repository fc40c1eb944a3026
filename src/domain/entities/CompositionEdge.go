package entities

import (
	"time"

	"github.com/google/uuid"
)

// É a "aresta" do grafo de composição: parent é composto por Quantity
// unidades de child. A identidade do nó é o product id; RelationshipID
// identifica a aresta, nunca o nó.
type CompositionEdge struct {
	ParentID       uuid.UUID `json:"parent_id"`
	ChildID        uuid.UUID `json:"child_id"`
	Quantity       float64   `json:"quantity"`
	RelationshipID string    `json:"relationship_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

package stubs

import (
	"time"

	"productbom/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

type EdgeStub struct {
	edge entities.CompositionEdge
}

func NewEdgeStub() EdgeStub {
	now := time.Now().UTC()

	edge := entities.CompositionEdge{
		ParentID:       uuid.New(),
		ChildID:        uuid.New(),
		Quantity:       float64(gofakeit.IntRange(1, 20)),
		RelationshipID: uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	return EdgeStub{edge: edge}
}

func (es EdgeStub) WithParentID(parentID uuid.UUID) EdgeStub {
	es.edge.ParentID = parentID
	return es
}

func (es EdgeStub) WithChildID(childID uuid.UUID) EdgeStub {
	es.edge.ChildID = childID
	return es
}

func (es EdgeStub) WithQuantity(quantity float64) EdgeStub {
	es.edge.Quantity = quantity
	return es
}

func (es EdgeStub) WithRelationshipID(relationshipID string) EdgeStub {
	es.edge.RelationshipID = relationshipID
	return es
}

func (es EdgeStub) Get() entities.CompositionEdge {
	return es.edge
}

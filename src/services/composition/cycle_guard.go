package composition

import (
	"context"
	"fmt"

	"productbom/src/domain"

	"github.com/google/uuid"
)

// AncestorSource é a única dependência do guard: o conjunto de produtos que
// contém um dado produto como componente.
type AncestorSource interface {
	AncestorsOf(ctx context.Context, productID uuid.UUID) (domain.AncestorSet, error)
}

// CycleGuard decide, antes de qualquer escrita, se a aresta proposta
// parent→child fecharia um ciclo. Procedimento puro sobre o estado atual do
// grafo; a rejeição de self-loop acontece antes, no orquestrador.
type CycleGuard struct {
	graph AncestorSource
}

func NewCycleGuard(graph AncestorSource) *CycleGuard {
	return &CycleGuard{graph: graph}
}

// WouldCreateCycle: a aresta parent→child fecha ciclo exatamente quando child
// já contém parent, ou seja, quando child aparece no conjunto de ancestrais
// (contêineres transitivos) de parent. Repetir uma associação existente não
// dispara o guard, então o upsert idempotente continua possível.
func (g *CycleGuard) WouldCreateCycle(ctx context.Context, parentID, childID uuid.UUID) (bool, error) {
	ancestors, err := g.graph.AncestorsOf(ctx, parentID)
	if err != nil {
		return false, fmt.Errorf("CycleGuard.WouldCreateCycle - failed to load ancestors of %s: %w", parentID, err)
	}

	return ancestors.Contains(childID), nil
}

package composition

import (
	"context"
	"fmt"

	"productbom/src/domain"
	"productbom/src/repositories"

	"github.com/google/uuid"
)

// GetDescendants devolve a BOM do produto: travessia descendente no graph
// store serializada em árvore. A leitura não tem isolamento de snapshot entre
// os dois stores; a árvore reflete o grafo no instante da travessia e os
// atributos no instante da montagem.
func (s *CompositionService) GetDescendants(ctx context.Context, rootID uuid.UUID, spec repositories.TraversalSpec) (*domain.BOMTree, error) {
	// Raiz precisa ser um produto vivo; componentes internos deletados ainda
	// aparecem em árvores históricas, mas não servem de ponto de partida.
	if _, err := s.products.FindByID(ctx, rootID); err != nil {
		return nil, fmt.Errorf("CompositionService.GetDescendants - root lookup failed: %w", err)
	}

	spec.Direction = repositories.DirectionDescendants

	rows, err := s.traversals.Traverse(ctx, rootID, spec)
	if err != nil {
		return nil, fmt.Errorf("CompositionService.GetDescendants - traversal failed: %w", err)
	}

	tree, err := s.serializer.Serialize(ctx, rootID, rows)
	if err != nil {
		return nil, fmt.Errorf("CompositionService.GetDescendants - serialization failed: %w", err)
	}

	return tree, nil
}

// GetAncestors devolve o conjunto plano de produtos que contêm rootID como
// componente, direta ou transitivamente.
func (s *CompositionService) GetAncestors(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("CompositionService.GetAncestors - product lookup failed: %w", err)
	}

	ancestors, err := s.graph.AncestorsOf(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("CompositionService.GetAncestors - ancestor walk failed: %w", err)
	}

	return ancestors.IDs(), nil
}

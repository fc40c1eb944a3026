package composition

import (
	"context"
	"fmt"

	"productbom/src/domain"
	"productbom/src/domain/entities"
	"productbom/src/services/events"

	"github.com/google/uuid"
)

// Associate cria (ou atualiza) a aresta de composição parent→child.
// Ordem das defesas: self-reference (independe do estado do grafo), endpoints
// existentes e não deletados, CycleGuard antes de qualquer escrita. Repetir a
// associação do mesmo par é sucesso idempotente: a quantidade é atualizada e
// o relationship id original é mantido. Nunca nascem arestas paralelas.
func (s *CompositionService) Associate(ctx context.Context, cmd domain.AssociateCommand) (entities.CompositionEdge, error) {
	if cmd.ParentID == cmd.ChildID {
		return entities.CompositionEdge{}, domain.NewError(domain.KindSelfReference,
			fmt.Sprintf("CompositionService.Associate - product %s cannot reference itself as a child", cmd.ParentID))
	}

	if _, err := s.products.FindByID(ctx, cmd.ParentID); err != nil {
		return entities.CompositionEdge{}, fmt.Errorf("CompositionService.Associate - parent lookup failed: %w", err)
	}
	if _, err := s.products.FindByID(ctx, cmd.ChildID); err != nil {
		return entities.CompositionEdge{}, fmt.Errorf("CompositionService.Associate - child lookup failed: %w", err)
	}

	cycle, err := s.cycleGuard.WouldCreateCycle(ctx, cmd.ParentID, cmd.ChildID)
	if err != nil {
		return entities.CompositionEdge{}, fmt.Errorf("CompositionService.Associate - cycle check failed: %w", err)
	}
	if cycle {
		return entities.CompositionEdge{}, domain.NewError(domain.KindCircularDependency,
			fmt.Sprintf("CompositionService.Associate - edge %s -> %s would create a circular dependency",
				cmd.ParentID, cmd.ChildID))
	}

	relationshipID := cmd.RelationshipID
	if relationshipID == "" {
		relationshipID = uuid.NewString()
	}

	edge := entities.CompositionEdge{
		ParentID:       cmd.ParentID,
		ChildID:        cmd.ChildID,
		Quantity:       cmd.Quantity,
		RelationshipID: relationshipID,
	}

	created, err := s.graph.UpsertEdge(ctx, edge)
	if err != nil {
		return entities.CompositionEdge{}, fmt.Errorf("CompositionService.Associate - edge upsert failed: %w", err)
	}

	s.invalidate(ctx, []uuid.UUID{cmd.ParentID, cmd.ChildID})

	if created {
		s.publish(ctx, events.NewCompositionAssociated(edge))
	}

	return edge, nil
}

// Disassociate remove a aresta parent→child. Remover uma aresta que não
// existe é NotFound, inclusive na segunda chamada seguida.
func (s *CompositionService) Disassociate(ctx context.Context, parentID, childID uuid.UUID) error {
	if err := s.graph.RemoveEdge(ctx, parentID, childID); err != nil {
		return fmt.Errorf("CompositionService.Disassociate - edge removal failed: %w", err)
	}

	s.invalidate(ctx, []uuid.UUID{parentID, childID})
	s.publish(ctx, events.NewCompositionDisassociated(parentID, childID))

	return nil
}

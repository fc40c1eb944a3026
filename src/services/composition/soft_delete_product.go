package composition

import (
	"context"
	"errors"
	"fmt"

	"productbom/src/domain"
	"productbom/src/domain/entities"
	"productbom/src/services/events"

	"github.com/google/uuid"
)

// SoftDelete marca o documento como deletado. Sem cascade, o nó e as arestas
// ficam como estão: a BOM histórica continua consultável. Com cascade, as
// arestas de descendentes de posse exclusiva são destacadas; um descendente
// que tem outro pai mantém todas as suas arestas e interrompe a caminhada.
// Documentos de descendentes nunca são deletados pela cascata.
//
// Disciplina compensatória: o plano de destacamento é calculado antes,
// removido aresta a aresta depois do soft delete; se o destacamento falhar no
// meio, as arestas já removidas são recriadas e o documento restaurado. Falha
// da própria compensação vira InconsistentState.
func (s *CompositionService) SoftDelete(ctx context.Context, id uuid.UUID, cascade bool) error {
	var plan []entities.CompositionEdge
	if cascade {
		var err error
		plan, err = s.planExclusiveDetach(ctx, id)
		if err != nil {
			return fmt.Errorf("CompositionService.SoftDelete - cascade planning failed: %w", err)
		}
	}

	if err := s.products.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("CompositionService.SoftDelete - document delete failed: %w", err)
	}

	touched := []uuid.UUID{id}

	if cascade {
		removed := make([]entities.CompositionEdge, 0, len(plan))

		for _, edge := range plan {
			if err := s.graph.RemoveEdge(ctx, edge.ParentID, edge.ChildID); err != nil {
				// Aresta sumiu por concorrência: nada a desfazer para ela.
				if domain.IsKind(err, domain.KindNotFound) {
					continue
				}
				return s.compensateDetach(ctx, id, removed, err)
			}
			removed = append(removed, edge)
			touched = append(touched, edge.ChildID)
		}
	}

	s.invalidate(ctx, touched)
	s.publish(ctx, events.NewProductDeleted(id, cascade))

	return nil
}

// planExclusiveDetach caminha em largura a partir de rootID e coleta as
// arestas cuja remoção a cascata pede: só arestas para filhos dos quais este
// caminho é o único pai. A recursão continua apenas através desses filhos.
func (s *CompositionService) planExclusiveDetach(ctx context.Context, rootID uuid.UUID) ([]entities.CompositionEdge, error) {
	var plan []entities.CompositionEdge

	queue := []uuid.UUID{rootID}
	visited := map[uuid.UUID]struct{}{rootID: {}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		edges, err := s.graph.ChildEdges(ctx, current)
		if err != nil {
			return nil, err
		}

		for _, edge := range edges {
			count, err := s.graph.ParentCount(ctx, edge.ChildID)
			if err != nil {
				return nil, err
			}
			if count > 1 {
				// Filho com outros pais fica intacto.
				continue
			}

			plan = append(plan, edge)

			if _, ok := visited[edge.ChildID]; !ok {
				visited[edge.ChildID] = struct{}{}
				queue = append(queue, edge.ChildID)
			}
		}
	}

	return plan, nil
}

// compensateDetach desfaz um destacamento parcial: recria as arestas já
// removidas e restaura o documento. Roda mesmo com o ctx cancelado.
func (s *CompositionService) compensateDetach(ctx context.Context, id uuid.UUID, removed []entities.CompositionEdge, cause error) error {
	compCtx := context.WithoutCancel(ctx)

	for _, edge := range removed {
		if _, compErr := s.graph.UpsertEdge(compCtx, edge); compErr != nil {
			s.logger.Error("CompositionService.SoftDelete - compensation failed, stores diverged",
				"product_id", id, "detach_error", cause, "compensation_error", compErr)
			return domain.WrapError(domain.KindInconsistentState,
				fmt.Sprintf("CompositionService.SoftDelete - cascade detach and compensation both failed for %s", id),
				errors.Join(cause, compErr))
		}
	}

	if compErr := s.products.Restore(compCtx, id); compErr != nil {
		s.logger.Error("CompositionService.SoftDelete - document restore failed, stores diverged",
			"product_id", id, "detach_error", cause, "compensation_error", compErr)
		return domain.WrapError(domain.KindInconsistentState,
			fmt.Sprintf("CompositionService.SoftDelete - cascade detach failed and document restore failed for %s", id),
			errors.Join(cause, compErr))
	}

	return domain.WrapError(domain.KindGraphWriteFailed,
		fmt.Sprintf("CompositionService.SoftDelete - cascade detach failed for %s, changes rolled back", id), cause)
}

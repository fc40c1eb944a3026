package composition

import (
	"context"
	"errors"
	"fmt"

	"productbom/src/domain"
	"productbom/src/domain/entities"
	"productbom/src/services/events"
)

// Create insere o documento do produto e espelha o nó no grafo. Não existe
// transação atravessando os dois stores: se o espelhamento falhar, o documento
// recém inserido é desfeito por compensação e o chamador recebe
// GraphWriteFailed. A compensação roda no máximo uma vez; se ela própria
// falhar, o erro vira InconsistentState para reconciliação do operador.
func (s *CompositionService) Create(ctx context.Context, cmd domain.CreateProductCommand) (entities.Product, error) {
	// Regra de negócio, não de formato: o boundary já validou o shape.
	if !cmd.ProductType.IsValid() {
		return entities.Product{}, domain.NewError(domain.KindInvalidProductType,
			fmt.Sprintf("CompositionService.Create - product type %d is not allowed", cmd.ProductType))
	}

	product, err := s.products.Insert(ctx, cmd)
	if err != nil {
		// DuplicateKey sobe direto; o grafo nunca foi tocado.
		return entities.Product{}, fmt.Errorf("CompositionService.Create - document insert failed: %w", err)
	}

	if err := s.graph.UpsertNode(ctx, product.ID); err != nil {
		// Mesmo com o ctx cancelado a compensação precisa rodar: documento
		// sem nó espelhado não pode sobrar.
		compCtx := context.WithoutCancel(ctx)

		if compErr := s.products.SoftDelete(compCtx, product.ID); compErr != nil {
			s.logger.Error("CompositionService.Create - compensation failed, stores diverged",
				"product_id", product.ID, "mirror_error", err, "compensation_error", compErr)
			return entities.Product{}, domain.WrapError(domain.KindInconsistentState,
				fmt.Sprintf("CompositionService.Create - node mirror and compensation both failed for %s", product.ID),
				errors.Join(err, compErr))
		}

		return entities.Product{}, domain.WrapError(domain.KindGraphWriteFailed,
			fmt.Sprintf("CompositionService.Create - node mirror failed for %s, document rolled back", product.ID), err)
	}

	s.publish(ctx, events.NewProductCreated(product))

	return product, nil
}

package composition

import (
	"context"
	"fmt"

	"productbom/src/domain"
	"productbom/src/domain/entities"
	"productbom/src/services/events"

	"github.com/google/uuid"
)

// Update substitui os campos mutáveis do produto. O nó do grafo carrega só o
// id, então o espelhamento de update é no-op. O cache de travessia também não
// é tocado: árvores cacheadas guardam apenas ids e os rótulos são resolvidos
// na serialização.
func (s *CompositionService) Update(ctx context.Context, id uuid.UUID, cmd domain.UpdateProductCommand) (entities.Product, error) {
	if !cmd.ProductType.IsValid() {
		return entities.Product{}, domain.NewError(domain.KindInvalidProductType,
			fmt.Sprintf("CompositionService.Update - product type %d is not allowed", cmd.ProductType))
	}

	if err := s.products.Update(ctx, id, cmd); err != nil {
		return entities.Product{}, fmt.Errorf("CompositionService.Update - document update failed: %w", err)
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return entities.Product{}, fmt.Errorf("CompositionService.Update - reload after update failed: %w", err)
	}

	s.publish(ctx, events.NewProductUpdated(product))

	return product, nil
}

// FindByID expõe a leitura simples do documento (exclui deletados).
func (s *CompositionService) FindByID(ctx context.Context, id uuid.UUID) (entities.Product, error) {
	return s.products.FindByID(ctx, id)
}

// Paginate expõe a busca paginada sobre produtos não deletados.
func (s *CompositionService) Paginate(ctx context.Context, query domain.PageQuery) (domain.ProductPage, error) {
	return s.products.Paginate(ctx, query)
}

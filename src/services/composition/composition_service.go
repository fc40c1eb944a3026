package composition

import (
	"context"
	"log/slog"

	"productbom/src/domain"
	"productbom/src/domain/entities"
	"productbom/src/repositories"
	"productbom/src/services/events"

	"github.com/google/uuid"
)

// ProductStore é o contrato que o orquestrador exige do document store.
type ProductStore interface {
	Insert(ctx context.Context, cmd domain.CreateProductCommand) (entities.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (entities.Product, error)
	Update(ctx context.Context, id uuid.UUID, cmd domain.UpdateProductCommand) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error
	Paginate(ctx context.Context, query domain.PageQuery) (domain.ProductPage, error)
	FindByIDsAnyState(ctx context.Context, ids []uuid.UUID) ([]entities.Product, error)
}

// GraphStore é o contrato exigido do graph store.
type GraphStore interface {
	UpsertNode(ctx context.Context, productID uuid.UUID) error
	UpsertEdge(ctx context.Context, edge entities.CompositionEdge) (created bool, err error)
	RemoveEdge(ctx context.Context, parentID, childID uuid.UUID) error
	AncestorsOf(ctx context.Context, productID uuid.UUID) (domain.AncestorSet, error)
	ChildEdges(ctx context.Context, parentID uuid.UUID) ([]entities.CompositionEdge, error)
	ParentCount(ctx context.Context, childID uuid.UUID) (int, error)
}

// TraversalReader separa a leitura de travessia do resto do graph store para
// que a variante cacheada possa decorar só ela.
type TraversalReader interface {
	Traverse(ctx context.Context, rootID uuid.UUID, spec repositories.TraversalSpec) ([]repositories.TraversalRow, error)
}

type CacheInvalidator interface {
	InvalidateByProductIDs(ctx context.Context, productIDs []uuid.UUID) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

// CompositionService coordena o document store e o graph store. Operações
// multi-passo usam ação compensatória, nunca transação distribuída.
type CompositionService struct {
	logger     *slog.Logger
	products   ProductStore
	graph      GraphStore
	traversals TraversalReader
	cache      CacheInvalidator
	publisher  EventPublisher
	cycleGuard *CycleGuard
	serializer *TreeSerializer
}

func NewCompositionService(
	logger *slog.Logger,
	products ProductStore,
	graph GraphStore,
	traversals TraversalReader,
	cache CacheInvalidator,
	publisher EventPublisher,
) *CompositionService {
	return &CompositionService{
		logger:     logger,
		products:   products,
		graph:      graph,
		traversals: traversals,
		cache:      cache,
		publisher:  publisher,
		cycleGuard: NewCycleGuard(graph),
		serializer: NewTreeSerializer(products),
	}
}

// publish é sempre best-effort: evento não faz parte do invariante dos stores.
func (s *CompositionService) publish(ctx context.Context, event events.DomainEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("CompositionService - event publish failed",
			"event_type", event.EventType, "product_id", event.ProductID, "error", err)
	}
}

// invalidate derruba árvores cacheadas que contenham qualquer produto tocado.
func (s *CompositionService) invalidate(ctx context.Context, productIDs []uuid.UUID) {
	if err := s.cache.InvalidateByProductIDs(ctx, productIDs); err != nil {
		s.logger.Warn("CompositionService - cache invalidation failed",
			"products", len(productIDs), "error", err)
	}
}

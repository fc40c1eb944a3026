package composition_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"productbom/src/domain"
	"productbom/src/domain/entities"
	"productbom/src/repositories"
	"productbom/src/services/events"

	"github.com/google/uuid"
)

// fakeProductStore guarda produtos em memória com a mesma semântica do
// document store real: unicidade de code só entre não deletados, FindByID
// enxerga só vivos, FindByIDsAnyState enxerga todos.
type fakeProductStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]entities.Product

	insertErr     error
	updateErr     error
	softDeleteErr error
	restoreErr    error
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[uuid.UUID]entities.Product{}}
}

func (f *fakeProductStore) Insert(ctx context.Context, cmd domain.CreateProductCommand) (entities.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.insertErr != nil {
		return entities.Product{}, f.insertErr
	}

	for _, existing := range f.products {
		if !existing.Deleted && existing.Code == cmd.Code {
			return entities.Product{}, domain.NewError(domain.KindDuplicateKey,
				fmt.Sprintf("fakeProductStore.Insert - code %s already in use", cmd.Code))
		}
	}

	product := entities.Product{
		ID:            uuid.New(),
		Code:          cmd.Code,
		Name:          cmd.Name,
		Family:        cmd.Family,
		ProductType:   cmd.ProductType,
		Description:   cmd.Description,
		AmountInStock: cmd.AmountInStock,
		Unit:          cmd.Unit,
		LeadTime:      cmd.LeadTime,
		PurchasePrice: cmd.PurchasePrice,
	}
	f.products[product.ID] = product

	return product, nil
}

func (f *fakeProductStore) FindByID(ctx context.Context, id uuid.UUID) (entities.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[id]
	if !ok || product.Deleted {
		return entities.Product{}, domain.NewError(domain.KindNotFound,
			fmt.Sprintf("fakeProductStore.FindByID - product %s not found", id))
	}
	return product, nil
}

func (f *fakeProductStore) Update(ctx context.Context, id uuid.UUID, cmd domain.UpdateProductCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}

	product, ok := f.products[id]
	if !ok || product.Deleted {
		return domain.NewError(domain.KindNotFound,
			fmt.Sprintf("fakeProductStore.Update - product %s not found", id))
	}

	for otherID, existing := range f.products {
		if otherID != id && !existing.Deleted && existing.Code == cmd.Code {
			return domain.NewError(domain.KindDuplicateKey,
				fmt.Sprintf("fakeProductStore.Update - code %s already in use", cmd.Code))
		}
	}

	product.Code = cmd.Code
	product.Name = cmd.Name
	product.Family = cmd.Family
	product.ProductType = cmd.ProductType
	product.Description = cmd.Description
	product.AmountInStock = cmd.AmountInStock
	product.Unit = cmd.Unit
	product.LeadTime = cmd.LeadTime
	product.PurchasePrice = cmd.PurchasePrice
	f.products[id] = product

	return nil
}

func (f *fakeProductStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.softDeleteErr != nil {
		return f.softDeleteErr
	}

	product, ok := f.products[id]
	if !ok || product.Deleted {
		return domain.NewError(domain.KindNotFound,
			fmt.Sprintf("fakeProductStore.SoftDelete - product %s not found", id))
	}

	product.Deleted = true
	f.products[id] = product
	return nil
}

func (f *fakeProductStore) Restore(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.restoreErr != nil {
		return f.restoreErr
	}

	product, ok := f.products[id]
	if !ok {
		return domain.NewError(domain.KindNotFound,
			fmt.Sprintf("fakeProductStore.Restore - product %s not found", id))
	}

	product.Deleted = false
	f.products[id] = product
	return nil
}

func (f *fakeProductStore) Paginate(ctx context.Context, query domain.PageQuery) (domain.ProductPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var items []entities.Product
	for _, product := range f.products {
		if product.Deleted {
			continue
		}
		if query.Family != "" && (product.Family == nil || *product.Family != query.Family) {
			continue
		}
		if query.ProductType != 0 && product.ProductType != query.ProductType {
			continue
		}
		items = append(items, product)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })

	return domain.ProductPage{
		Items: items,
		Total: int64(len(items)),
		Page:  query.Page,
		Limit: query.Limit,
	}, nil
}

func (f *fakeProductStore) FindByIDsAnyState(ctx context.Context, ids []uuid.UUID) ([]entities.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var found []entities.Product
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			found = append(found, product)
		}
	}
	return found, nil
}

// seed injeta um produto direto no estado interno, fora do caminho Insert.
func (f *fakeProductStore) seed(product entities.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[product.ID] = product
}

type fakeEdgeKey struct {
	parentID uuid.UUID
	childID  uuid.UUID
}

// fakeGraphStore é o lado grafo em memória. Também implementa Traverse para
// servir de TraversalReader nos testes do orquestrador.
type fakeGraphStore struct {
	mu    sync.Mutex
	nodes map[uuid.UUID]struct{}
	edges map[fakeEdgeKey]entities.CompositionEdge

	upsertNodeErr error
	upsertEdgeErr error

	// removeEdgeFailAt > 0 faz a n-ésima chamada de RemoveEdge falhar.
	removeEdgeFailAt int
	removeEdgeCalls  int

	// traverseRows, quando setado, substitui a caminhada real.
	traverseRows []repositories.TraversalRow
}

func newFakeGraphStore() *fakeGraphStore {
	return &fakeGraphStore{
		nodes: map[uuid.UUID]struct{}{},
		edges: map[fakeEdgeKey]entities.CompositionEdge{},
	}
}

func (f *fakeGraphStore) UpsertNode(ctx context.Context, productID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertNodeErr != nil {
		return f.upsertNodeErr
	}
	f.nodes[productID] = struct{}{}
	return nil
}

func (f *fakeGraphStore) UpsertEdge(ctx context.Context, edge entities.CompositionEdge) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertEdgeErr != nil {
		return false, f.upsertEdgeErr
	}

	key := fakeEdgeKey{parentID: edge.ParentID, childID: edge.ChildID}
	existing, ok := f.edges[key]
	if ok {
		existing.Quantity = edge.Quantity
		f.edges[key] = existing
		return false, nil
	}

	f.nodes[edge.ParentID] = struct{}{}
	f.nodes[edge.ChildID] = struct{}{}
	f.edges[key] = edge
	return true, nil
}

func (f *fakeGraphStore) RemoveEdge(ctx context.Context, parentID, childID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removeEdgeCalls++
	if f.removeEdgeFailAt > 0 && f.removeEdgeCalls == f.removeEdgeFailAt {
		return domain.NewError(domain.KindStoreUnavailable, "fakeGraphStore.RemoveEdge - forced failure")
	}

	key := fakeEdgeKey{parentID: parentID, childID: childID}
	if _, ok := f.edges[key]; !ok {
		return domain.NewError(domain.KindNotFound,
			fmt.Sprintf("fakeGraphStore.RemoveEdge - edge %s -> %s not found", parentID, childID))
	}
	delete(f.edges, key)
	return nil
}

func (f *fakeGraphStore) AncestorsOf(ctx context.Context, productID uuid.UUID) (domain.AncestorSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ancestors := domain.AncestorSet{}
	queue := []uuid.UUID{productID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for key := range f.edges {
			if key.childID != current {
				continue
			}
			if ancestors.Contains(key.parentID) {
				continue
			}
			ancestors[key.parentID] = struct{}{}
			queue = append(queue, key.parentID)
		}
	}
	return ancestors, nil
}

func (f *fakeGraphStore) ChildEdges(ctx context.Context, parentID uuid.UUID) ([]entities.CompositionEdge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var edges []entities.CompositionEdge
	for key, edge := range f.edges {
		if key.parentID == parentID {
			edges = append(edges, edge)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ChildID.String() < edges[j].ChildID.String() })
	return edges, nil
}

func (f *fakeGraphStore) ParentCount(ctx context.Context, childID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for key := range f.edges {
		if key.childID == childID {
			count++
		}
	}
	return count, nil
}

func (f *fakeGraphStore) Traverse(ctx context.Context, rootID uuid.UUID, spec repositories.TraversalSpec) ([]repositories.TraversalRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.traverseRows != nil {
		return f.traverseRows, nil
	}

	if _, ok := f.nodes[rootID]; !ok {
		return nil, domain.NewError(domain.KindNotFound,
			fmt.Sprintf("fakeGraphStore.Traverse - node %s not found", rootID))
	}

	var rows []repositories.TraversalRow
	type frame struct {
		id    uuid.UUID
		depth int
	}
	queue := []frame{{id: rootID, depth: 0}}
	emitted := map[fakeEdgeKey]struct{}{}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		var outgoing []entities.CompositionEdge
		for key, edge := range f.edges {
			if key.parentID == current.id {
				outgoing = append(outgoing, edge)
			}
		}
		sort.Slice(outgoing, func(i, j int) bool {
			return outgoing[i].ChildID.String() < outgoing[j].ChildID.String()
		})

		for _, edge := range outgoing {
			key := fakeEdgeKey{parentID: edge.ParentID, childID: edge.ChildID}
			if _, ok := emitted[key]; ok {
				continue
			}
			emitted[key] = struct{}{}
			rows = append(rows, repositories.TraversalRow{
				ParentID:       edge.ParentID,
				ChildID:        edge.ChildID,
				Quantity:       edge.Quantity,
				RelationshipID: edge.RelationshipID,
				Depth:          current.depth + 1,
			})
			queue = append(queue, frame{id: edge.ChildID, depth: current.depth + 1})
		}
	}

	return rows, nil
}

func (f *fakeGraphStore) hasEdge(parentID, childID uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.edges[fakeEdgeKey{parentID: parentID, childID: childID}]
	return ok
}

func (f *fakeGraphStore) edgeQuantity(parentID, childID uuid.UUID) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.edges[fakeEdgeKey{parentID: parentID, childID: childID}].Quantity
}

func (f *fakeGraphStore) edgeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edges)
}

type fakeCacheInvalidator struct {
	mu          sync.Mutex
	invalidated [][]uuid.UUID
}

func (f *fakeCacheInvalidator) InvalidateByProductIDs(ctx context.Context, productIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, productIDs)
	return nil
}

type fakeEventPublisher struct {
	mu        sync.Mutex
	published []events.DomainEvent
}

func (f *fakeEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, event)
	return nil
}

func (f *fakeEventPublisher) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.published))
	for _, event := range f.published {
		types = append(types, event.EventType)
	}
	return types
}

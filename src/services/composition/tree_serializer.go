package composition

import (
	"context"
	"fmt"

	"productbom/src/domain"
	"productbom/src/domain/entities"
	"productbom/src/repositories"

	"github.com/google/uuid"
)

// serializerDepthCeiling é a defesa em profundidade da serialização: o
// CycleGuard impede ciclos na escrita, mas dado importado por fora pode
// violar isso e a montagem da árvore não pode travar por causa disso.
const serializerDepthCeiling = 100

// ProductLabelSource é o pedaço do document store que a serialização precisa:
// resolver code/name por id, incluindo produtos deletados.
type ProductLabelSource interface {
	FindByIDsAnyState(ctx context.Context, ids []uuid.UUID) ([]entities.Product, error)
}

// TreeSerializer transforma o resultado plano de uma travessia na BOMTree
// aninhada servida aos clientes. Os atributos de produto são buscados no
// document store na hora da montagem, incluindo produtos já deletados que
// continuem referenciados por arestas históricas.
type TreeSerializer struct {
	products ProductLabelSource
}

func NewTreeSerializer(products ProductLabelSource) *TreeSerializer {
	return &TreeSerializer{products: products}
}

type edgeKey struct {
	parentID uuid.UUID
	childID  uuid.UUID
}

// Serialize monta a árvore a partir de rootID e das arestas visitadas.
// Cada nó emitido ganha um instance id novo: o mesmo produto pode aparecer em
// mais de um ramo e cada aparição é uma instância distinta. Um conjunto de
// arestas visitadas por caminho detecta ciclo residual e devolve
// StructuralInconsistency em vez de recursão infinita.
func (ts *TreeSerializer) Serialize(ctx context.Context, rootID uuid.UUID, rows []repositories.TraversalRow) (*domain.BOMTree, error) {
	labels, err := ts.loadLabels(ctx, rootID, rows)
	if err != nil {
		return nil, fmt.Errorf("TreeSerializer.Serialize - failed to load product labels: %w", err)
	}

	index := make(map[uuid.UUID][]repositories.TraversalRow)
	seen := make(map[edgeKey]struct{}, len(rows))
	for _, row := range rows {
		key := edgeKey{parentID: row.ParentID, childID: row.ChildID}
		if _, ok := seen[key]; ok {
			// A mesma aresta pode sair mais de uma vez da travessia quando
			// há losango no grafo; a aresta entra no índice uma única vez.
			continue
		}
		seen[key] = struct{}{}
		index[row.ParentID] = append(index[row.ParentID], row)
	}

	root := &domain.BOMTree{
		InstanceID: uuid.NewString(),
		Label:      labels[rootID],
		Data:       domain.BOMNodeData{ProductID: rootID},
	}

	path := make(map[edgeKey]struct{})
	if err := ts.attachChildren(root, rootID, index, labels, path, 1); err != nil {
		return nil, err
	}

	return root, nil
}

func (ts *TreeSerializer) attachChildren(
	node *domain.BOMTree,
	productID uuid.UUID,
	index map[uuid.UUID][]repositories.TraversalRow,
	labels map[uuid.UUID]string,
	path map[edgeKey]struct{},
	depth int,
) error {
	node.Children = []*domain.BOMTree{}

	if depth > serializerDepthCeiling {
		return domain.NewError(domain.KindStructuralInconsistency,
			fmt.Sprintf("TreeSerializer - depth ceiling exceeded under product %s", productID))
	}

	for _, row := range index[productID] {
		key := edgeKey{parentID: row.ParentID, childID: row.ChildID}
		if _, ok := path[key]; ok {
			return domain.NewError(domain.KindStructuralInconsistency,
				fmt.Sprintf("TreeSerializer - edge %s -> %s revisited on the same path, graph data is cyclic",
					row.ParentID, row.ChildID))
		}

		quantity := row.Quantity
		child := &domain.BOMTree{
			InstanceID: uuid.NewString(),
			Label:      labels[row.ChildID],
			Data: domain.BOMNodeData{
				ProductID:      row.ChildID,
				Quantity:       &quantity,
				RelationshipID: row.RelationshipID,
			},
		}

		path[key] = struct{}{}
		if err := ts.attachChildren(child, row.ChildID, index, labels, path, depth+1); err != nil {
			return err
		}
		delete(path, key)

		node.Children = append(node.Children, child)
	}

	return nil
}

func (ts *TreeSerializer) loadLabels(ctx context.Context, rootID uuid.UUID, rows []repositories.TraversalRow) (map[uuid.UUID]string, error) {
	idSet := map[uuid.UUID]struct{}{rootID: {}}
	for _, row := range rows {
		idSet[row.ParentID] = struct{}{}
		idSet[row.ChildID] = struct{}{}
	}

	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	products, err := ts.products.FindByIDsAnyState(ctx, ids)
	if err != nil {
		return nil, err
	}

	labels := make(map[uuid.UUID]string, len(ids))
	for _, product := range products {
		labels[product.ID] = fmt.Sprintf("%s - %s", product.Code, product.Name)
	}

	// Nó sem documento (removido por fora): o rótulo degrada para o id.
	for id := range idSet {
		if _, ok := labels[id]; !ok {
			labels[id] = id.String()
		}
	}

	return labels, nil
}

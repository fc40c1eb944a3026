package repositories

import (
	"context"
	"fmt"

	"productbom/src/domain"
	"productbom/src/domain/entities"
	"productbom/src/infra/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Direction diz em que sentido uma travessia anda. É parâmetro explícito de
// cada chamada, nunca default de construtor.
type Direction string

const (
	DirectionDescendants Direction = "descendants"
	DirectionAncestors   Direction = "ancestors"
)

// hardDepthCeiling limita qualquer caminhada recursiva. MaxDepth = 0 significa
// "sem limite configurado", mas o teto absoluto continua valendo para que dado
// cíclico importado por fora nunca trave uma query.
const hardDepthCeiling = 100

type TraversalSpec struct {
	Direction           Direction
	MaxDepth            int // 0 = sem limite configurado
	MaxSiblingsPerLevel int // 0 = sem limite
}

func (ts TraversalSpec) effectiveDepth() int {
	if ts.MaxDepth <= 0 || ts.MaxDepth > hardDepthCeiling {
		return hardDepthCeiling
	}
	return ts.MaxDepth
}

// TraversalRow é uma aresta visitada: relação pai→filho com os dados da
// relação. Atributos de produto não vêm daqui; o graph store só conhece IDs.
type TraversalRow struct {
	ParentID       uuid.UUID `json:"parent_id"`
	ChildID        uuid.UUID `json:"child_id"`
	Quantity       float64   `json:"quantity"`
	RelationshipID string    `json:"relationship_id"`
	Depth          int       `json:"depth"`
}

// GraphRepository é o lado "graph store": espelha produtos como nós e guarda
// as arestas de composição.
type GraphRepository struct {
	pool *pgxpool.Pool
}

func NewGraphRepository(pool *pgxpool.Pool) *GraphRepository {
	return &GraphRepository{pool: pool}
}

// UpsertNode espelha o produto como nó. Idempotente: repetir a chamada não é
// erro nem muda nada.
func (gr *GraphRepository) UpsertNode(ctx context.Context, productID uuid.UUID) error {
	query := `INSERT INTO graph_nodes (product_id) VALUES ($1) ON CONFLICT (product_id) DO NOTHING`

	if _, err := gr.pool.Exec(ctx, query, productID); err != nil {
		return domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.UpsertNode - upsert failed", err)
	}
	return nil
}

// UpsertEdge cria a aresta pai→filho ou, se o par já existe, atualiza a
// quantidade mantendo o relationship_id original. O conflito é resolvido pelo
// par (parent_id, child_id): duas chamadas concorrentes para o mesmo par nunca
// produzem arestas paralelas.
func (gr *GraphRepository) UpsertEdge(ctx context.Context, edge entities.CompositionEdge) (created bool, err error) {
	query := `
		INSERT INTO composition_edges (parent_id, child_id, quantity, relationship_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (parent_id, child_id) DO UPDATE SET
			quantity = excluded.quantity,
			updated_at = NOW()
		RETURNING (xmax = 0)`

	err = gr.pool.QueryRow(ctx, query, edge.ParentID, edge.ChildID, edge.Quantity, edge.RelationshipID).Scan(&created)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return false, domain.WrapError(domain.KindNotFound,
				"GraphRepository.UpsertEdge - one of the endpoint nodes does not exist", err)
		}
		return false, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.UpsertEdge - upsert failed", err)
	}

	return created, nil
}

func (gr *GraphRepository) RemoveEdge(ctx context.Context, parentID, childID uuid.UUID) error {
	query := `DELETE FROM composition_edges WHERE parent_id = $1 AND child_id = $2`

	tag, err := gr.pool.Exec(ctx, query, parentID, childID)
	if err != nil {
		return domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.RemoveEdge - delete failed", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewError(domain.KindNotFound,
			fmt.Sprintf("GraphRepository.RemoveEdge - edge %s -> %s not found", parentID, childID))
	}

	return nil
}

// AncestorsOf retorna todo produto que, direta ou transitivamente, contém
// productID como componente. O próprio productID não entra no conjunto.
func (gr *GraphRepository) AncestorsOf(ctx context.Context, productID uuid.UUID) (domain.AncestorSet, error) {
	query := `
		WITH RECURSIVE ancestor_walk (ancestor_id, depth) AS (
			SELECT e.parent_id, 1
			FROM composition_edges e
			WHERE e.child_id = $1

			UNION

			SELECT e.parent_id, aw.depth + 1
			FROM composition_edges e
			JOIN ancestor_walk aw ON e.child_id = aw.ancestor_id
			WHERE aw.depth < $2
		)
		SELECT DISTINCT ancestor_id FROM ancestor_walk`

	rows, err := gr.pool.Query(ctx, query, productID, hardDepthCeiling)
	if err != nil {
		return nil, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.AncestorsOf - query failed", err)
	}
	defer rows.Close()

	ancestors := domain.AncestorSet{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.AncestorsOf - scan failed", err)
		}
		ancestors[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.AncestorsOf - rows failed", err)
	}

	return ancestors, nil
}

// Traverse caminha a partir de rootID e devolve as arestas visitadas em ordem
// de profundidade. A direção vem do spec; o corte de irmãos por nível é
// aplicado por pai, ordenado pela criação da aresta.
func (gr *GraphRepository) Traverse(ctx context.Context, rootID uuid.UUID, spec TraversalSpec) ([]TraversalRow, error) {
	var exists bool
	err := gr.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM graph_nodes WHERE product_id = $1)`, rootID).Scan(&exists)
	if err != nil {
		return nil, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.Traverse - node lookup failed", err)
	}
	if !exists {
		return nil, domain.NewError(domain.KindNotFound,
			fmt.Sprintf("GraphRepository.Traverse - node %s not found", rootID))
	}

	// O termo recursivo anda de child para parent quando a direção é
	// ancestors; o formato das linhas devolvidas é o mesmo.
	startColumn, stepColumn := "parent_id", "child_id"
	if spec.Direction == DirectionAncestors {
		startColumn, stepColumn = "child_id", "parent_id"
	}

	query := fmt.Sprintf(`
		WITH RECURSIVE composition_walk (parent_id, child_id, quantity, relationship_id, edge_created_at, depth) AS (
			SELECT e.parent_id, e.child_id, e.quantity, e.relationship_id, e.created_at, 1
			FROM composition_edges e
			WHERE e.%s = $1

			UNION

			SELECT e.parent_id, e.child_id, e.quantity, e.relationship_id, e.created_at, cw.depth + 1
			FROM composition_edges e
			JOIN composition_walk cw ON e.%s = cw.%s
			WHERE cw.depth < $2
		)
		SELECT parent_id, child_id, quantity, relationship_id, depth
		FROM (
			SELECT cw.*,
			       ROW_NUMBER() OVER (PARTITION BY cw.parent_id ORDER BY cw.edge_created_at, cw.child_id) AS sibling_rank
			FROM composition_walk cw
		) ranked
		WHERE $3 = 0 OR sibling_rank <= $3
		ORDER BY depth, parent_id, sibling_rank`, startColumn, startColumn, stepColumn)

	rows, err := gr.pool.Query(ctx, query, rootID, spec.effectiveDepth(), spec.MaxSiblingsPerLevel)
	if err != nil {
		return nil, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.Traverse - query failed", err)
	}
	defer rows.Close()

	result := []TraversalRow{}
	for rows.Next() {
		var row TraversalRow
		if err := rows.Scan(&row.ParentID, &row.ChildID, &row.Quantity, &row.RelationshipID, &row.Depth); err != nil {
			return nil, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.Traverse - scan failed", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.Traverse - rows failed", err)
	}

	return result, nil
}

// ChildEdges retorna as arestas diretas saindo de parentID.
func (gr *GraphRepository) ChildEdges(ctx context.Context, parentID uuid.UUID) ([]entities.CompositionEdge, error) {
	query := `
		SELECT parent_id, child_id, quantity, relationship_id, created_at, updated_at
		FROM composition_edges
		WHERE parent_id = $1
		ORDER BY created_at`

	rows, err := gr.pool.Query(ctx, query, parentID)
	if err != nil {
		return nil, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.ChildEdges - query failed", err)
	}
	defer rows.Close()

	edges := []entities.CompositionEdge{}
	for rows.Next() {
		var e entities.CompositionEdge
		if err := rows.Scan(&e.ParentID, &e.ChildID, &e.Quantity, &e.RelationshipID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.ChildEdges - scan failed", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.ChildEdges - rows failed", err)
	}

	return edges, nil
}

// ParentCount conta quantos pais diretos childID tem. Usado pela cascata de
// delete para decidir se um filho é de posse exclusiva.
func (gr *GraphRepository) ParentCount(ctx context.Context, childID uuid.UUID) (int, error) {
	var count int
	err := gr.pool.QueryRow(ctx, `SELECT COUNT(*) FROM composition_edges WHERE child_id = $1`, childID).Scan(&count)
	if err != nil {
		return 0, domain.WrapError(domain.KindStoreUnavailable, "GraphRepository.ParentCount - query failed", err)
	}
	return count, nil
}

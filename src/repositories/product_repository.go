package repositories

import (
	"context"
	"fmt"
	"strings"

	"productbom/src/domain"
	"productbom/src/domain/entities"
	"productbom/src/infra/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductRepository é o lado "document store" do sistema: o registro
// autoritativo dos produtos. Todas as leituras e mutações normais enxergam
// apenas registros não deletados; um registro deletado se comporta como
// ausente (NotFound) para update/delete/find.
type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, code, name, family, product_type, description, amount_in_stock, unit, lead_time, purchase_price, deleted, created_at, updated_at`

func scanProduct(row pgx.Row) (entities.Product, error) {
	var p entities.Product
	err := row.Scan(
		&p.ID,
		&p.Code,
		&p.Name,
		&p.Family,
		&p.ProductType,
		&p.Description,
		&p.AmountInStock,
		&p.Unit,
		&p.LeadTime,
		&p.PurchasePrice,
		&p.Deleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

func (pr *ProductRepository) Insert(ctx context.Context, cmd domain.CreateProductCommand) (entities.Product, error) {
	query := `
		INSERT INTO products (code, name, family, product_type, description, amount_in_stock, unit, lead_time, purchase_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + productColumns

	row := pr.pool.QueryRow(ctx, query,
		cmd.Code,
		cmd.Name,
		postgres.NewNullString(cmd.Family),
		int16(cmd.ProductType),
		postgres.NewNullString(cmd.Description),
		cmd.AmountInStock,
		cmd.Unit,
		cmd.LeadTime,
		cmd.PurchasePrice,
	)

	product, err := scanProduct(row)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return entities.Product{}, domain.WrapError(domain.KindDuplicateKey,
				fmt.Sprintf("ProductRepository.Insert - code %q already in use", cmd.Code), err)
		}
		return entities.Product{}, domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.Insert - insert failed", err)
	}

	return product, nil
}

func (pr *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (entities.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND deleted = FALSE`

	product, err := scanProduct(pr.pool.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return entities.Product{}, domain.WrapError(domain.KindNotFound,
				fmt.Sprintf("ProductRepository.FindByID - product %s not found", id), err)
		}
		return entities.Product{}, domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.FindByID - query failed", err)
	}

	return product, nil
}

func (pr *ProductRepository) Update(ctx context.Context, id uuid.UUID, cmd domain.UpdateProductCommand) error {
	query := `
		UPDATE products
		SET code = $2, name = $3, family = $4, product_type = $5, description = $6,
		    amount_in_stock = $7, unit = $8, lead_time = $9, purchase_price = $10, updated_at = NOW()
		WHERE id = $1 AND deleted = FALSE`

	tag, err := pr.pool.Exec(ctx, query,
		id,
		cmd.Code,
		cmd.Name,
		postgres.NewNullString(cmd.Family),
		int16(cmd.ProductType),
		postgres.NewNullString(cmd.Description),
		cmd.AmountInStock,
		cmd.Unit,
		cmd.LeadTime,
		cmd.PurchasePrice,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return domain.WrapError(domain.KindDuplicateKey,
				fmt.Sprintf("ProductRepository.Update - code %q already in use", cmd.Code), err)
		}
		return domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.Update - update failed", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.NewError(domain.KindNotFound,
			fmt.Sprintf("ProductRepository.Update - product %s not found", id))
	}

	return nil
}

func (pr *ProductRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE products SET deleted = TRUE, updated_at = NOW() WHERE id = $1 AND deleted = FALSE`

	tag, err := pr.pool.Exec(ctx, query, id)
	if err != nil {
		return domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.SoftDelete - update failed", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.NewError(domain.KindNotFound,
			fmt.Sprintf("ProductRepository.SoftDelete - product %s not found", id))
	}

	return nil
}

// Restore desfaz um soft delete. Só o caminho de compensação do orquestrador
// chama isto; não existe rota de negócio para reativar produto.
func (pr *ProductRepository) Restore(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE products SET deleted = FALSE, updated_at = NOW() WHERE id = $1 AND deleted = TRUE`

	tag, err := pr.pool.Exec(ctx, query, id)
	if err != nil {
		return domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.Restore - update failed", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.NewError(domain.KindNotFound,
			fmt.Sprintf("ProductRepository.Restore - product %s not found", id))
	}

	return nil
}

// Paginate busca produtos não deletados com filtro e busca aplicados no
// servidor, nunca em memória.
func (pr *ProductRepository) Paginate(ctx context.Context, query domain.PageQuery) (domain.ProductPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}

	where := []string{"deleted = FALSE"}
	args := []interface{}{}

	if query.Search != "" {
		args = append(args, "%"+query.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d)", n, n))
	}
	if query.Family != "" {
		args = append(args, query.Family)
		where = append(where, fmt.Sprintf("family = $%d", len(args)))
	}
	if query.ProductType != 0 {
		args = append(args, int16(query.ProductType))
		where = append(where, fmt.Sprintf("product_type = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := `SELECT COUNT(*) FROM products WHERE ` + whereClause
	if err := pr.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return domain.ProductPage{}, domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.Paginate - count failed", err)
	}

	args = append(args, limit, (page-1)*limit)
	pageQuery := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY code ASC LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, len(args)-1, len(args))

	rows, err := pr.pool.Query(ctx, pageQuery, args...)
	if err != nil {
		return domain.ProductPage{}, domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.Paginate - query failed", err)
	}
	defer rows.Close()

	items := []entities.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return domain.ProductPage{}, domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.Paginate - scan failed", err)
		}
		items = append(items, product)
	}
	if err := rows.Err(); err != nil {
		return domain.ProductPage{}, domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.Paginate - rows failed", err)
	}

	return domain.ProductPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// FindByIDsAnyState retorna produtos incluindo os deletados. Uso exclusivo da
// montagem de árvore: uma BOM histórica continua nomeando componentes já
// deletados enquanto as arestas não forem destacadas.
func (pr *ProductRepository) FindByIDsAnyState(ctx context.Context, ids []uuid.UUID) ([]entities.Product, error) {
	if len(ids) == 0 {
		return []entities.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	rows, err := pr.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.FindByIDsAnyState - query failed", err)
	}
	defer rows.Close()

	products := []entities.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.FindByIDsAnyState - scan failed", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.KindStoreUnavailable, "ProductRepository.FindByIDsAnyState - rows failed", err)
	}

	return products, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sewellco/hts-manager/internal/domain"
	"github.com/sewellco/hts-manager/internal/domain/entity"
	"github.com/sewellco/hts-manager/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, sku, name, description, short_description, categories, tags, price, weight,
	hts_code, country_of_origin, hts_confidence, hts_source, hts_reasoning, hts_updated_at,
	created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto. El registro de clasificación inicia vacío.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, description, short_description, categories, tags, price, weight, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.SKU, product.Name, product.Description, product.ShortDescription,
		product.Categories, product.Tags, product.Price, product.Weight,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID. Devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetBySKU obtiene un producto por SKU.
func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	p, err := scanProduct(r.q.QueryRow(ctx, query, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// Update actualiza el snapshot del producto. El registro de clasificación NO se
// toca aquí: tiene sus propias escrituras atómicas (SetAIClassification y
// SetManualCode) para que las reglas de carrera vivan en una sola sentencia.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, short_description = $4, categories = $5,
			tags = $6, price = $7, weight = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.ShortDescription,
		product.Categories, product.Tags, product.Price, product.Weight, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista productos con paginación; con MissingHTS devuelve solo los
// elegibles para clasificación (sin código o con el centinela, sin override manual).
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []any{}
	if filter.MissingHTS {
		query += ` WHERE hts_source <> 'manual' AND (hts_code = '' OR hts_code = $1)`
		args = append(args, entity.SentinelHTSCode)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Delete elimina un producto.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetAIClassification persiste un resultado automático en una sola sentencia
// condicional: la cláusula WHERE protege el override manual contra resultados
// rezagados que llegaron mientras un humano escribía el código. Devuelve
// (false, nil) cuando la fila no se escribió (override manual o producto
// eliminado); el resultado se descarta sin error.
func (r *ProductRepo) SetAIClassification(ctx context.Context, productID string, c entity.Classification) (bool, error) {
	query := `
		UPDATE products SET hts_code = $2, country_of_origin = $3, hts_confidence = $4,
			hts_source = 'ai', hts_reasoning = $5, hts_updated_at = $6, updated_at = now()
		WHERE id = $1 AND hts_source <> 'manual'`
	cmd, err := r.q.Exec(ctx, query,
		productID, c.HTSCode, c.CountryOfOrigin, c.Confidence, c.Reasoning, c.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("set ai classification: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// SetManualCode escribe el override humano: la confianza queda en NULL porque
// un código manual no es salida del modelo.
func (r *ProductRepo) SetManualCode(ctx context.Context, productID, code, country string) error {
	query := `
		UPDATE products SET hts_code = $2, country_of_origin = $3, hts_confidence = NULL,
			hts_source = 'manual', hts_reasoning = '', hts_updated_at = now(), updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, productID, code, country)
	if err != nil {
		return fmt.Errorf("set manual code: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByClassification agrupa el catálogo por estado en una sola consulta.
// Las condiciones replican StateWithThreshold: manual gana, vacío/centinela es
// sin clasificar, y la baja confianza es estrictamente < umbral.
func (r *ProductRepo) CountByClassification(ctx context.Context, lowConfidenceThreshold float64) (repository.ClassificationCounts, error) {
	query := `
		SELECT
			count(*) AS total,
			count(*) FILTER (WHERE hts_source = 'manual' AND hts_code <> '') AS manual,
			count(*) FILTER (WHERE hts_source <> 'manual' AND (hts_code = '' OR hts_code = $1)) AS unclassified,
			count(*) FILTER (WHERE hts_source <> 'manual' AND hts_code <> '' AND hts_code <> $1
				AND hts_confidence IS NOT NULL AND hts_confidence < $2) AS low_confidence
		FROM products`
	var c repository.ClassificationCounts
	err := r.q.QueryRow(ctx, query, entity.SentinelHTSCode, lowConfidenceThreshold).Scan(
		&c.Total, &c.Manual, &c.Unclassified, &c.LowConfidence,
	)
	if err != nil {
		return repository.ClassificationCounts{}, fmt.Errorf("count classifications: %w", err)
	}
	c.Classified = c.Total - c.Manual - c.Unclassified - c.LowConfidence
	return c, nil
}

// scanProduct lee una fila con las columnas de productColumns, en ese orden.
func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	var source string
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.Description, &p.ShortDescription, &p.Categories, &p.Tags,
		&p.Price, &p.Weight,
		&p.Classification.HTSCode, &p.Classification.CountryOfOrigin, &p.Classification.Confidence,
		&source, &p.Classification.Reasoning, &p.Classification.UpdatedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Classification.Source = entity.Source(source)
	return &p, nil
}

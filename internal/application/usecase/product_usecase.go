package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sewellco/hts-manager/internal/application/dto"
	"github.com/sewellco/hts-manager/internal/domain"
	"github.com/sewellco/hts-manager/internal/domain/entity"
	"github.com/sewellco/hts-manager/internal/domain/repository"
	"github.com/sewellco/hts-manager/pkg/logger"
)

// ProductUseCase maneja el ciclo de vida del snapshot de producto. Crear o
// actualizar un producto elegible dispara la clasificación diferida vía el
// orquestador, igual que lo haría el hook de publicación del catálogo.
type ProductUseCase struct {
	repo      repository.ProductRepository
	classify  *ClassifyUseCase
	threshold float64
	log       *logger.Logger
}

// NewProductUseCase construye el caso de uso de productos.
func NewProductUseCase(repo repository.ProductRepository, classify *ClassifyUseCase, threshold float64, log *logger.Logger) *ProductUseCase {
	return &ProductUseCase{repo: repo, classify: classify, threshold: threshold, log: log}
}

// Create registra un snapshot nuevo. El SKU es único; un duplicado devuelve
// domain.ErrDuplicate. Tras persistir se agenda la clasificación automática.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	product := &entity.Product{
		ID:               uuid.NewString(),
		SKU:              sku,
		Name:             name,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Categories:       in.Categories,
		Tags:             in.Tags,
		Price:            toNullDecimal(in.Price),
		Weight:           toNullDecimal(in.Weight),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	if err := uc.classify.OnProductPublished(ctx, product.ID); err != nil {
		// la clasificación diferida nunca bloquea el alta
		uc.log.Warn().Err(err).Str("product_id", product.ID).Msg("no se pudo agendar la clasificación")
	}

	resp := uc.toResponse(product)
	return &resp, nil
}

// GetByID devuelve un producto o domain.ErrNotFound.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	resp := uc.toResponse(product)
	return &resp, nil
}

// GetBySKU devuelve un producto por SKU: la plataforma de comercio identifica
// productos por SKU, no por el ID interno de este servicio.
func (uc *ProductUseCase) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	resp := uc.toResponse(product)
	return &resp, nil
}

// Update aplica cambios parciales al snapshot. Los campos de clasificación no
// se tocan aquí; si el producto sigue sin código, se reagenda la clasificación
// porque el contenido del prompt pudo cambiar.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.ShortDescription != nil {
		product.ShortDescription = *in.ShortDescription
	}
	if in.Categories != nil {
		product.Categories = in.Categories
	}
	if in.Tags != nil {
		product.Tags = in.Tags
	}
	if in.Price != nil {
		product.Price = decimal.NullDecimal{Decimal: *in.Price, Valid: true}
	}
	if in.Weight != nil {
		product.Weight = decimal.NullDecimal{Decimal: *in.Weight, Valid: true}
	}
	product.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	if err := uc.classify.OnProductPublished(ctx, product.ID); err != nil {
		uc.log.Warn().Err(err).Str("product_id", product.ID).Msg("no se pudo agendar la clasificación")
	}

	resp := uc.toResponse(product)
	return &resp, nil
}

// List devuelve productos paginados; con MissingHTS filtra los pendientes de clasificar.
func (uc *ProductUseCase) List(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	products, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, uc.toResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page: dto.PageResponse{
			Limit:  filter.Limit,
			Offset: filter.Offset,
			Count:  len(items),
		},
	}, nil
}

// Delete elimina un snapshot y cancela cualquier clasificación pendiente.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	uc.classify.scheduler.Cancel(id)
	return uc.repo.Delete(ctx, id)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (uc *ProductUseCase) toResponse(p *entity.Product) dto.ProductResponse {
	c := p.Classification
	resp := dto.ProductResponse{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Categories:       p.Categories,
		Tags:             p.Tags,
		HTSCode:          c.HTSCode,
		CountryOfOrigin:  c.CountryOfOrigin,
		Confidence:       c.Confidence,
		Source:           string(c.Source),
		Reasoning:        c.Reasoning,
		HTSUpdatedAt:     c.UpdatedAt,
		State:            string(c.StateWithThreshold(uc.threshold)),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.Price.Valid {
		price := p.Price.Decimal
		resp.Price = &price
	}
	if p.Weight.Valid {
		weight := p.Weight.Decimal
		resp.Weight = &weight
	}
	return resp
}

func toNullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

package repository

import (
	"context"

	"github.com/sewellco/hts-manager/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Las escrituras de clasificación son operaciones dedicadas y atómicas: una
// sola sentencia SQL por escritura, sin estados parciales visibles.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error

	// SetAIClassification persiste un resultado automático de forma condicional:
	// no escribe si el registro ya tiene un código manual (el resultado rezagado
	// se descarta). Devuelve (false, nil) cuando la escritura fue descartada.
	SetAIClassification(ctx context.Context, productID string, c entity.Classification) (bool, error)

	// SetManualCode escribe un código ingresado por un humano: limpia la
	// confianza y marca source=manual. El código llega ya validado.
	SetManualCode(ctx context.Context, productID, code, country string) error

	// CountByClassification agrupa productos por estado de clasificación para
	// el resumen del operador.
	CountByClassification(ctx context.Context, lowConfidenceThreshold float64) (ClassificationCounts, error)
}

// ProductFilter filtros de listado.
type ProductFilter struct {
	MissingHTS bool // solo productos sin código (vacío o centinela, sin override manual)
	Limit      int
	Offset     int
}

// ClassificationCounts resumen por estado para GET /api/classify/status.
type ClassificationCounts struct {
	Total         int64
	Classified    int64
	LowConfidence int64
	Manual        int64
	Unclassified  int64
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa el snapshot de un producto del catálogo junto con su
// registro de clasificación HTS. El catálogo maestro vive en la plataforma de
// comercio; aquí se replica lo necesario para clasificar y exportar aduanas.
type Product struct {
	ID               string
	SKU              string
	Name             string
	Description      string
	ShortDescription string
	Categories       []string
	Tags             []string
	Price            decimal.NullDecimal // opcional: el catálogo puede no exponer precio
	Weight           decimal.NullDecimal // opcional: kg

	Classification Classification

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot devuelve la vista de solo lectura que consume el prompt builder.
func (p *Product) Snapshot() Snapshot {
	return Snapshot{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Categories:  p.Categories,
	}
}

// Snapshot campos del producto que participan en el prompt de clasificación.
// Se separa de Product para que el builder sea una función pura sin acceso a
// estado de clasificación ni timestamps.
type Snapshot struct {
	ID          string
	SKU         string
	Name        string
	Description string
	Categories  []string
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para registrar un snapshot de producto.
type CreateProductRequest struct {
	SKU              string               `json:"sku" validate:"required,min=1,max=100"`
	Name             string               `json:"name" validate:"required,min=1,max=200"`
	Description      string               `json:"description"`
	ShortDescription string               `json:"short_description"`
	Categories       []string             `json:"categories"`
	Tags             []string             `json:"tags"`
	Price            *decimal.Decimal     `json:"price"`
	Weight           *decimal.Decimal     `json:"weight"`
}

// UpdateProductRequest entrada para actualizar un snapshot (campos opcionales).
// El código HTS NO se toca por aquí: el override manual tiene su propio endpoint
// con validación propia.
type UpdateProductRequest struct {
	Name             *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"short_description"`
	Categories       []string         `json:"categories"`
	Tags             []string         `json:"tags"`
	Price            *decimal.Decimal `json:"price"`
	Weight           *decimal.Decimal `json:"weight"`
}

// SetManualCodeRequest override manual del código HTS.
type SetManualCodeRequest struct {
	HTSCode         string `json:"hts_code" validate:"required"`
	CountryOfOrigin string `json:"country_of_origin"`
}

// ProductResponse salida de un producto con su registro de clasificación.
type ProductResponse struct {
	ID               string           `json:"id"`
	SKU              string           `json:"sku"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description"`
	Categories       []string         `json:"categories"`
	Tags             []string         `json:"tags"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	Weight           *decimal.Decimal `json:"weight,omitempty"`

	HTSCode         string     `json:"hts_code"`
	CountryOfOrigin string     `json:"country_of_origin"`
	Confidence      *float64   `json:"confidence,omitempty"`
	Source          string     `json:"source"`
	Reasoning       string     `json:"reasoning,omitempty"`
	HTSUpdatedAt    *time.Time `json:"hts_updated_at,omitempty"`
	State           string     `json:"state"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

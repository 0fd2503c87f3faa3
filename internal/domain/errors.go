package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrInvalidHTSCode     = errors.New("código HTS inválido: se espera ####.##.####")
	ErrInvalidCountryCode = errors.New("país de origen inválido: se espera código de 2 letras")
	ErrNoAPIKey           = errors.New("API key del proveedor de clasificación no configurada")
	ErrAlreadyClassified  = errors.New("el producto ya tiene código HTS; usa regenerate para reclasificar")
	ErrManualOverride     = errors.New("el producto tiene un código manual; la clasificación automática no lo sobreescribe")
	ErrClassifyInFlight   = errors.New("ya hay una clasificación en curso para este producto")
)

// Package hts contiene la lógica pura de clasificación arancelaria HTS
// (Harmonized Tariff Schedule, importaciones a EE. UU.): validación del código
// de 10 dígitos, construcción del prompt y extracción del JSON de la respuesta
// del modelo. Sin I/O; todo es testeable de forma aislada.
package hts

import (
	"regexp"
	"strings"
)

// codePattern formato canónico de 10 dígitos agrupados 4-2-4 (ej. 6109.10.0012).
var codePattern = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{4}$`)

// countryPattern código de país de 2 letras (ISO 3166-1 alfa-2, sin validar catálogo).
var countryPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// DefaultCountryOfOrigin país de origen por defecto cuando el registro no tiene uno.
const DefaultCountryOfOrigin = "CA"

// ValidCode verifica el formato ####.##.#### (exactamente 10 dígitos).
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// ValidConfidence verifica que la confianza esté en [0,1].
func ValidConfidence(c float64) bool {
	return c >= 0 && c <= 1
}

// StripDots devuelve el código en formato de 10 dígitos sin puntos, que es el
// que prefiere ShipStation en los formularios de aduana. Devuelve "" si el
// código no es válido: nunca se exporta un código malformado.
func StripDots(code string) string {
	if !ValidCode(code) {
		return ""
	}
	return strings.ReplaceAll(code, ".", "")
}

// ValidCountry verifica el formato de 2 letras tras normalizar a mayúsculas.
func ValidCountry(country string) bool {
	return countryPattern.MatchString(strings.ToUpper(strings.TrimSpace(country)))
}

// NormalizeCountry valida y normaliza un país de origen a mayúsculas.
// Vacío o inválido degradan al país por defecto; el export nunca falla por esto.
func NormalizeCountry(country string) string {
	c := strings.ToUpper(strings.TrimSpace(country))
	if countryPattern.MatchString(c) {
		return c
	}
	return DefaultCountryOfOrigin
}

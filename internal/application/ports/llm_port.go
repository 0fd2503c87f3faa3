package ports

import (
	"context"
	"errors"
	"fmt"
)

// ClassificationResult resultado validado del clasificador. O llega completo
// (código con formato correcto + confianza en rango) o el adaptador devuelve
// un *ClassifyError; nunca un resultado a medias.
type ClassificationResult struct {
	HTSCode    string  // ####.##.#### (10 dígitos)
	Confidence float64 // [0,1]
	Reasoning  string  // opcional, puede ser vacío
}

// HTSClassifier define el puerto de salida hacia el servicio de clasificación
// por LLM. Cualquier adaptador (Anthropic, OpenAI, mock) implementa esta
// interfaz; el dominio/aplicación solo conoce este contrato (DIP).
// El adaptador no reintenta: la política de reintento es del orquestador y del
// scheduler ("se intenta de nuevo en el próximo evento").
type HTSClassifier interface {
	Classify(ctx context.Context, prompt string) (*ClassificationResult, error)
}

// ErrorKind taxonomía de fallos de clasificación. Todas tienen el mismo efecto
// en el orquestador (no se escribe nada, el producto queda reclasificable),
// pero el caller sincrónico y el log del operador necesitan distinguirlas.
type ErrorKind string

const (
	ErrKindNetwork       ErrorKind = "network"        // transporte: DNS, TLS, timeout
	ErrKindAPIStatus     ErrorKind = "api_status"     // HTTP no-2xx del proveedor
	ErrKindEmptyResponse ErrorKind = "empty_response" // el sobre llegó sin texto generado
	ErrKindUnparseable   ErrorKind = "unparseable"    // sin objeto JSON balanceado en el texto
	ErrKindInvalidFormat ErrorKind = "invalid_format" // JSON parseado pero código/confianza inválidos
)

// ClassifyError error tipado del adaptador LLM.
// Snippet conserva un fragmento acotado de la respuesta ofensiva para diagnóstico.
type ClassifyError struct {
	Kind    ErrorKind
	Status  int    // solo para ErrKindAPIStatus
	Snippet string // acotado; nunca la respuesta completa
	Err     error  // causa subyacente, si existe
}

func (e *ClassifyError) Error() string {
	switch e.Kind {
	case ErrKindAPIStatus:
		return fmt.Sprintf("clasificación: el proveedor respondió HTTP %d", e.Status)
	case ErrKindNetwork:
		return fmt.Sprintf("clasificación: error de red: %v", e.Err)
	case ErrKindEmptyResponse:
		return "clasificación: el modelo devolvió una respuesta vacía"
	case ErrKindUnparseable:
		return fmt.Sprintf("clasificación: sin JSON válido en la respuesta (fragmento: %q)", e.Snippet)
	case ErrKindInvalidFormat:
		return fmt.Sprintf("clasificación: resultado con formato inválido (fragmento: %q)", e.Snippet)
	default:
		return fmt.Sprintf("clasificación: fallo %s", e.Kind)
	}
}

func (e *ClassifyError) Unwrap() error { return e.Err }

// AsClassifyError extrae un *ClassifyError de una cadena de errores envueltos.
func AsClassifyError(err error) (*ClassifyError, bool) {
	var ce *ClassifyError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// MaxSnippetLen tope del fragmento de respuesta que se conserva en errores y logs.
const MaxSnippetLen = 200

// Snippet acota un texto para diagnóstico.
func Snippet(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxSnippetLen {
		return s
	}
	return string(runes[:MaxSnippetLen]) + "..."
}

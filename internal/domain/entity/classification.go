package entity

import "time"

// Source indica el origen del código HTS almacenado.
// El campo confidence solo tiene sentido cuando Source es SourceAI; una entrada
// manual lo deja en nil para que el pipeline automático no la trate como
// resultado de baja confianza.
type Source string

const (
	SourceNone   Source = ""       // sin clasificar
	SourceAI     Source = "ai"     // escrito por el clasificador automático
	SourceManual Source = "manual" // escrito por un humano; terminal para el pipeline
)

// Classification registro de clasificación HTS por producto.
// HTSCode vacío significa "sin clasificar"; el centinela 9999.99.9999 se trata
// igual que vacío a efectos de elegibilidad de reclasificación.
type Classification struct {
	HTSCode         string
	CountryOfOrigin string   // código de 2 letras; CA por defecto al clasificar
	Confidence      *float64 // nil cuando el código fue ingresado manualmente o no existe
	Source          Source
	Reasoning       string
	UpdatedAt       *time.Time // última escritura automática o manual
}

// State estado observable del registro para el orquestador y el endpoint de status.
type State string

const (
	StateUnclassified  State = "unclassified"
	StateClassified    State = "classified"
	StateLowConfidence State = "low_confidence"
	StateManual        State = "manual"
)

// StateWithThreshold deriva el estado del registro dado el umbral de baja confianza.
// La comparación es estrictamente menor: confidence == threshold NO es baja confianza.
func (c Classification) StateWithThreshold(threshold float64) State {
	switch {
	case c.Source == SourceManual && c.HTSCode != "":
		return StateManual
	case c.HTSCode == "" || c.HTSCode == SentinelHTSCode:
		return StateUnclassified
	case c.Confidence != nil && *c.Confidence < threshold:
		return StateLowConfidence
	default:
		return StateClassified
	}
}

// SentinelHTSCode marcador reservado "sin resolver"; equivale a vacío para la
// elegibilidad de reclasificación y se omite en el export aduanero.
const SentinelHTSCode = "9999.99.9999"

// NeedsClassification indica si el producto es elegible para clasificación
// automática (código vacío o centinela, y sin override manual).
func (c Classification) NeedsClassification() bool {
	if c.Source == SourceManual && c.HTSCode != "" {
		return false
	}
	return c.HTSCode == "" || c.HTSCode == SentinelHTSCode
}

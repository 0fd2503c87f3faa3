package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func TestNeedsClassification(t *testing.T) {
	assert.True(t, Classification{}.NeedsClassification(), "sin código → elegible")
	assert.True(t, Classification{HTSCode: SentinelHTSCode, Source: SourceAI}.NeedsClassification(),
		"el centinela cuenta como sin clasificar")
	assert.False(t, Classification{HTSCode: "6109.10.0012", Source: SourceAI}.NeedsClassification())
	assert.False(t, Classification{HTSCode: "6109.10.0012", Source: SourceManual}.NeedsClassification(),
		"override manual es terminal para el pipeline")
	assert.True(t, Classification{HTSCode: "", Source: SourceManual}.NeedsClassification(),
		"source manual sin código no bloquea (estado inconsistente se repara)")
}

func TestStateWithThreshold(t *testing.T) {
	const umbral = 0.60

	casos := []struct {
		nombre string
		c      Classification
		want   State
	}{
		{"sin código", Classification{}, StateUnclassified},
		{"centinela", Classification{HTSCode: SentinelHTSCode, Source: SourceAI, Confidence: ptr(0.9)}, StateUnclassified},
		{"clasificado con confianza alta", Classification{HTSCode: "6109.10.0012", Source: SourceAI, Confidence: ptr(0.85)}, StateClassified},
		{"baja confianza", Classification{HTSCode: "6109.10.0012", Source: SourceAI, Confidence: ptr(0.59)}, StateLowConfidence},
		// el umbral es estrictamente <: exactamente 0.60 NO es baja confianza
		{"exactamente en el umbral", Classification{HTSCode: "6109.10.0012", Source: SourceAI, Confidence: ptr(0.60)}, StateClassified},
		{"apenas por debajo", Classification{HTSCode: "6109.10.0012", Source: SourceAI, Confidence: ptr(0.599999)}, StateLowConfidence},
		{"manual", Classification{HTSCode: "6109.10.0012", Source: SourceManual}, StateManual},
		{"manual gana aunque hubiera confianza", Classification{HTSCode: "6109.10.0012", Source: SourceManual, Confidence: ptr(0.1)}, StateManual},
		{"ai sin confianza persistida", Classification{HTSCode: "6109.10.0012", Source: SourceAI}, StateClassified},
	}
	for _, c := range casos {
		assert.Equal(t, c.want, c.c.StateWithThreshold(umbral), c.nombre)
	}
}

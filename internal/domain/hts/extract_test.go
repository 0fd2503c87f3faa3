package hts

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_ObjetoLimpio(t *testing.T) {
	in := `{"hts_code": "6109.10.0012", "confidence": 0.92, "reasoning": "camiseta de algodón"}`
	assert.Equal(t, in, ExtractJSON(in))
}

func TestExtractJSON_ConTextoAlrededor(t *testing.T) {
	in := "Claro, aquí está mi análisis:\n" +
		`{"hts_code": "6109.10.0012", "confidence": 0.92, "reasoning": "ok"}` +
		"\nEspero que sea útil."
	out := ExtractJSON(in)
	require.NotEmpty(t, out)
	assert.True(t, json.Valid([]byte(out)), "lo extraído debe ser JSON válido")
	assert.Contains(t, out, "6109.10.0012")
	assert.NotContains(t, out, "Espero")
}

func TestExtractJSON_FenceMarkdown(t *testing.T) {
	in := "```json\n{\"hts_code\": \"8471.30.0100\", \"confidence\": 0.8, \"reasoning\": \"laptop\"}\n```"
	out := ExtractJSON(in)
	assert.True(t, json.Valid([]byte(out)))
	assert.Contains(t, out, "8471.30.0100")
}

// La debilidad clásica de la regex greedy: dos objetos en el texto. El escaneo
// balanceado debe devolver solo el primero, no desde la primera '{' hasta la
// última '}'.
func TestExtractJSON_DosObjetos_DevuelveElPrimero(t *testing.T) {
	in := `{"hts_code": "6109.10.0012", "confidence": 0.9, "reasoning": "a"} y también {"otro": 1}`
	out := ExtractJSON(in)
	assert.True(t, json.Valid([]byte(out)))
	assert.Contains(t, out, "6109.10.0012")
	assert.NotContains(t, out, "otro")
}

// La debilidad de la regex non-greedy: llaves literales dentro de un string.
// No deben contar para el balance.
func TestExtractJSON_LlavesDentroDeString(t *testing.T) {
	in := `{"hts_code": "6109.10.0012", "confidence": 0.9, "reasoning": "el patrón {x} aplica"}`
	out := ExtractJSON(in)
	require.Equal(t, in, out)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "el patrón {x} aplica", payload["reasoning"])
}

func TestExtractJSON_ComillaEscapadaEnString(t *testing.T) {
	in := `{"reasoning": "dijo \"alto {\" y siguió", "confidence": 0.5}`
	out := ExtractJSON(in)
	assert.Equal(t, in, out)
	assert.True(t, json.Valid([]byte(out)))
}

func TestExtractJSON_ObjetoAnidado(t *testing.T) {
	in := `prefix {"a": {"b": {"c": 1}}, "d": 2} sufijo`
	assert.Equal(t, `{"a": {"b": {"c": 1}}, "d": 2}`, ExtractJSON(in))
}

func TestExtractJSON_SinObjeto(t *testing.T) {
	assert.Equal(t, "", ExtractJSON("no puedo clasificar este producto"))
	assert.Equal(t, "", ExtractJSON(""))
}

// Respuesta cortada por max_tokens: llave abierta sin cerrar.
func TestExtractJSON_ObjetoTruncado(t *testing.T) {
	assert.Equal(t, "", ExtractJSON(`{"hts_code": "6109.10.0012", "confi`))
}

func TestExtractJSON_LlaveCerradaSuelta(t *testing.T) {
	in := `} basura inicial {"confidence": 0.7}`
	assert.Equal(t, `{"confidence": 0.7}`, ExtractJSON(in))
}

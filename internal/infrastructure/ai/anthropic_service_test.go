package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sewellco/hts-manager/internal/application/ports"
	"github.com/sewellco/hts-manager/internal/domain"
)

// newTestService apunta el adaptador a un servidor httptest.
func newTestService(t *testing.T, handler http.HandlerFunc) *AnthropicService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	svc := NewAnthropicService("test-key", "claude-3-5-sonnet-20241022")
	svc.baseURL = srv.URL
	return svc
}

// anthropicOK responde como la Messages API con el texto dado.
func anthropicOK(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"content": []map[string]any{{"type": "text", "text": text}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestClassify_Exitoso(t *testing.T) {
	var gotHeaders http.Header
	var gotBody anthropicRequest
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		anthropicOK(`Análisis: {"hts_code": "6109.10.0012", "confidence": 0.92, "reasoning": "camiseta"}`)(w, r)
	})

	result, err := svc.Classify(context.Background(), "clasifica esta camiseta")
	require.NoError(t, err)
	assert.Equal(t, "6109.10.0012", result.HTSCode)
	assert.Equal(t, 0.92, result.Confidence)
	assert.Equal(t, "camiseta", result.Reasoning)

	// contrato con la API: headers y parámetros fijos de la petición
	assert.Equal(t, "test-key", gotHeaders.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, gotHeaders.Get("anthropic-version"))
	assert.Equal(t, maxTokens, gotBody.MaxTokens)
	assert.Equal(t, temperature, gotBody.Temperature)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "clasifica esta camiseta", gotBody.Messages[0].Content)
}

func TestClassify_SinAPIKey(t *testing.T) {
	svc := NewAnthropicService("", "claude-3-5-sonnet-20241022")
	_, err := svc.Classify(context.Background(), "prompt")
	assert.ErrorIs(t, err, domain.ErrNoAPIKey)
}

func TestClassify_ErrorHTTP(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"type": "rate_limit_error"}}`))
	})

	_, err := svc.Classify(context.Background(), "prompt")
	ce, ok := ports.AsClassifyError(err)
	require.True(t, ok, "debe ser un ClassifyError tipado")
	assert.Equal(t, ports.ErrKindAPIStatus, ce.Kind)
	assert.Equal(t, http.StatusTooManyRequests, ce.Status)
	assert.Contains(t, ce.Snippet, "rate_limit_error")
}

func TestClassify_ErrorDeRed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	svc := NewAnthropicService("test-key", "m")
	svc.baseURL = srv.URL
	srv.Close() // el servidor ya no existe: fallo de transporte

	_, err := svc.Classify(context.Background(), "prompt")
	ce, ok := ports.AsClassifyError(err)
	require.True(t, ok)
	assert.Equal(t, ports.ErrKindNetwork, ce.Kind)
}

func TestClassify_RespuestaVacia(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content": []}`))
	})

	_, err := svc.Classify(context.Background(), "prompt")
	ce, ok := ports.AsClassifyError(err)
	require.True(t, ok)
	assert.Equal(t, ports.ErrKindEmptyResponse, ce.Kind)
}

func TestClassify_TextoSinJSON(t *testing.T) {
	svc := newTestService(t, anthropicOK("No estoy seguro de cómo clasificar esto."))

	_, err := svc.Classify(context.Background(), "prompt")
	ce, ok := ports.AsClassifyError(err)
	require.True(t, ok)
	assert.Equal(t, ports.ErrKindUnparseable, ce.Kind)
	assert.Contains(t, ce.Snippet, "No estoy seguro")
}

// ── ParseModelOutput: validación del contrato, compartida por los adaptadores ──

func TestParseModelOutput_CodigoInvalido(t *testing.T) {
	_, err := ParseModelOutput(`{"hts_code": "6109.10", "confidence": 0.9, "reasoning": "x"}`)
	ce, ok := ports.AsClassifyError(err)
	require.True(t, ok)
	assert.Equal(t, ports.ErrKindInvalidFormat, ce.Kind)
}

func TestParseModelOutput_ConfianzaAusente(t *testing.T) {
	// confidence ausente no es lo mismo que 0.0: invalida el resultado completo
	_, err := ParseModelOutput(`{"hts_code": "6109.10.0012", "reasoning": "x"}`)
	ce, ok := ports.AsClassifyError(err)
	require.True(t, ok)
	assert.Equal(t, ports.ErrKindInvalidFormat, ce.Kind)
}

func TestParseModelOutput_ConfianzaFueraDeRango(t *testing.T) {
	_, err := ParseModelOutput(`{"hts_code": "6109.10.0012", "confidence": 1.5}`)
	ce, ok := ports.AsClassifyError(err)
	require.True(t, ok)
	assert.Equal(t, ports.ErrKindInvalidFormat, ce.Kind)
}

func TestParseModelOutput_ConfianzaCero_EsValida(t *testing.T) {
	result, err := ParseModelOutput(`{"hts_code": "6109.10.0012", "confidence": 0.0}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestParseModelOutput_FenceMarkdown(t *testing.T) {
	result, err := ParseModelOutput("```json\n{\"hts_code\": \"8471.30.0100\", \"confidence\": 0.8, \"reasoning\": \"laptop\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "8471.30.0100", result.HTSCode)
}

func TestParseModelOutput_SnippetAcotado(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	_, err := ParseModelOutput(string(long))
	ce, ok := ports.AsClassifyError(err)
	require.True(t, ok)
	assert.LessOrEqual(t, len(ce.Snippet), ports.MaxSnippetLen+3, "el snippet debe truncarse")
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sewellco/hts-manager/internal/application/ports"
	"github.com/sewellco/hts-manager/internal/domain"
	"github.com/sewellco/hts-manager/internal/domain/hts"
)

// Verificar en tiempo de compilación que AnthropicService implementa HTSClassifier.
var _ ports.HTSClassifier = (*AnthropicService)(nil)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"

	// Parámetros fijos de la petición de clasificación: temperatura baja para
	// sesgar hacia respuestas deterministas/conservadoras, tokens acotados
	// porque la respuesta esperada es un objeto JSON pequeño.
	maxTokens      = 500
	temperature    = 0.2
	requestTimeout = 30 * time.Second
)

// AnthropicService adaptador que implementa HTSClassifier usando la API REST
// de Anthropic (Claude). Usa net/http de la librería estándar; no requiere el
// SDK oficial. Sin reintentos: un intento por invocación, el orquestador decide.
type AnthropicService struct {
	apiKey     string
	model      string
	baseURL    string // sobreescribible en tests
	httpClient *http.Client
}

// NewAnthropicService construye el adaptador.
// model suele ser "claude-3-5-sonnet-20241022".
func NewAnthropicService(apiKey, model string) *AnthropicService {
	return &AnthropicService{
		apiKey:  apiKey,
		model:   model,
		baseURL: anthropicMessagesURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// ── Estructuras del protocolo Anthropic Messages API ──────────────────────────

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// Classify envía el prompt a Claude y devuelve el resultado validado o un
// *ports.ClassifyError. Nunca devuelve un resultado parcial.
func (s *AnthropicService) Classify(ctx context.Context, prompt string) (*ports.ClassificationResult, error) {
	if s.apiKey == "" {
		return nil, domain.ErrNoAPIKey
	}

	payload := anthropicRequest{
		Model:       s.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ai: serializar request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ai: crear HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// timeout, DNS, TLS: todo es un fallo de transporte para el orquestador
		return nil, &ports.ClassifyError{Kind: ports.ErrKindNetwork, Err: err}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, &ports.ClassifyError{Kind: ports.ErrKindNetwork, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ports.ClassifyError{
			Kind:    ports.ErrKindAPIStatus,
			Status:  resp.StatusCode,
			Snippet: ports.Snippet(string(rawBody)),
		}
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(rawBody, &anthResp); err != nil {
		return nil, &ports.ClassifyError{
			Kind:    ports.ErrKindUnparseable,
			Snippet: ports.Snippet(string(rawBody)),
			Err:     err,
		}
	}

	if len(anthResp.Content) == 0 || anthResp.Content[0].Text == "" {
		return nil, &ports.ClassifyError{Kind: ports.ErrKindEmptyResponse}
	}

	return ParseModelOutput(anthResp.Content[0].Text)
}

// classificationPayload forma esperada del JSON embebido en la respuesta.
// Confidence es puntero para distinguir "ausente" de 0.0: una confianza
// ausente invalida el resultado completo.
type classificationPayload struct {
	HTSCode    string   `json:"hts_code"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// ParseModelOutput extrae y valida el resultado de clasificación del texto
// libre generado por el modelo. Compartido por todos los adaptadores LLM.
func ParseModelOutput(text string) (*ports.ClassificationResult, error) {
	obj := hts.ExtractJSON(text)
	if obj == "" {
		return nil, &ports.ClassifyError{
			Kind:    ports.ErrKindUnparseable,
			Snippet: ports.Snippet(text),
		}
	}

	var payload classificationPayload
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, &ports.ClassifyError{
			Kind:    ports.ErrKindUnparseable,
			Snippet: ports.Snippet(obj),
			Err:     err,
		}
	}

	if !hts.ValidCode(payload.HTSCode) {
		return nil, &ports.ClassifyError{
			Kind:    ports.ErrKindInvalidFormat,
			Snippet: ports.Snippet(obj),
		}
	}
	if payload.Confidence == nil || !hts.ValidConfidence(*payload.Confidence) {
		return nil, &ports.ClassifyError{
			Kind:    ports.ErrKindInvalidFormat,
			Snippet: ports.Snippet(obj),
		}
	}

	return &ports.ClassificationResult{
		HTSCode:    payload.HTSCode,
		Confidence: *payload.Confidence,
		Reasoning:  payload.Reasoning,
	}, nil
}

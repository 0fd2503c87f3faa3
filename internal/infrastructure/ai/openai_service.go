package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sewellco/hts-manager/internal/application/ports"
	"github.com/sewellco/hts-manager/internal/domain"
)

// Verificar en tiempo de compilación que OpenAIService implementa HTSClassifier.
var _ ports.HTSClassifier = (*OpenAIService)(nil)

// OpenAIService adaptador alternativo sobre la API de chat de OpenAI.
// Mismo contrato que el adaptador de Anthropic: un intento, 30 s, resultado
// completo o error tipado. El parseo de la respuesta es el mismo
// (ParseModelOutput): el modelo también responde texto libre con JSON embebido.
type OpenAIService struct {
	client *openai.Client
	apiKey string
	model  string
}

// NewOpenAIService construye el adaptador. model suele ser "gpt-4o-mini".
func NewOpenAIService(apiKey, model string) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(apiKey),
		apiKey: apiKey,
		model:  model,
	}
}

// Classify envía el prompt y devuelve el resultado validado o un *ports.ClassifyError.
func (s *OpenAIService) Classify(ctx context.Context, prompt string) (*ports.ClassificationResult, error) {
	if s.apiKey == "" {
		return nil, domain.ErrNoAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &ports.ClassifyError{
				Kind:    ports.ErrKindAPIStatus,
				Status:  apiErr.HTTPStatusCode,
				Snippet: ports.Snippet(apiErr.Message),
				Err:     err,
			}
		}
		return nil, &ports.ClassifyError{Kind: ports.ErrKindNetwork, Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &ports.ClassifyError{Kind: ports.ErrKindEmptyResponse}
	}

	return ParseModelOutput(resp.Choices[0].Message.Content)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/supportly/backend/internal/config"
)

const captionSystemPrompt = "You are a creative assistant that generates short, positive social media captions for creators. The caption should be 1-2 sentences max."

const (
	captionMaxTokens   = 50
	captionTemperature = 0.7
	maxPromptLength    = 1000
)

// CaptionRequest represents the caption generation payload
// @Description Caption request structure
type CaptionRequest struct {
	Prompt string `json:"prompt" validate:"required,max=1000" example:"Thank my fans for helping me buy a new microphone"`
}

// CaptionService writes short post captions through the OpenAI chat
// completions API. Without an API key it reports ErrUnavailable.
type CaptionService struct {
	client  *openai.Client
	model   string
	enabled bool
	log     zerolog.Logger
}

func NewCaptionService(cfg config.OpenAIConfig, httpClient *http.Client, log zerolog.Logger) *CaptionService {
	apiKey := strings.TrimSpace(cfg.APIKey)

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	clientCfg.HTTPClient = httpClient

	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	return &CaptionService{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   model,
		enabled: apiKey != "",
		log:     log.With().Str("component", "caption").Logger(),
	}
}

func (s *CaptionService) Enabled() bool {
	return s.enabled
}

func (s *CaptionService) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrInvalidInput)
	}
	if len(prompt) > maxPromptLength {
		return "", fmt.Errorf("%w: prompt is too long", ErrInvalidInput)
	}
	if !s.Enabled() {
		return "", fmt.Errorf("%w: caption generation is not configured", ErrUnavailable)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   captionMaxTokens,
		Temperature: captionTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: captionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			s.log.Error().Int("status", apiErr.HTTPStatusCode).Str("type", apiErr.Type).Msg("Caption provider returned an error")
			return "", fmt.Errorf("%w: caption provider status %d", ErrGateway, apiErr.HTTPStatusCode)
		}
		s.log.Error().Err(err).Msg("Caption request failed")
		return "", fmt.Errorf("%w: caption provider unreachable", ErrGateway)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in caption response", ErrGateway)
	}
	caption := strings.TrimSpace(resp.Choices[0].Message.Content)
	if caption == "" {
		return "", fmt.Errorf("%w: empty caption", ErrGateway)
	}
	return caption, nil
}

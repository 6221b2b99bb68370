package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/postpilot/postpilot/internal/logging"
)

// GeminiProvider implements the Provider interface for Google's Gemini API
type GeminiProvider struct {
	modelName string
	client    *genai.Client
	logger    logging.Logger
}

// NewGeminiProvider creates a new Gemini provider using the official client
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, logger logging.Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if logger == nil {
		logger = logging.Nop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiProvider{
		modelName: modelName,
		client:    client,
		logger:    logger,
	}, nil
}

// GetName returns the provider name
func (p *GeminiProvider) GetName() string {
	return "gemini"
}

// Generate implements the Provider interface. The generated text is nested
// under the first candidate's content parts; anything that is not a text
// part is skipped.
func (p *GeminiProvider) Generate(ctx context.Context, instruction string) (string, error) {
	model := p.client.GenerativeModel(p.modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)
	model.SetTopK(40)
	model.SetMaxOutputTokens(512)

	p.logger.Debug("sending instruction to gemini", "model", p.modelName)

	resp, err := model.GenerateContent(ctx, genai.Text(instruction))
	if err != nil {
		p.logger.Error("gemini API error", "error", err)
		return "", fmt.Errorf("gemini API: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			text += string(textPart)
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini returned an empty text response")
	}

	p.logger.Debug("received gemini response", "chars", len(text))
	return text, nil
}

// Close closes the Gemini client
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

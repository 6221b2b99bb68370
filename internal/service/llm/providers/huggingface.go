package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/postpilot/postpilot/internal/logging"
	"github.com/postpilot/postpilot/internal/service/llm/prompts"
	"github.com/postpilot/postpilot/internal/upstream"
)

const (
	hfInferenceBaseURL = "https://api-inference.huggingface.co/models"
	defaultHFTimeout   = 30 * time.Second
)

// HuggingFaceProvider implements the Provider interface on the Hugging Face
// Inference API text-generation task. Hosted models answer 503 while they
// load, so calls through this provider are meant to run under the retrier.
type HuggingFaceProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// HFTextRequest represents a request to the Inference API text-generation task
type HFTextRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters HFTextParameters `json:"parameters"`
}

// HFTextParameters carries the generation parameters for a request
type HFTextParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

// HFTextResponse represents the candidate list returned by the task
type HFTextResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// NewHuggingFaceProvider creates a new Hugging Face text provider
func NewHuggingFaceProvider(apiKey, model string, logger logging.Logger) *HuggingFaceProvider {
	if model == "" {
		model = "mistralai/Mistral-7B-Instruct-v0.2"
	}
	if logger == nil {
		logger = logging.Nop()
	}

	return &HuggingFaceProvider{
		apiKey:     apiKey,
		model:      model,
		baseURL:    hfInferenceBaseURL,
		httpClient: &http.Client{Timeout: defaultHFTimeout},
		logger:     logger,
	}
}

// GetName returns the provider name
func (p *HuggingFaceProvider) GetName() string {
	return "huggingface"
}

// Generate implements the Provider interface. Instruction-tuned models echo
// the full prompt back, so the reply is the portion after the last
// instruction-end marker.
func (p *HuggingFaceProvider) Generate(ctx context.Context, instruction string) (string, error) {
	request := HFTextRequest{
		Inputs: instruction,
		Parameters: HFTextParameters{
			MaxNewTokens:   160,
			Temperature:    0.7,
			ReturnFullText: true,
		},
	}

	candidates, err := p.makeRequest(ctx, request)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", errors.New("empty response from hugging face")
	}

	text := prompts.ExtractCompletion(candidates[0].GeneratedText)
	if text == "" {
		return "", errors.New("hugging face returned no completion after the instruction")
	}
	return text, nil
}

// makeRequest sends a request to the Inference API
func (p *HuggingFaceProvider) makeRequest(ctx context.Context, request HFTextRequest) (HFTextResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/"+p.model, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("hugging face API error",
			"model", p.model,
			"status", resp.Status,
			"body", string(body))
		return nil, upstream.FromResponse(p.GetName(), resp.StatusCode, body)
	}

	var apiResponse HFTextResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return apiResponse, nil
}

// Close implements the Provider interface
func (p *HuggingFaceProvider) Close() error {
	// Nothing to close for HTTP client
	return nil
}

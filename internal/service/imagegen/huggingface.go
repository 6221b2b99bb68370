package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/postpilot/postpilot/internal/logging"
	"github.com/postpilot/postpilot/internal/upstream"
)

const (
	hfInferenceBaseURL = "https://api-inference.huggingface.co/models"

	// Diffusion renders routinely take tens of seconds on shared
	// infrastructure, so the HTTP timeout is generous.
	defaultRenderTimeout = 120 * time.Second
)

// ModelParams are the rendering parameters sent with every request to one
// hosted model.
type ModelParams struct {
	NumInferenceSteps int
	GuidanceScale     float64
	Width             int
	Height            int
	NegativePrompt    string
}

// PrimaryParams returns the quality-tier defaults, sized for SDXL.
func PrimaryParams() ModelParams {
	return ModelParams{
		NumInferenceSteps: 30,
		GuidanceScale:     7.5,
		Width:             1024,
		Height:            1024,
		NegativePrompt:    "text, watermark, logo, low quality, blurry",
	}
}

// FastParams returns the latency-tier defaults used by the fallback model.
func FastParams() ModelParams {
	return ModelParams{
		NumInferenceSteps: 25,
		GuidanceScale:     7.0,
		Width:             512,
		Height:            512,
		NegativePrompt:    "text, watermark, logo, low quality, blurry",
	}
}

// HFImageModel renders images through one hosted model on the Hugging Face
// Inference API. The text-to-image task answers raw image bytes on success
// and JSON on failure, with 503 meaning the model is still loading.
type HFImageModel struct {
	apiKey     string
	model      string
	params     ModelParams
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// HFImageRequest represents a request to the text-to-image task
type HFImageRequest struct {
	Inputs     string            `json:"inputs"`
	Parameters HFImageParameters `json:"parameters"`
}

// HFImageParameters carries the rendering parameters for a request
type HFImageParameters struct {
	NumInferenceSteps int     `json:"num_inference_steps"`
	GuidanceScale     float64 `json:"guidance_scale"`
	Width             int     `json:"width"`
	Height            int     `json:"height"`
	NegativePrompt    string  `json:"negative_prompt,omitempty"`
}

// NewHFImageModel creates a client for one hosted image model
func NewHFImageModel(apiKey, model string, params ModelParams, logger logging.Logger) *HFImageModel {
	if logger == nil {
		logger = logging.Nop()
	}

	return &HFImageModel{
		apiKey:     apiKey,
		model:      model,
		params:     params,
		baseURL:    hfInferenceBaseURL,
		httpClient: &http.Client{Timeout: defaultRenderTimeout},
		logger:     logger,
	}
}

// ModelName returns the hosted model identifier
func (m *HFImageModel) ModelName() string {
	return m.model
}

// Render submits the description and returns the raw image bytes.
func (m *HFImageModel) Render(ctx context.Context, description string) ([]byte, error) {
	requestBody, err := json.Marshal(HFImageRequest{
		Inputs: description,
		Parameters: HFImageParameters{
			NumInferenceSteps: m.params.NumInferenceSteps,
			GuidanceScale:     m.params.GuidanceScale,
			Width:             m.params.Width,
			Height:            m.params.Height,
			NegativePrompt:    m.params.NegativePrompt,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/"+m.model, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/png")
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		m.logger.Error("hugging face image API error",
			"model", m.model,
			"status", resp.Status,
			"body", string(body))
		return nil, upstream.FromResponse(m.model, resp.StatusCode, body)
	}

	return body, nil
}

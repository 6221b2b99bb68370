// Package imagegen generates post images on a best-effort basis. The
// pipeline degrades through a fallback model down to a placeholder reference
// rather than failing: a post can always ship without an image.
package imagegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	// Registered so the decode check accepts both formats hosted models
	// actually return.
	_ "image/jpeg"
	_ "image/png"

	"github.com/postpilot/postpilot/internal/logging"
	"github.com/postpilot/postpilot/internal/metrics"
	"github.com/postpilot/postpilot/internal/service/llm/prompts"
	"github.com/postpilot/postpilot/internal/service/llm/providers"
	"github.com/postpilot/postpilot/internal/utils/retry"
)

const defaultPlaceholderURL = "https://via.placeholder.com/1024x1024.png?text=PostPilot"

// Kind tags the outcome of a generation attempt.
type Kind int

const (
	// KindImage means Data holds validated image bytes.
	KindImage Kind = iota
	// KindPlaceholder means no image could be generated and PlaceholderURL
	// holds the reference to serve instead.
	KindPlaceholder
)

// Result is the tagged outcome of the image pipeline. Placeholder results
// carry a reference URL instead of bytes; the URL contains the literal word
// "placeholder" so the two outcomes stay distinguishable on the wire.
type Result struct {
	Kind           Kind
	Data           []byte
	MIME           string
	Model          string
	PlaceholderURL string
}

// Placeholder reports whether the result is the no-image sentinel.
func (r *Result) Placeholder() bool {
	return r.Kind == KindPlaceholder
}

// Service orchestrates image generation: expand the topic into a visual
// description, render it on the primary model with retries, then on the fast
// model once, and validate whatever bytes come back.
type Service struct {
	describer      providers.Provider
	primary        *HFImageModel
	fallback       *HFImageModel
	generator      *prompts.Generator
	retryCfg       retry.Config
	timeout        time.Duration
	placeholderURL string
	logger         logging.Logger
}

// ServiceOptions contains configuration for the image service
type ServiceOptions struct {
	// Describer expands topics into visual descriptions. Optional: without
	// it the topic is used verbatim.
	Describer      providers.Provider
	Primary        *HFImageModel
	Fallback       *HFImageModel
	Retry          retry.Config
	CallTimeout    time.Duration
	PlaceholderURL string
	Logger         logging.Logger
}

// NewService creates a new image service with the specified options
func NewService(opts ServiceOptions) *Service {
	// Set default values if not provided
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig
	}
	if opts.CallTimeout == 0 {
		opts.CallTimeout = 60 * time.Second
	}
	if opts.PlaceholderURL == "" {
		opts.PlaceholderURL = defaultPlaceholderURL
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	return &Service{
		describer:      opts.Describer,
		primary:        opts.Primary,
		fallback:       opts.Fallback,
		generator:      prompts.NewGenerator(),
		retryCfg:       opts.Retry,
		timeout:        opts.CallTimeout,
		placeholderURL: opts.PlaceholderURL,
		logger:         opts.Logger,
	}
}

// Generate renders an image for a topic. It returns an error only when the
// context is done; every other failure degrades to the placeholder result.
func (s *Service) Generate(ctx context.Context, topic string) (*Result, error) {
	metrics.GenerationRequests.WithLabelValues("image").Inc()

	description := s.describe(ctx, topic)

	data, model, err := s.render(ctx, description)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("All image models failed, serving placeholder", "error", err)
		return s.placeholder(), nil
	}

	format, err := validateImage(data)
	if err != nil {
		s.logger.Error("Generated bytes failed the decode check",
			"model", model,
			"bytes", len(data),
			"error", err)
		return s.placeholder(), nil
	}

	s.logger.Info("Generated image successfully",
		"model", model,
		"format", format,
		"bytes", len(data))

	return &Result{
		Kind:  KindImage,
		Data:  data,
		MIME:  "image/" + format,
		Model: model,
	}, nil
}

// describe expands the topic into a visual description. Failures are not
// retried: the topic itself is an acceptable description.
func (s *Service) describe(ctx context.Context, topic string) string {
	if s.describer == nil {
		return topic
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	description, err := s.describer.Generate(callCtx, s.generator.ImageDescription(topic))
	metrics.ObserveProviderCall(s.describer.GetName(), start, err)

	if err != nil || strings.TrimSpace(description) == "" {
		s.logger.Info("Description expansion failed, using topic verbatim",
			"topic", topic,
			"error", err)
		return topic
	}
	return strings.TrimSpace(description)
}

// render tries the primary model under the retrier, then the fast model once.
func (s *Service) render(ctx context.Context, description string) ([]byte, string, error) {
	var data []byte
	err := retry.Do(ctx, s.retryCfg, s.logger, "image-generation", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		start := time.Now()
		var renderErr error
		data, renderErr = s.primary.Render(callCtx, description)
		metrics.ObserveProviderCall(s.primary.ModelName(), start, renderErr)
		return renderErr
	})
	if err == nil {
		return data, s.primary.ModelName(), nil
	}
	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}

	s.logger.Info("Primary image model exhausted, trying the fast model",
		"primary", s.primary.ModelName(),
		"fallback", s.fallback.ModelName(),
		"error", err)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	data, err = s.fallback.Render(callCtx, description)
	metrics.ObserveProviderCall(s.fallback.ModelName(), start, err)
	if err != nil {
		return nil, "", err
	}
	return data, s.fallback.ModelName(), nil
}

func (s *Service) placeholder() *Result {
	metrics.PlaceholderImages.Inc()
	return &Result{
		Kind:           KindPlaceholder,
		PlaceholderURL: s.placeholderURL,
	}
}

// validateImage checks that the bytes decode as a real image and returns the
// detected format.
func validateImage(data []byte) (string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return "", errors.New("image has zero dimensions")
	}
	return format, nil
}

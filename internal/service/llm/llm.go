package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/postpilot/postpilot/internal/logging"
	"github.com/postpilot/postpilot/internal/metrics"
	"github.com/postpilot/postpilot/internal/service/llm/prompts"
	"github.com/postpilot/postpilot/internal/service/llm/providers"
	"github.com/postpilot/postpilot/internal/service/llm/validation"
	"github.com/postpilot/postpilot/internal/utils/retry"
)

// Common errors
var (
	ErrEmptyTopic        = errors.New("topic is required")
	ErrPolicyViolation   = errors.New("generated text violates the content policy")
	ErrUnavailable       = errors.New("all text providers are unavailable")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// FallbackPost is served when the primary and the fallback provider are both
// down. It satisfies the content policy, so callers can still render the
// text while the error signals the degradation.
const FallbackPost = "🚀 Great ideas rarely ship themselves. Behind every launch there is a team that kept iterating after the first version felt good enough. Keep shipping, keep measuring, and let the results write your next roadmap. What are you shipping this week? #Innovation #Growth"

// Service drafts posts across a primary and a fallback provider, repairs the
// output against the content policy and reports which stage produced it.
type Service struct {
	primary   providers.Provider
	fallback  providers.Provider
	generator *prompts.Generator
	retryCfg  retry.Config
	limiter   *rate.Limiter
	timeout   time.Duration
	logger    logging.Logger
}

// ServiceOptions contains configuration for the text service
type ServiceOptions struct {
	Primary     providers.Provider
	Fallback    providers.Provider
	Retry       retry.Config
	RateLimit   rate.Limit
	RateBurst   int
	CallTimeout time.Duration
	Logger      logging.Logger
}

// NewService creates a new text service with the specified options
func NewService(opts ServiceOptions) *Service {
	// Set default values if not provided
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = rate.Limit(10) // 10 requests per second by default
	}
	if opts.RateBurst == 0 {
		opts.RateBurst = 1
	}
	if opts.CallTimeout == 0 {
		opts.CallTimeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	return &Service{
		primary:   opts.Primary,
		fallback:  opts.Fallback,
		generator: prompts.NewGenerator(),
		retryCfg:  opts.Retry,
		limiter:   rate.NewLimiter(opts.RateLimit, opts.RateBurst),
		timeout:   opts.CallTimeout,
		logger:    opts.Logger,
	}
}

// GeneratePost runs the text pipeline for a topic.
//
// The primary provider gets exactly one attempt; when it fails the service
// switches providers instead of retrying in place. The fallback provider
// runs under the retrier because its transient failures (hosted models still
// loading) usually resolve within a few backoff rounds. When both providers
// fail, the static FallbackPost is returned together with ErrUnavailable so
// callers see the degradation and still have usable text.
//
// A result returned with ErrPolicyViolation carries the best-effort text.
// Repair is deterministic, so regenerating with the same draft cannot help.
func (s *Service) GeneratePost(ctx context.Context, topic string) (*PostResult, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, ErrEmptyTopic
	}

	metrics.GenerationRequests.WithLabelValues("text").Inc()
	startTime := time.Now()

	raw, err := s.callPrimary(ctx, topic)
	if err == nil {
		return s.finish(raw, SourcePrimary, s.primary.GetName(), startTime)
	}
	if errors.Is(err, ErrRateLimitExceeded) {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	s.logger.Info("Primary provider failed, switching to fallback",
		"provider", s.primary.GetName(),
		"error", err)

	raw, err = s.callFallback(ctx, topic)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("Fallback provider exhausted, serving static post",
			"provider", s.fallback.GetName(),
			"error", err)
		metrics.FallbackPosts.Inc()

		result := &PostResult{
			Text:           FallbackPost,
			IsValid:        true,
			Length:         len([]rune(FallbackPost)),
			Source:         SourceStatic,
			ProviderUsed:   "static",
			ProcessingTime: time.Since(startTime),
		}
		return result, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s.finish(raw, SourceFallback, s.fallback.GetName(), startTime)
}

// finish repairs a raw draft and assembles the result.
func (s *Service) finish(raw string, source Source, providerName string, startTime time.Time) (*PostResult, error) {
	repaired := validation.Repair(raw)

	result := &PostResult{
		Text:           repaired.Text,
		IsValid:        repaired.IsValid,
		Issues:         repaired.Issues,
		Length:         len([]rune(repaired.Text)),
		Source:         source,
		ProviderUsed:   providerName,
		ProcessingTime: time.Since(startTime),
	}

	if !repaired.IsValid {
		s.logger.Info("Draft failed the content policy after repair",
			"provider", providerName,
			"issues", repaired.Issues,
			"length", result.Length)
		return result, ErrPolicyViolation
	}

	s.logger.Info("Generated post successfully",
		"provider", providerName,
		"source", source,
		"length", result.Length,
		"time", result.ProcessingTime)
	return result, nil
}

// callPrimary sends one request to the primary provider.
func (s *Service) callPrimary(ctx context.Context, topic string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		s.logger.Error("Rate limit exceeded", "error", err)
		return "", ErrRateLimitExceeded
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.primary.Generate(callCtx, s.generator.PostInstruction(topic))
	metrics.ObserveProviderCall(s.primary.GetName(), start, err)
	return raw, err
}

// callFallback drives the fallback provider through the retrier. Each
// attempt gets its own timeout so one hanging call cannot consume the whole
// backoff schedule.
func (s *Service) callFallback(ctx context.Context, topic string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		s.logger.Error("Rate limit exceeded", "error", err)
		return "", ErrRateLimitExceeded
	}

	instruction := s.generator.FallbackInstruction(topic)

	var raw string
	err := retry.Do(ctx, s.retryCfg, s.logger, "text-generation", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		start := time.Now()
		var callErr error
		raw, callErr = s.fallback.Generate(callCtx, instruction)
		metrics.ObserveProviderCall(s.fallback.GetName(), start, callErr)
		return callErr
	})
	return raw, err
}

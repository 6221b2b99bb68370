// Package metrics exposes Prometheus instrumentation for the generation
// pipeline. Collectors are registered on the default registry at init time
// and served on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationRequests counts inbound generation requests by kind
	// ("text" or "image").
	GenerationRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postpilot_generation_requests_total",
		Help: "Generation requests received, by kind.",
	}, []string{"kind"})

	// ProviderCalls counts outbound provider calls by provider and outcome.
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postpilot_provider_calls_total",
		Help: "Outbound provider calls, by provider and outcome.",
	}, []string{"provider", "outcome"})

	// ProviderRetries counts backoff rounds against transient failures.
	ProviderRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postpilot_provider_retries_total",
		Help: "Retry attempts after transient provider failures, by operation.",
	}, []string{"operation"})

	// ProviderLatency observes outbound call duration per provider.
	ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postpilot_provider_latency_seconds",
		Help:    "Latency of outbound provider calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	// FallbackPosts counts posts served from the static text after every
	// provider failed.
	FallbackPosts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postpilot_fallback_posts_total",
		Help: "Posts served from the static fallback text.",
	})

	// PlaceholderImages counts image requests that degraded to the
	// placeholder reference.
	PlaceholderImages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postpilot_placeholder_images_total",
		Help: "Image generations that degraded to the placeholder reference.",
	})

	// PublishAttempts counts publish calls against the social network.
	PublishAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postpilot_publish_total",
		Help: "Publish attempts against the social network, by outcome.",
	}, []string{"outcome"})
)

// ObserveProviderCall records latency and outcome for one outbound call.
func ObserveProviderCall(provider string, start time.Time, err error) {
	ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ProviderCalls.WithLabelValues(provider, outcome).Inc()
}

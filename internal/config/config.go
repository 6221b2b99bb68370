package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	// Server
	Port         string
	Environment  string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Text generation
	GeminiAPIKey string
	GeminiModel  string
	HFAPIKey     string
	HFTextModel  string
	TextTimeout  time.Duration

	// Image generation
	HFImageModel         string
	HFImageFallbackModel string
	ImageTimeout         time.Duration
	PlaceholderImageURL  string

	// Provider retries
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration

	// LinkedIn OAuth
	LinkedInClientID     string
	LinkedInClientSecret string
	LinkedInRedirectURL  string

	// Token store (optional; in-memory when empty)
	RedisURI string
}

// NewConfig creates a new configuration from environment variables
func NewConfig() *Config {
	readTimeoutSec, _ := strconv.Atoi(getEnv("READ_TIMEOUT", "15"))
	writeTimeoutSec, _ := strconv.Atoi(getEnv("WRITE_TIMEOUT", "360"))
	textTimeoutSec, _ := strconv.Atoi(getEnv("TEXT_TIMEOUT", "15"))
	imageTimeoutSec, _ := strconv.Atoi(getEnv("IMAGE_TIMEOUT", "60"))
	retryMaxAttempts, _ := strconv.Atoi(getEnv("RETRY_MAX_ATTEMPTS", "5"))
	retryInitialDelaySec, _ := strconv.Atoi(getEnv("RETRY_INITIAL_DELAY", "1"))

	return &Config{
		// Server
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ReadTimeout:  time.Duration(readTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(writeTimeoutSec) * time.Second,

		// Text generation
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		HFAPIKey:     getEnv("HF_API_KEY", ""),
		HFTextModel:  getEnv("HF_TEXT_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
		TextTimeout:  time.Duration(textTimeoutSec) * time.Second,

		// Image generation
		HFImageModel:         getEnv("HF_IMAGE_MODEL", "stabilityai/stable-diffusion-xl-base-1.0"),
		HFImageFallbackModel: getEnv("HF_IMAGE_FALLBACK_MODEL", "runwayml/stable-diffusion-v1-5"),
		ImageTimeout:         time.Duration(imageTimeoutSec) * time.Second,
		PlaceholderImageURL:  getEnv("PLACEHOLDER_IMAGE_URL", "https://via.placeholder.com/1024x1024.png?text=PostPilot"),

		// Provider retries
		RetryMaxAttempts:  retryMaxAttempts,
		RetryInitialDelay: time.Duration(retryInitialDelaySec) * time.Second,

		// LinkedIn OAuth
		LinkedInClientID:     getEnv("LINKEDIN_CLIENT_ID", ""),
		LinkedInClientSecret: getEnv("LINKEDIN_CLIENT_SECRET", ""),
		LinkedInRedirectURL:  getEnv("LINKEDIN_REDIRECT_URL", "http://localhost:8080/auth/linkedin/callback"),

		// Token store
		RedisURI: getEnv("REDIS_URI", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/postpilot/postpilot/internal/api"
	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/internal/database"
	"github.com/postpilot/postpilot/internal/logging"
	"github.com/postpilot/postpilot/internal/service/imagegen"
	"github.com/postpilot/postpilot/internal/service/linkedin"
	"github.com/postpilot/postpilot/internal/service/llm"
	"github.com/postpilot/postpilot/internal/service/llm/providers"
	"github.com/postpilot/postpilot/internal/utils/retry"
)

// @title PostPilot API
// @version 1.0
// @description API for generating social posts with LLMs and publishing them to LinkedIn

// @contact.name API Support
// @contact.email support@postpilot.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize configuration
	cfg := config.NewConfig()

	// Initialize structured logging
	zlog, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	logger := logging.Wrap(zlog)

	ctx := context.Background()

	// Gemini drafts post text and image descriptions
	gemini, err := providers.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		zlog.Fatalf("Failed to initialize Gemini provider: %v", err)
	}
	defer gemini.Close()

	// Hugging Face text model picks up when Gemini fails
	hfText := providers.NewHuggingFaceProvider(cfg.HFAPIKey, cfg.HFTextModel, logger)

	retryCfg := retry.Config{
		MaxAttempts:  cfg.RetryMaxAttempts,
		InitialDelay: cfg.RetryInitialDelay,
	}

	textService := llm.NewService(llm.ServiceOptions{
		Primary:     gemini,
		Fallback:    hfText,
		Retry:       retryCfg,
		CallTimeout: cfg.TextTimeout,
		Logger:      logger,
	})

	imageService := imagegen.NewService(imagegen.ServiceOptions{
		Describer:      gemini,
		Primary:        imagegen.NewHFImageModel(cfg.HFAPIKey, cfg.HFImageModel, imagegen.PrimaryParams(), logger),
		Fallback:       imagegen.NewHFImageModel(cfg.HFAPIKey, cfg.HFImageFallbackModel, imagegen.FastParams(), logger),
		Retry:          retryCfg,
		CallTimeout:    cfg.ImageTimeout,
		PlaceholderURL: cfg.PlaceholderImageURL,
		Logger:         logger,
	})

	// Token store: Redis when configured, in-memory otherwise
	var store linkedin.Store
	if cfg.RedisURI != "" {
		redisClient, err := database.InitRedis(cfg.RedisURI)
		if err != nil {
			zlog.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		store = linkedin.NewRedisStore(redisClient.Client)
	} else {
		store = linkedin.NewMemoryStore()
	}

	authenticator := linkedin.NewAuthenticator(cfg.LinkedInClientID, cfg.LinkedInClientSecret, cfg.LinkedInRedirectURL, store, logger)
	publisher := linkedin.NewClient(logger)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"error":   err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH",
	}))

	// Setup Swagger
	api.SetupSwagger(app)

	// Setup routes
	api.SetupRoutes(app, api.Deps{
		Text:      textService,
		Images:    imageService,
		Publisher: publisher,
		Auth:      authenticator,
		Store:     store,
		Logger:    logger,
	})

	// Start server
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Fatalf("Failed to start server: %v", err)
		}
	}()
	zlog.Infow("PostPilot started", "port", cfg.Port, "environment", cfg.Environment)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zlog.Infow("Shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Fatalf("Server shutdown failed: %v", err)
	}
}

package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/postpilot/postpilot/internal/api/handlers"
	"github.com/postpilot/postpilot/internal/logging"
	"github.com/postpilot/postpilot/internal/service/imagegen"
	"github.com/postpilot/postpilot/internal/service/linkedin"
	"github.com/postpilot/postpilot/internal/service/llm"
)

// Deps carries the wired services the routes dispatch to.
type Deps struct {
	Text      *llm.Service
	Images    *imagegen.Service
	Publisher *linkedin.Client
	Auth      *linkedin.Authenticator
	Store     linkedin.Store
	Logger    logging.Logger
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, deps Deps) {
	// Initialize handlers
	postsHandler := handlers.NewPostsHandler(deps.Text, deps.Images, deps.Publisher, deps.Store, deps.Logger)
	imagesHandler := handlers.NewImagesHandler(deps.Images, deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Store, deps.Logger)

	// API group
	api := app.Group("/api")

	// Health check route
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	// Post routes
	posts := api.Group("/posts")
	posts.Post("/", postsHandler.Publish)
	posts.Post("/generate", postsHandler.Generate)

	// Image routes
	images := api.Group("/images")
	images.Post("/generate", imagesHandler.Generate)

	// LinkedIn OAuth routes live outside /api so the callback matches the
	// redirect URL registered with LinkedIn.
	auth := app.Group("/auth/linkedin")
	auth.Get("/login", authHandler.Login)
	auth.Get("/callback", authHandler.Callback)
	auth.Get("/status", authHandler.Status)

	// Prometheus metrics
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot/internal/logging"
	"github.com/postpilot/postpilot/internal/service/imagegen"
	"github.com/postpilot/postpilot/internal/service/linkedin"
	"github.com/postpilot/postpilot/internal/service/llm"
)

// PostGenerator drafts a post for a topic and reports the policy verdict.
type PostGenerator interface {
	GeneratePost(ctx context.Context, topic string) (*llm.PostResult, error)
}

// ImageGenerator renders an illustration for a topic. It degrades to a
// placeholder result instead of failing.
type ImageGenerator interface {
	Generate(ctx context.Context, topic string) (*imagegen.Result, error)
}

// Publisher pushes a finished post to LinkedIn and returns the share URN.
type Publisher interface {
	Publish(ctx context.Context, accessToken, authorURN, text string, img *imagegen.Result) (string, error)
}

// TokenSource exposes the stored LinkedIn credential set.
type TokenSource interface {
	Token(ctx context.Context) (*linkedin.StoredToken, error)
}

// PostsHandler handles post drafting and publishing requests
type PostsHandler struct {
	Text      PostGenerator
	Images    ImageGenerator
	Publisher Publisher
	Tokens    TokenSource
	Logger    logging.Logger
}

// NewPostsHandler creates a new posts handler
func NewPostsHandler(text PostGenerator, images ImageGenerator, publisher Publisher, tokens TokenSource, log logging.Logger) *PostsHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &PostsHandler{
		Text:      text,
		Images:    images,
		Publisher: publisher,
		Tokens:    tokens,
		Logger:    log,
	}
}

// GeneratePostRequest represents a request to draft a post
type GeneratePostRequest struct {
	Topic string `json:"topic" example:"why code reviews make teams faster"`
}

// PublishPostRequest represents a request to draft and publish a post
type PublishPostRequest struct {
	Topic     string `json:"topic" example:"why code reviews make teams faster"`
	WithImage *bool  `json:"with_image,omitempty" example:"true"`
}

// SuccessResponse represents a standard success envelope
type SuccessResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message,omitempty" example:"Operation completed successfully"`
	Data    interface{} `json:"data,omitempty" swaggertype:"object"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"Something went wrong"`
}

// @Summary Draft a social post
// @Description Generates a post for the topic, repairs it against the content policy, and reports the verdict
// @Tags posts
// @Accept json
// @Produce json
// @Param request body handlers.GeneratePostRequest true "Topic to write about"
// @Success 200 {object} handlers.SuccessResponse "Post drafted"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 422 {object} handlers.ErrorResponse "Draft still violates the content policy, best-effort text included"
// @Failure 429 {object} handlers.ErrorResponse "Generation rate limit exceeded"
// @Failure 502 {object} handlers.ErrorResponse "Generation failed"
// @Failure 503 {object} handlers.ErrorResponse "All providers down, fallback text included"
// @Router /api/posts/generate [post]
func (h *PostsHandler) Generate(c *fiber.Ctx) error {
	req := new(GeneratePostRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
	}

	result, err := h.Text.GeneratePost(c.Context(), req.Topic)
	if err != nil {
		return h.generationError(c, result, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// @Summary Draft and publish a post to LinkedIn
// @Description Runs the full pipeline: drafts the text, optionally renders an image, and publishes the result to the connected LinkedIn account
// @Tags posts
// @Accept json
// @Produce json
// @Param request body handlers.PublishPostRequest true "Topic and image preference"
// @Success 200 {object} handlers.SuccessResponse "Post published"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 401 {object} handlers.ErrorResponse "No LinkedIn account connected"
// @Failure 422 {object} handlers.ErrorResponse "Draft violates the content policy, nothing published"
// @Failure 429 {object} handlers.ErrorResponse "Generation rate limit exceeded"
// @Failure 502 {object} handlers.ErrorResponse "LinkedIn rejected the share"
// @Failure 503 {object} handlers.ErrorResponse "All providers down, fallback text included, nothing published"
// @Router /api/posts [post]
func (h *PostsHandler) Publish(c *fiber.Ctx) error {
	req := new(PublishPostRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
	}

	token, err := h.Tokens.Token(c.Context())
	if err != nil {
		if errors.Is(err, linkedin.ErrNoToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "No LinkedIn account connected, visit /auth/linkedin/login first",
			})
		}
		h.Logger.Error("Failed to load LinkedIn credentials", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to load LinkedIn credentials",
		})
	}
	if token.Expired() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "LinkedIn token expired, visit /auth/linkedin/login to reconnect",
		})
	}

	result, err := h.Text.GeneratePost(c.Context(), req.Topic)
	if err != nil {
		// Degraded or invalid text is reported back, never silently published.
		return h.generationError(c, result, err)
	}

	var img *imagegen.Result
	if req.WithImage == nil || *req.WithImage {
		img, err = h.Images.Generate(c.Context(), req.Topic)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"error":   "Image generation was cancelled",
			})
		}
	}

	postURN, err := h.Publisher.Publish(c.Context(), token.AccessToken, token.PersonURN, result.Text, img)
	if err != nil {
		h.Logger.Error("LinkedIn publish failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "LinkedIn rejected the share",
		})
	}

	imageInfo := fiber.Map{"status": "none"}
	if img != nil {
		if img.Placeholder() {
			imageInfo = fiber.Map{"status": "placeholder", "url": img.PlaceholderURL}
		} else {
			imageInfo = fiber.Map{"status": "attached", "model": img.Model}
		}
	}
	degraded := result.Source != llm.SourcePrimary || (img != nil && img.Placeholder())

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"post_urn": postURN,
			"text":     result.Text,
			"source":   result.Source,
			"length":   result.Length,
			"image":    imageInfo,
			"degraded": degraded,
		},
	})
}

// generationError maps text pipeline errors to responses. Degraded results
// ride along in the body so the caller can still use the text.
func (h *PostsHandler) generationError(c *fiber.Ctx, result *llm.PostResult, err error) error {
	switch {
	case errors.Is(err, llm.ErrEmptyTopic):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Topic is required",
		})
	case errors.Is(err, llm.ErrPolicyViolation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "Draft still violates the content policy: " + strings.Join(result.Issues, "; "),
			"data":    result,
		})
	case errors.Is(err, llm.ErrUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "Text providers are unavailable, fallback post included",
			"data":    result,
		})
	case errors.Is(err, llm.ErrRateLimitExceeded):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"success": false,
			"error":   "Generation rate limit exceeded",
		})
	default:
		h.Logger.Error("Post generation failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"success": false,
			"error":   "Failed to generate post",
		})
	}
}

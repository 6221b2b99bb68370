package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/postpilot/postpilot/internal/logging"
)

// ImagesHandler handles standalone illustration requests
type ImagesHandler struct {
	Images ImageGenerator
	Logger logging.Logger
}

// NewImagesHandler creates a new images handler
func NewImagesHandler(images ImageGenerator, log logging.Logger) *ImagesHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &ImagesHandler{
		Images: images,
		Logger: log,
	}
}

// GenerateImageRequest represents a request to render an illustration
type GenerateImageRequest struct {
	Topic string `json:"topic" example:"why code reviews make teams faster"`
}

// @Summary Render a post illustration
// @Description Generates an image for the topic, falling back through smaller models. When every model fails the request redirects to a placeholder image instead of erroring
// @Tags images
// @Accept json
// @Produce png
// @Param request body handlers.GenerateImageRequest true "Topic to illustrate"
// @Success 200 {string} binary "Image bytes, model named in the X-Image-Model header"
// @Success 302 {string} string "Redirect to the placeholder image"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 503 {object} handlers.ErrorResponse "Request cancelled"
// @Router /api/images/generate [post]
func (h *ImagesHandler) Generate(c *fiber.Ctx) error {
	req := new(GenerateImageRequest)
	if err := c.BodyParser(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
	}
	if strings.TrimSpace(req.Topic) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Topic is required",
		})
	}

	result, err := h.Images.Generate(c.Context(), req.Topic)
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success": false,
			"error":   "Image generation was cancelled",
		})
	}

	if result.Placeholder() {
		return c.Redirect(result.PlaceholderURL, fiber.StatusFound)
	}

	c.Set("X-Image-Model", result.Model)
	c.Set(fiber.HeaderContentType, result.MIME)
	return c.Send(result.Data)
}

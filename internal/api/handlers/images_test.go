package handlers

import (
	"io"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImagesApp(images ImageGenerator) *fiber.App {
	app := fiber.New()
	h := NewImagesHandler(images, nil)
	app.Post("/api/images/generate", h.Generate)
	return app
}

func TestGenerateImage(t *testing.T) {
	t.Run("serves the rendered bytes", func(t *testing.T) {
		images := &fakeImageService{result: realImage()}
		app := newImagesApp(images)

		resp := postJSON(t, app, "/api/images/generate", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
		assert.Equal(t, realImage().Model, resp.Header.Get("X-Image-Model"))

		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, realImage().Data, data)
	})

	t.Run("placeholder redirects instead of erroring", func(t *testing.T) {
		images := &fakeImageService{result: placeholderImage()}
		app := newImagesApp(images)

		resp := postJSON(t, app, "/api/images/generate", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusFound, resp.StatusCode)

		location := resp.Header.Get(fiber.HeaderLocation)
		assert.Contains(t, location, "placeholder")
	})

	t.Run("empty topic is a bad request", func(t *testing.T) {
		images := &fakeImageService{}
		app := newImagesApp(images)

		resp := postJSON(t, app, "/api/images/generate", fiber.Map{"topic": " "})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, 0, images.calls)
	})
}

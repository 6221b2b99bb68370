package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot/internal/service/imagegen"
	"github.com/postpilot/postpilot/internal/service/linkedin"
	"github.com/postpilot/postpilot/internal/service/llm"
)

type fakeTextService struct {
	result *llm.PostResult
	err    error
	calls  int
}

func (f *fakeTextService) GeneratePost(_ context.Context, topic string) (*llm.PostResult, error) {
	f.calls++
	if strings.TrimSpace(topic) == "" {
		return nil, llm.ErrEmptyTopic
	}
	return f.result, f.err
}

type fakeImageService struct {
	result *imagegen.Result
	err    error
	calls  int
}

func (f *fakeImageService) Generate(_ context.Context, _ string) (*imagegen.Result, error) {
	f.calls++
	return f.result, f.err
}

type fakePublisher struct {
	urn      string
	err      error
	calls    int
	gotText  string
	gotImage *imagegen.Result
}

func (f *fakePublisher) Publish(_ context.Context, _, _, text string, img *imagegen.Result) (string, error) {
	f.calls++
	f.gotText = text
	f.gotImage = img
	if f.err != nil {
		return "", f.err
	}
	return f.urn, nil
}

type fakeTokens struct {
	token *linkedin.StoredToken
	err   error
}

func (f *fakeTokens) Token(context.Context) (*linkedin.StoredToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

func newPostsApp(text PostGenerator, images ImageGenerator, pub Publisher, tokens TokenSource) *fiber.App {
	app := fiber.New()
	h := NewPostsHandler(text, images, pub, tokens, nil)
	app.Post("/api/posts", h.Publish)
	app.Post("/api/posts/generate", h.Generate)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func primaryResult() *llm.PostResult {
	return &llm.PostResult{
		Text:         strings.Repeat("a", 240) + " 🚀 #One #Two",
		IsValid:      true,
		Length:       252,
		Source:       llm.SourcePrimary,
		ProviderUsed: "gemini",
	}
}

func liveToken() *linkedin.StoredToken {
	return &linkedin.StoredToken{
		AccessToken: "token-123",
		ExpiresAt:   time.Now().Add(time.Hour),
		PersonURN:   "urn:li:person:abc",
		Name:        "Ada Example",
	}
}

func realImage() *imagegen.Result {
	return &imagegen.Result{
		Kind:  imagegen.KindImage,
		Data:  []byte{0x89, 'P', 'N', 'G'},
		MIME:  "image/png",
		Model: "stabilityai/stable-diffusion-xl-base-1.0",
	}
}

func placeholderImage() *imagegen.Result {
	return &imagegen.Result{
		Kind:           imagegen.KindPlaceholder,
		PlaceholderURL: "https://via.placeholder.com/1024x1024.png?text=PostPilot",
	}
}

func TestGeneratePost(t *testing.T) {
	t.Run("returns the drafted post", func(t *testing.T) {
		text := &fakeTextService{result: primaryResult()}
		app := newPostsApp(text, &fakeImageService{}, &fakePublisher{}, &fakeTokens{})

		resp := postJSON(t, app, "/api/posts/generate", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, true, body["success"])

		data := body["data"].(map[string]interface{})
		assert.Equal(t, primaryResult().Text, data["text"])
		assert.Equal(t, "primary", data["source"])
		assert.Equal(t, true, data["is_valid"])
	})

	t.Run("empty topic is a bad request", func(t *testing.T) {
		app := newPostsApp(&fakeTextService{}, &fakeImageService{}, &fakePublisher{}, &fakeTokens{})

		resp := postJSON(t, app, "/api/posts/generate", fiber.Map{"topic": "   "})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
	})

	t.Run("policy violation carries the best-effort text", func(t *testing.T) {
		short := &llm.PostResult{
			Text:    "Too short 🚀 #One #Two",
			IsValid: false,
			Issues:  []string{"text below minimum length"},
			Length:  21,
			Source:  llm.SourcePrimary,
		}
		text := &fakeTextService{result: short, err: llm.ErrPolicyViolation}
		app := newPostsApp(text, &fakeImageService{}, &fakePublisher{}, &fakeTokens{})

		resp := postJSON(t, app, "/api/posts/generate", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])
		assert.Contains(t, body["error"], "content policy")

		data := body["data"].(map[string]interface{})
		assert.Equal(t, short.Text, data["text"])
		assert.Equal(t, false, data["is_valid"])
	})

	t.Run("providers down returns 503 with the fallback post", func(t *testing.T) {
		static := &llm.PostResult{
			Text:    llm.FallbackPost,
			IsValid: true,
			Source:  llm.SourceStatic,
		}
		text := &fakeTextService{result: static, err: llm.ErrUnavailable}
		app := newPostsApp(text, &fakeImageService{}, &fakePublisher{}, &fakeTokens{})

		resp := postJSON(t, app, "/api/posts/generate", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Equal(t, false, body["success"])

		data := body["data"].(map[string]interface{})
		assert.Equal(t, llm.FallbackPost, data["text"])
		assert.Equal(t, "static", data["source"])
	})

	t.Run("rate limit maps to 429", func(t *testing.T) {
		text := &fakeTextService{err: llm.ErrRateLimitExceeded, result: primaryResult()}
		app := newPostsApp(text, &fakeImageService{}, &fakePublisher{}, &fakeTokens{})

		resp := postJSON(t, app, "/api/posts/generate", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	})

	t.Run("unexpected errors map to 502", func(t *testing.T) {
		text := &fakeTextService{err: errors.New("boom"), result: primaryResult()}
		app := newPostsApp(text, &fakeImageService{}, &fakePublisher{}, &fakeTokens{})

		resp := postJSON(t, app, "/api/posts/generate", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	})
}

func TestPublishPost(t *testing.T) {
	t.Run("publishes text and image", func(t *testing.T) {
		text := &fakeTextService{result: primaryResult()}
		images := &fakeImageService{result: realImage()}
		pub := &fakePublisher{urn: "urn:li:share:123"}
		app := newPostsApp(text, images, pub, &fakeTokens{token: liveToken()})

		resp := postJSON(t, app, "/api/posts", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		require.Equal(t, 1, pub.calls)
		assert.Equal(t, primaryResult().Text, pub.gotText)
		require.NotNil(t, pub.gotImage)
		assert.Equal(t, imagegen.KindImage, pub.gotImage.Kind)

		body := decodeBody(t, resp)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "urn:li:share:123", data["post_urn"])
		assert.Equal(t, false, data["degraded"])

		img := data["image"].(map[string]interface{})
		assert.Equal(t, "attached", img["status"])
		assert.Equal(t, realImage().Model, img["model"])
	})

	t.Run("with_image false skips the image pipeline", func(t *testing.T) {
		text := &fakeTextService{result: primaryResult()}
		images := &fakeImageService{result: realImage()}
		pub := &fakePublisher{urn: "urn:li:share:123"}
		app := newPostsApp(text, images, pub, &fakeTokens{token: liveToken()})

		resp := postJSON(t, app, "/api/posts", fiber.Map{"topic": "code reviews", "with_image": false})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		assert.Equal(t, 0, images.calls)
		assert.Nil(t, pub.gotImage)

		body := decodeBody(t, resp)
		data := body["data"].(map[string]interface{})
		img := data["image"].(map[string]interface{})
		assert.Equal(t, "none", img["status"])
	})

	t.Run("placeholder image publishes text-only and reports degraded", func(t *testing.T) {
		text := &fakeTextService{result: primaryResult()}
		images := &fakeImageService{result: placeholderImage()}
		pub := &fakePublisher{urn: "urn:li:share:456"}
		app := newPostsApp(text, images, pub, &fakeTokens{token: liveToken()})

		resp := postJSON(t, app, "/api/posts", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, true, data["degraded"])

		img := data["image"].(map[string]interface{})
		assert.Equal(t, "placeholder", img["status"])
		assert.Contains(t, img["url"], "placeholder")
	})

	t.Run("fallback text reports degraded", func(t *testing.T) {
		fallback := primaryResult()
		fallback.Source = llm.SourceFallback
		text := &fakeTextService{result: fallback}
		app := newPostsApp(text, &fakeImageService{result: realImage()}, &fakePublisher{urn: "urn:li:share:789"}, &fakeTokens{token: liveToken()})

		resp := postJSON(t, app, "/api/posts", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, true, data["degraded"])
	})

	t.Run("no stored token is unauthorized", func(t *testing.T) {
		pub := &fakePublisher{}
		app := newPostsApp(&fakeTextService{result: primaryResult()}, &fakeImageService{}, pub, &fakeTokens{err: linkedin.ErrNoToken})

		resp := postJSON(t, app, "/api/posts", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, 0, pub.calls)

		body := decodeBody(t, resp)
		assert.Contains(t, body["error"], "/auth/linkedin/login")
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		expired := liveToken()
		expired.ExpiresAt = time.Now().Add(-time.Hour)
		pub := &fakePublisher{}
		app := newPostsApp(&fakeTextService{result: primaryResult()}, &fakeImageService{}, pub, &fakeTokens{token: expired})

		resp := postJSON(t, app, "/api/posts", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, 0, pub.calls)
	})

	t.Run("policy violation publishes nothing", func(t *testing.T) {
		invalid := primaryResult()
		invalid.IsValid = false
		invalid.Issues = []string{"no emoji present"}
		text := &fakeTextService{result: invalid, err: llm.ErrPolicyViolation}
		pub := &fakePublisher{}
		app := newPostsApp(text, &fakeImageService{}, pub, &fakeTokens{token: liveToken()})

		resp := postJSON(t, app, "/api/posts", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, 0, pub.calls)
	})

	t.Run("providers down publishes nothing and returns the fallback", func(t *testing.T) {
		static := &llm.PostResult{Text: llm.FallbackPost, IsValid: true, Source: llm.SourceStatic}
		text := &fakeTextService{result: static, err: llm.ErrUnavailable}
		pub := &fakePublisher{}
		app := newPostsApp(text, &fakeImageService{}, pub, &fakeTokens{token: liveToken()})

		resp := postJSON(t, app, "/api/posts", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, 0, pub.calls)

		body := decodeBody(t, resp)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, llm.FallbackPost, data["text"])
	})

	t.Run("publish failure maps to 502", func(t *testing.T) {
		pub := &fakePublisher{err: errors.New("403 from linkedin")}
		app := newPostsApp(&fakeTextService{result: primaryResult()}, &fakeImageService{result: realImage()}, pub, &fakeTokens{token: liveToken()})

		resp := postJSON(t, app, "/api/posts", fiber.Map{"topic": "code reviews"})
		require.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

		body := decodeBody(t, resp)
		assert.Contains(t, body["error"], "LinkedIn")
	})
}

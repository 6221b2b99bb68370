package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot/internal/service/llm/providers"
	"github.com/postpilot/postpilot/internal/utils/retry"
)

type fakeDescriber struct {
	description string
	err         error
}

func (f *fakeDescriber) Generate(ctx context.Context, instruction string) (string, error) {
	return f.description, f.err
}

func (f *fakeDescriber) GetName() string { return "fake-describer" }
func (f *fakeDescriber) Close() error    { return nil }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func newTestModel(t *testing.T, name string, handler http.HandlerFunc) *HFImageModel {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := NewHFImageModel("test-key", name, PrimaryParams(), nil)
	m.baseURL = server.URL
	return m
}

func newTestService(primary, fallback *HFImageModel, describer providers.Provider) *Service {
	return NewService(ServiceOptions{
		Describer:      describer,
		Primary:        primary,
		Fallback:       fallback,
		Retry:          retry.Config{MaxAttempts: 5, InitialDelay: time.Millisecond},
		PlaceholderURL: "https://cdn.example.com/postpilot-placeholder.png",
	})
}

func failingModel(t *testing.T, name string, status int) *HFImageModel {
	t.Helper()
	return newTestModel(t, name, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(`{"error":"nope"}`))
	})
}

func TestGenerateRendersImage(t *testing.T) {
	img := pngBytes(t)

	var gotRequest HFImageRequest
	var gotAuth string
	primary := newTestModel(t, "stabilityai/stable-diffusion-xl-base-1.0", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotRequest)
		w.Write(img)
	})
	fallback := failingModel(t, "runwayml/stable-diffusion-v1-5", http.StatusInternalServerError)
	describer := &fakeDescriber{description: "a modern office with warm light"}

	result, err := newTestService(primary, fallback, describer).Generate(context.Background(), "team growth")

	require.NoError(t, err)
	assert.Equal(t, KindImage, result.Kind)
	assert.False(t, result.Placeholder())
	assert.Equal(t, "image/png", result.MIME)
	assert.Equal(t, "stabilityai/stable-diffusion-xl-base-1.0", result.Model)
	assert.Equal(t, img, result.Data)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "a modern office with warm light", gotRequest.Inputs)
	assert.Equal(t, 1024, gotRequest.Parameters.Width)
	assert.NotEmpty(t, gotRequest.Parameters.NegativePrompt)
}

func TestGenerateUsesTopicWhenDescriberFails(t *testing.T) {
	img := pngBytes(t)

	var gotRequest HFImageRequest
	primary := newTestModel(t, "stabilityai/stable-diffusion-xl-base-1.0", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotRequest)
		w.Write(img)
	})
	fallback := failingModel(t, "runwayml/stable-diffusion-v1-5", http.StatusInternalServerError)
	describer := &fakeDescriber{err: errors.New("quota exceeded")}

	result, err := newTestService(primary, fallback, describer).Generate(context.Background(), "team growth")

	require.NoError(t, err)
	assert.Equal(t, KindImage, result.Kind)
	assert.Equal(t, "team growth", gotRequest.Inputs, "the topic is the description of last resort")
}

func TestGenerateWithoutDescriber(t *testing.T) {
	img := pngBytes(t)

	var gotRequest HFImageRequest
	primary := newTestModel(t, "stabilityai/stable-diffusion-xl-base-1.0", func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotRequest)
		w.Write(img)
	})
	fallback := failingModel(t, "runwayml/stable-diffusion-v1-5", http.StatusInternalServerError)

	result, err := newTestService(primary, fallback, nil).Generate(context.Background(), "team growth")

	require.NoError(t, err)
	assert.Equal(t, KindImage, result.Kind)
	assert.Equal(t, "team growth", gotRequest.Inputs)
}

func TestGenerateRetriesWhileModelLoads(t *testing.T) {
	img := pngBytes(t)

	var calls int32
	primary := newTestModel(t, "stabilityai/stable-diffusion-xl-base-1.0", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"Model is currently loading"}`))
			return
		}
		w.Write(img)
	})
	fallback := failingModel(t, "runwayml/stable-diffusion-v1-5", http.StatusInternalServerError)

	result, err := newTestService(primary, fallback, nil).Generate(context.Background(), "team growth")

	require.NoError(t, err)
	assert.Equal(t, "stabilityai/stable-diffusion-xl-base-1.0", result.Model)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGenerateFallsBackToFastModel(t *testing.T) {
	img := pngBytes(t)

	primary := failingModel(t, "stabilityai/stable-diffusion-xl-base-1.0", http.StatusServiceUnavailable)
	fallback := newTestModel(t, "runwayml/stable-diffusion-v1-5", func(w http.ResponseWriter, r *http.Request) {
		w.Write(img)
	})

	result, err := newTestService(primary, fallback, nil).Generate(context.Background(), "team growth")

	require.NoError(t, err)
	assert.Equal(t, KindImage, result.Kind)
	assert.Equal(t, "runwayml/stable-diffusion-v1-5", result.Model)
}

func TestGeneratePlaceholderWhenAllModelsFail(t *testing.T) {
	primary := failingModel(t, "stabilityai/stable-diffusion-xl-base-1.0", http.StatusServiceUnavailable)
	fallback := failingModel(t, "runwayml/stable-diffusion-v1-5", http.StatusInternalServerError)

	result, err := newTestService(primary, fallback, nil).Generate(context.Background(), "team growth")

	require.NoError(t, err, "image generation never fails hard")
	assert.True(t, result.Placeholder())
	assert.Contains(t, result.PlaceholderURL, "placeholder")
	assert.Empty(t, result.Data)
}

func TestGeneratePlaceholderOnCorruptBytes(t *testing.T) {
	primary := newTestModel(t, "stabilityai/stable-diffusion-xl-base-1.0", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("definitely not an image"))
	})
	fallback := failingModel(t, "runwayml/stable-diffusion-v1-5", http.StatusInternalServerError)

	result, err := newTestService(primary, fallback, nil).Generate(context.Background(), "team growth")

	require.NoError(t, err)
	assert.True(t, result.Placeholder(), "bytes that do not decode are as good as no bytes")
}

func TestGenerateHonorsContextCancellation(t *testing.T) {
	primary := failingModel(t, "stabilityai/stable-diffusion-xl-base-1.0", http.StatusServiceUnavailable)
	fallback := failingModel(t, "runwayml/stable-diffusion-v1-5", http.StatusInternalServerError)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(primary, fallback, nil).Generate(ctx, "team growth")

	require.ErrorIs(t, err, context.Canceled)
}

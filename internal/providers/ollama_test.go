package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexassist/internal/models"
	"lexassist/internal/ollama"
)

// fakeRuntime serves /api/tags with the given models and answers /api/chat with the handler
func fakeRuntime(t *testing.T, installed []string, chat http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		resp := ollama.ListModelsResponse{}
		for _, name := range installed {
			resp.Models = append(resp.Models, ollama.ModelInfo{Name: name})
		}
		json.NewEncoder(w).Encode(resp)
	})
	if chat != nil {
		mux.HandleFunc("/api/chat", chat)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func runtimeConfig(id models.ProviderID, url string) models.ModelConfig {
	return models.ModelConfig{
		Provider:    id,
		TextModel:   "gemma3:4b",
		VisionModel: "llava:7b",
		APIURL:      url,
		Description: "Local Ollama instance",
	}
}

func TestHasModel(t *testing.T) {
	installed := []string{"gemma3:4b-it-q4_K_M", "llava:7b", "nomic-embed-text:latest"}

	assert.True(t, HasModel(installed, "gemma3:4b"))
	assert.True(t, HasModel(installed, "LLaVA:7b"))
	assert.True(t, HasModel(installed, "nomic-embed-text"))
	assert.False(t, HasModel(installed, "gemma3:12b"))
	assert.False(t, HasModel([]string{"gemma3:14b"}, "gemma3:4b"))
	assert.False(t, HasModel([]string{"llava:17b", "llava:latest"}, "llava:7b"))
	assert.True(t, HasModel([]string{"registry.local/llava:7b"}, "llava:7b"))
	assert.False(t, HasModel(installed, "llama3.2:3b"))
	assert.False(t, HasModel(installed, ""))
	assert.False(t, HasModel(nil, "llava:7b"))
}

func TestOllamaCheckAvailabilityAllPresent(t *testing.T) {
	server := fakeRuntime(t, []string{"gemma3:4b", "llava:7b"}, nil)
	p := NewOllamaProvider(runtimeConfig(models.ProviderOllamaLocal, server.URL), time.Second)

	availability := p.CheckAvailability(context.Background())
	assert.True(t, availability.TextModel)
	assert.True(t, availability.VisionModel)
	assert.Empty(t, availability.Errors)
}

func TestOllamaCheckAvailabilityMissingModels(t *testing.T) {
	server := fakeRuntime(t, []string{"gemma3:4b"}, nil)

	local := NewOllamaProvider(runtimeConfig(models.ProviderOllamaLocal, server.URL), time.Second)
	availability := local.CheckAvailability(context.Background())
	assert.True(t, availability.TextModel)
	assert.False(t, availability.VisionModel)
	require.Len(t, availability.Errors, 1)
	assert.Equal(t, "Vision model llava:7b not found. Run: ollama pull llava:7b", availability.Errors[0])

	remote := NewOllamaProvider(runtimeConfig(models.ProviderOllamaRemote, server.URL), time.Second)
	availability = remote.CheckAvailability(context.Background())
	require.Len(t, availability.Errors, 1)
	assert.Contains(t, availability.Errors[0], "Pull llava:7b on your remote Ollama instance")
}

func TestOllamaCheckAvailabilityUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	p := NewOllamaProvider(runtimeConfig(models.ProviderOllamaRemote, url), time.Second)
	availability := p.CheckAvailability(context.Background())

	assert.False(t, availability.TextModel)
	assert.False(t, availability.VisionModel)
	require.Len(t, availability.Errors, 1)
	assert.True(t, strings.HasPrefix(availability.Errors[0], "Failed to connect to remote ("+url+") Ollama instance"))
}

func TestOllamaGenerateText(t *testing.T) {
	server := fakeRuntime(t, nil, func(w http.ResponseWriter, r *http.Request) {
		var req ollama.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemma3:4b", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, models.RoleSystem, req.Messages[0].Role)

		json.NewEncoder(w).Encode(ollama.ChatResponse{
			Message: ollama.Message{Role: models.RoleAssistant, Content: "You may be owed your deposit."},
			Done:    true,
		})
	})
	p := NewOllamaProvider(runtimeConfig(models.ProviderOllamaLocal, server.URL), time.Second)

	resp := p.GenerateText(context.Background(), []models.ModelMessage{
		{Role: models.RoleSystem, Content: "You are a helpful legal assistant AI."},
		{Role: models.RoleUser, Content: "My landlord won't return my deposit"},
	})
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "You may be owed your deposit.", resp.Content)
	assert.Equal(t, "gemma3:4b (Local Ollama instance)", resp.ModelUsed)
}

func TestOllamaGenerateTextFailure(t *testing.T) {
	server := fakeRuntime(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "model runner crashed"})
	})
	p := NewOllamaProvider(runtimeConfig(models.ProviderOllamaLocal, server.URL), time.Second)

	resp := p.GenerateText(context.Background(), []models.ModelMessage{{Role: models.RoleUser, Content: "hi"}})
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "model runner crashed")
	assert.Empty(t, resp.Content)
}

func TestOllamaAnalyzeImageStripsDataURL(t *testing.T) {
	server := fakeRuntime(t, nil, func(w http.ResponseWriter, r *http.Request) {
		var req ollama.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llava:7b", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, VisionPrompt("is this a valid lease?"), req.Messages[0].Content)
		assert.Equal(t, []string{"aGVsbG8="}, req.Messages[0].Images)

		json.NewEncoder(w).Encode(ollama.ChatResponse{
			Message: ollama.Message{Role: models.RoleAssistant, Content: "A one-page residential lease."},
		})
	})
	p := NewOllamaProvider(runtimeConfig(models.ProviderOllamaLocal, server.URL), time.Second)

	resp := p.AnalyzeImage(context.Background(), models.ImageData{
		FileName: "lease.png",
		MimeType: "image/png",
		Base64:   "data:image/png;base64,aGVsbG8=",
	}, "is this a valid lease?")
	require.True(t, resp.Success, resp.Error)
	assert.Equal(t, "A one-page residential lease.", resp.Content)
}

func TestOllamaEmptyAnswerIsFailure(t *testing.T) {
	server := fakeRuntime(t, nil, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollama.ChatResponse{
			Message: ollama.Message{Role: models.RoleAssistant, Content: "  \n"},
			Done:    true,
		})
	})
	p := NewOllamaProvider(runtimeConfig(models.ProviderOllamaLocal, server.URL), time.Second)

	text := p.GenerateText(context.Background(), []models.ModelMessage{{Role: models.RoleUser, Content: "hi"}})
	assert.False(t, text.Success)
	assert.Empty(t, text.Content)
	assert.Equal(t, "Ollama text generation returned an empty response", text.Error)

	image := p.AnalyzeImage(context.Background(), models.ImageData{FileName: "a.png", MimeType: "image/png", Base64: "aGVsbG8="}, "q")
	assert.False(t, image.Success)
	assert.Empty(t, image.Content)
	assert.Equal(t, "Ollama image analysis returned an empty response", image.Error)
}

func TestOllamaFailureHidesTransportDetail(t *testing.T) {
	server := fakeRuntime(t, nil, func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		conn.Close()
	})
	p := NewOllamaProvider(runtimeConfig(models.ProviderOllamaLocal, server.URL), time.Second)

	resp := p.GenerateText(context.Background(), []models.ModelMessage{{Role: models.RoleUser, Content: "hi"}})
	assert.False(t, resp.Success)
	assert.Equal(t, "Ollama text generation failed: Ollama is not reachable", resp.Error)
	assert.NotContains(t, resp.Error, server.URL)
}

func TestOllamaMissingModelSuggestsPull(t *testing.T) {
	server := fakeRuntime(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "model 'llava:7b' not found"})
	})
	p := NewOllamaProvider(runtimeConfig(models.ProviderOllamaLocal, server.URL), time.Second)

	resp := p.AnalyzeImage(context.Background(), models.ImageData{FileName: "a.png", MimeType: "image/png", Base64: "aGVsbG8="}, "q")
	assert.False(t, resp.Success)
	assert.Equal(t, "Ollama image analysis failed: model llava:7b not found. Run: ollama pull llava:7b", resp.Error)
}

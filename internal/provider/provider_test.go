package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/chronex/pkg/config"
	"go.uber.org/zap"
)

func chatCompletion(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-test",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	}
}

func newOpenAIServer(t *testing.T, content string, inspect func(body map[string]any)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if inspect != nil {
			inspect(body)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(content))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAI_Generate(t *testing.T) {
	server := newOpenAIServer(t, "  Hello from the model  ", func(body map[string]any) {
		assert.Equal(t, "gpt-test", body["model"])
		messages := body["messages"].([]any)
		require.Len(t, messages, 2)
		system := messages[0].(map[string]any)
		assert.Equal(t, "system", system["role"])
		assert.Contains(t, system["content"], "You are Chronex AI")
		assert.Contains(t, system["content"], "user: hi")
	})

	p, err := NewOpenAI(config.AIConfig{
		OpenAIAPIKey:  "sk-test",
		OpenAIModel:   "gpt-test",
		OpenAIBaseURL: server.URL + "/v1/",
		MaxTokens:     50,
	}, zap.NewNop())
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), "hello", "user: hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello from the model", text)
}

func TestOpenAI_EmptyReply(t *testing.T) {
	server := newOpenAIServer(t, "   ", nil)
	p, err := NewOpenAI(config.AIConfig{OpenAIAPIKey: "sk-test", OpenAIBaseURL: server.URL + "/v1"}, zap.NewNop())
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "hello", "")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestOpenAI_Describe(t *testing.T) {
	server := newOpenAIServer(t, "A red square", func(body map[string]any) {
		assert.Equal(t, "vision-test", body["model"])
		messages := body["messages"].([]any)
		parts := messages[0].(map[string]any)["content"].([]any)
		require.Len(t, parts, 2)
		assert.Equal(t, "what is it?", parts[0].(map[string]any)["text"])
		image := parts[1].(map[string]any)["image_url"].(map[string]any)
		assert.Equal(t, "data:image/png;base64,AQID", image["url"])
	})

	p, err := NewOpenAI(config.AIConfig{
		OpenAIAPIKey:  "sk-test",
		OpenAIBaseURL: server.URL + "/v1",
		VisionModel:   "vision-test",
	}, zap.NewNop())
	require.NoError(t, err)

	text, err := p.Describe(context.Background(), []byte{1, 2, 3}, "image/png", "what is it?")
	require.NoError(t, err)
	assert.Equal(t, "A red square", text)
}

func TestOpenAI_RequiresKey(t *testing.T) {
	_, err := NewOpenAI(config.AIConfig{}, zap.NewNop())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHuggingFace_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gpt2", r.URL.Path)
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))

		var req hfRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "tell me a joke", req.Inputs)
		assert.Equal(t, 64, req.Parameters.MaxNewTokens)

		json.NewEncoder(w).Encode([]map[string]string{{"generated_text": "Why did the gopher..."}})
	}))
	defer server.Close()

	p, err := NewHuggingFace(config.AIConfig{
		HuggingFaceModel:    "gpt2",
		HuggingFaceEndpoint: server.URL + "/models/",
		HuggingFaceToken:    "hf-token",
		MaxTokens:           64,
	}, zap.NewNop())
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), "tell me a joke", "")
	require.NoError(t, err)
	assert.Equal(t, "Why did the gopher...", text)
}

func TestHuggingFace_SingleObjectAndErrors(t *testing.T) {
	status := http.StatusOK
	payload := `{"generated_text": "single"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(payload))
	}))
	defer server.Close()

	p, err := NewHuggingFace(config.AIConfig{HuggingFaceModel: "m", HuggingFaceEndpoint: server.URL}, zap.NewNop())
	require.NoError(t, err)

	text, err := p.Generate(context.Background(), "x", "")
	require.NoError(t, err)
	assert.Equal(t, "single", text)

	status, payload = http.StatusServiceUnavailable, `{"error": "Model m is currently loading"}`
	_, err = p.Generate(context.Background(), "x", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "currently loading")

	status, payload = http.StatusOK, `[]`
	_, err = p.Generate(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestOllama_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.False(t, req.Stream)
		assert.Contains(t, req.System, "user: earlier")

		json.NewEncoder(w).Encode(map[string]any{"response": "Hello there!", "done": true})
	}))
	defer server.Close()

	p := NewOllama(config.AIConfig{OllamaEndpoint: server.URL, OllamaModel: "test-model"}, zap.NewNop())
	text, err := p.Generate(context.Background(), "Hi", "user: earlier")

	require.NoError(t, err)
	assert.Equal(t, "Hello there!", text)
}

func TestOllama_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := NewOllama(config.AIConfig{OllamaEndpoint: server.URL}, zap.NewNop())
	_, err := p.Generate(context.Background(), "test", "")

	assert.Error(t, err)
}

func TestOllama_Defaults(t *testing.T) {
	p := NewOllama(config.AIConfig{}, zap.NewNop())

	assert.Equal(t, "http://localhost:11434", p.baseURL)
	assert.Equal(t, "llama2", p.model)
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.AIConfig
		wantName string
		wantErr  bool
	}{
		{"openai with key", config.AIConfig{Provider: "openai", OpenAIAPIKey: "k"}, "openai", false},
		{"openai without key", config.AIConfig{Provider: "openai"}, NoneName, true},
		{"case insensitive", config.AIConfig{Provider: " Ollama "}, "ollama", false},
		{"huggingface", config.AIConfig{Provider: "huggingface", HuggingFaceModel: "gpt2"}, "huggingface", false},
		{"unknown", config.AIConfig{Provider: "skynet"}, NoneName, true},
		{"none", config.AIConfig{Provider: "none"}, NoneName, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Build(tt.cfg, zap.NewNop())

			assert.Equal(t, tt.wantName, p.Name())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNames(t *testing.T) {
	names := Names()

	assert.Subset(t, names, []string{"huggingface", "none", "ollama", "openai"})
	assert.IsIncreasing(t, names)
}

func TestNone(t *testing.T) {
	_, err := None{}.Generate(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestResultOK(t *testing.T) {
	assert.True(t, Result{Text: "hi"}.OK())
	assert.False(t, Result{Text: " \n"}.OK())
	assert.False(t, Result{Reason: "disabled"}.OK())
}

func TestCall_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := call(ctx, func(context.Context) (string, error) {
		time.Sleep(time.Second)
		return "late", nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

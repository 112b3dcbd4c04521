package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewLLMService(LLMConfig{BaseURL: srv.URL, Model: "llama3.2"})
	require.NoError(t, err)
	return svc
}

func TestLLMService_Generate(t *testing.T) {
	var got map[string]any
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3.2","response":"{\"questions\":[]}","done":true}` + "\n"))
	})

	out, err := svc.Generate(context.Background(), "make a quiz", driven.GenerateOptions{
		System:      "be terse",
		Temperature: 0.7,
		JSONMode:    true,
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"questions":[]}`, out)
	assert.Equal(t, "make a quiz", got["prompt"])
	assert.Equal(t, "be terse", got["system"])
	assert.Equal(t, "json", got["format"])
	assert.Equal(t, false, got["stream"])
	assert.InDelta(t, 0.7, got["options"].(map[string]any)["temperature"], 1e-9)
}

func TestLLMService_Chat(t *testing.T) {
	var got struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3.2","message":{"role":"assistant","content":"Chlorophyll."},"done":true}` + "\n"))
	})

	out, err := svc.Chat(context.Background(), []driven.ChatMessage{
		{Role: "user", Content: "What is green?"},
	}, driven.ChatOptions{})

	require.NoError(t, err)
	assert.Equal(t, "Chlorophyll.", out)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestLLMService_EmptyCompletionIsError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"model":"llama3.2","response":"  ","done":true}` + "\n"))
	})

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})

	assert.ErrorContains(t, err, "empty completion")
}

func TestLLMService_ServerError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"llama3.2\" not found"}`))
	})

	_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})

	assert.Error(t, err)
	assert.Error(t, svc.Ping(context.Background()))
}

func TestOptions(t *testing.T) {
	assert.Nil(t, options(0, 0, nil))
	assert.Equal(t, map[string]any{"num_predict": 10, "stop": []string{"END"}}, options(10, 0, []string{"END"}))
}

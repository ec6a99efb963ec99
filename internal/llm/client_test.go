package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, handle func(w http.ResponseWriter, req openaigo.ChatCompletionRequest)) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req openaigo.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		handle(w, req)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(openaigo.ChatCompletionResponse{
		ID:    "chatcmpl-1",
		Model: "test-model",
		Choices: []openaigo.ChatCompletionChoice{
			{Index: 0, Message: openaigo.ChatCompletionMessage{Role: openaigo.ChatMessageRoleAssistant, Content: content}},
		},
		Usage: openaigo.Usage{PromptTokens: 12, CompletionTokens: 5, TotalTokens: 17},
	})
}

func TestClient_Generate(t *testing.T) {
	var got openaigo.ChatCompletionRequest
	ts := completionServer(t, func(w http.ResponseWriter, req openaigo.ChatCompletionRequest) {
		got = req
		writeCompletion(w, "[WRONG] Not even close.")
	})

	c := New(Config{BaseURL: ts.URL + "/", APIKey: "k", Model: "test-model", Temperature: 0.5}, nil)
	text, err := c.Generate(context.Background(), "0xabc", "PEPE", "you are the sphinx")

	require.NoError(t, err)
	assert.Equal(t, "[WRONG] Not even close.", text)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, "0xabc", got.User)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openaigo.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "you are the sphinx", got.Messages[0].Content)
	assert.Equal(t, openaigo.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, "PEPE", got.Messages[1].Content)
}

func TestClient_GenerateFailures(t *testing.T) {
	cases := []struct {
		name   string
		handle func(w http.ResponseWriter, req openaigo.ChatCompletionRequest)
		prompt string
	}{
		{
			name: "upstream_error",
			handle: func(w http.ResponseWriter, _ openaigo.ChatCompletionRequest) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			},
			prompt: "sphinx",
		},
		{
			name: "empty_content",
			handle: func(w http.ResponseWriter, _ openaigo.ChatCompletionRequest) {
				writeCompletion(w, "   ")
			},
			prompt: "sphinx",
		},
		{
			name: "slow_upstream",
			handle: func(w http.ResponseWriter, _ openaigo.ChatCompletionRequest) {
				time.Sleep(200 * time.Millisecond)
				writeCompletion(w, "too late")
			},
			prompt: "sphinx",
		},
		{
			name:   "empty_prompt",
			handle: func(w http.ResponseWriter, _ openaigo.ChatCompletionRequest) { writeCompletion(w, "x") },
			prompt: " ",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := completionServer(t, tc.handle)
			c := New(Config{BaseURL: ts.URL, APIKey: "k", Model: "m", Timeout: 50 * time.Millisecond}, nil)

			_, err := c.Generate(context.Background(), "0xabc", "hello", tc.prompt)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrGenerationFailed)
		})
	}
}

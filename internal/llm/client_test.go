package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/persona-runner/internal/model"
)

func newTestClient(srv *httptest.Server, retries int) *Client {
	return New(Options{
		BaseURL:     srv.URL + "/v1",
		APIKey:      "test-key",
		MaxRetries:  retries,
		RetryDelay:  time.Millisecond,
		CallTimeout: 2 * time.Second,
	})
}

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":      "cmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "m",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	}
}

func TestCompleteSendsSystemAndUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
		assert.Equal(t, "be Ada", req.Messages[0].Content)
		assert.Equal(t, "say hi", req.Messages[1].Content)
		assert.Equal(t, 1000, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 1e-6)

		json.NewEncoder(w).Encode(chatResponse("  hello  \n"))
	}))
	defer srv.Close()

	c := newTestClient(srv, 1)
	text, err := c.Complete(context.Background(), CompletionRequest{
		Model:        "llama",
		SystemPrompt: "be Ada",
		UserPrompt:   "say hi",
		Sampling:     model.SamplingParams{Temperature: 0.7, TopP: 0.9, MaxTokens: 1000},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestCompleteWithoutSystemPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 1)
		json.NewEncoder(w).Encode(chatResponse("85"))
	}))
	defer srv.Close()

	text, err := newTestClient(srv, 1).Complete(context.Background(), CompletionRequest{Model: "judge", UserPrompt: "rate"})
	require.NoError(t, err)
	assert.Equal(t, "85", text)
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(chatResponse("ok"))
	}))
	defer srv.Close()

	text, err := newTestClient(srv, 3).Complete(context.Background(), CompletionRequest{Model: "m", UserPrompt: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 3).Complete(context.Background(), CompletionRequest{Model: "nope", UserPrompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion nope")
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteCallTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := New(Options{BaseURL: srv.URL + "/v1", APIKey: "k", MaxRetries: 1, CallTimeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := c.Complete(context.Background(), CompletionRequest{Model: "slow", UserPrompt: "x"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestEmbedOrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"response", "ref"}, req.Input)
		assert.Equal(t, "m2-bert", req.Model)

		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "m2-bert",
			"data": []map[string]any{
				{"object": "embedding", "index": 1, "embedding": []float32{0, 1}},
				{"object": "embedding", "index": 0, "embedding": []float32{1, 0}},
			},
		})
	}))
	defer srv.Close()

	vecs, err := newTestClient(srv, 1).Embed(context.Background(), "m2-bert", []string{"response", "ref"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1, 0}, vecs[0])
	assert.Equal(t, []float32{0, 1}, vecs[1])
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   []map[string]any{{"object": "embedding", "index": 0, "embedding": []float32{1}}},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv, 1).Embed(context.Background(), "m", []string{"a", "b"})
	assert.Error(t, err)
}

func TestAlignEmbeddingsFallsBackToPosition(t *testing.T) {
	data := []openai.Embedding{
		{Index: 0, Embedding: []float32{1}},
		{Index: 0, Embedding: []float32{2}},
	}
	out, err := alignEmbeddings(data, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}, {2}}, out)
}

package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaghavOG/advance-rag/llm"
	"github.com/RaghavOG/advance-rag/providers"
)

func completionJSON(content string) string {
	return `{
		"id": "chatcmpl-1",
		"model": "gpt-4.1-mini",
		"created": 1700000000,
		"choices": [
			{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": ` + mustJSON(content) + `}}
		],
		"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
	}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newTestProvider(t *testing.T, handler http.HandlerFunc, maxRetries int) *Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(providers.OpenAIConfig{
		APIKey:     "sk-test",
		BaseURL:    srv.URL,
		Model:      "gpt-4.1-mini",
		MaxRetries: maxRetries,
	}, nil)
}

func TestCompletionSuccess(t *testing.T) {
	var captured openAIRequest

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(completionJSON("pong")))
	}, 0)

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are terse."},
			{Role: llm.RoleUser, Content: "ping"},
		},
		MaxTokens:   64,
		Temperature: 0.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1-mini", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, 64, captured.MaxTokens)

	assert.Equal(t, "openai", resp.Provider)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "pong", resp.Choices[0].Message.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.False(t, resp.CreatedAt.IsZero())
}

func TestCompletionModelPrecedence(t *testing.T) {
	var captured openAIRequest

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(completionJSON("ok")))
	}, 0)

	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Model:    "gpt-4o",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "ping"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", captured.Model, "per-request model wins over the configured default")
}

func TestCompletionRetriesOnServerError(t *testing.T) {
	var calls int

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error": {"message": "overloaded"}}`))
			return
		}
		w.Write([]byte(completionJSON("recovered")))
	}, 2)

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "ping"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "recovered", resp.Choices[0].Message.Content)
}

func TestCompletionDoesNotRetryClientErrors(t *testing.T) {
	var calls int

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "bad key"}}`))
	}, 3)

	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "ping"}},
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "auth errors must not be retried")

	var llmErr *llm.Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, llm.ErrUnauthorized, llmErr.Code)
	assert.Equal(t, "bad key", llmErr.Message)
	assert.False(t, llmErr.Retryable)
}

func TestCompletionExhaustsRetryBudget(t *testing.T) {
	var calls int

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "slow down"}}`))
	}, 2)

	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "ping"}},
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)

	var llmErr *llm.Error
	require.True(t, errors.As(err, &llmErr))
	assert.Equal(t, llm.ErrRateLimited, llmErr.Code)
	assert.True(t, llmErr.Retryable)
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/models", r.URL.Path)
			w.Write([]byte(`{"data": []}`))
		}, 0)

		status, err := p.HealthCheck(context.Background())
		require.NoError(t, err)
		assert.True(t, status.Healthy)
	})

	t.Run("unhealthy", func(t *testing.T) {
		p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}, 0)

		status, err := p.HealthCheck(context.Background())
		require.Error(t, err)
		assert.False(t, status.Healthy)
	})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		status        int
		wantCode      llm.ErrorCode
		wantRetryable bool
	}{
		{http.StatusUnauthorized, llm.ErrUnauthorized, false},
		{http.StatusTooManyRequests, llm.ErrRateLimited, true},
		{http.StatusBadRequest, llm.ErrInvalidRequest, false},
		{http.StatusBadGateway, llm.ErrUpstreamError, true},
		{http.StatusInternalServerError, llm.ErrUpstreamError, true},
		{http.StatusNotFound, llm.ErrUpstreamError, false},
	}

	for _, tt := range tests {
		got := mapError(tt.status, "msg", "openai")
		assert.Equal(t, tt.wantCode, got.Code, "status %d", tt.status)
		assert.Equal(t, tt.wantRetryable, got.Retryable, "status %d", tt.status)
	}
}

func TestCompletionRequestTimeoutExtendsDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(completionJSON("slow but fine")))
	}))
	t.Cleanup(srv.Close)

	// Default deadline shorter than the server's latency; the per-request
	// timeout must win.
	p := New(providers.OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
		Timeout: 100 * time.Millisecond,
	}, nil)

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "ping"}},
		Timeout:  2 * time.Second,
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "slow but fine", resp.Choices[0].Message.Content)
}

func TestCompletionDefaultTimeoutApplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(completionJSON("too late")))
	}))
	t.Cleanup(srv.Close)

	p := New(providers.OpenAIConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL,
		Timeout: 50 * time.Millisecond,
	}, nil)

	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "ping"}},
	})
	require.Error(t, err)

	var llmErr *llm.Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, llm.ErrUpstreamTimeout, llmErr.Code)
}

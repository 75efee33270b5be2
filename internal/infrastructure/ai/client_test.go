package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.AIConfig{
		BaseURL: url + "/",
		APIKey:  "sk-test",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	})
}

func TestComplete_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Len(t, req.Messages, 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hi"}}]}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).Complete(context.Background(), []Message{
		{Role: "system", Content: "be kind"},
		{Role: "user", Content: "hello"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"choices":[{"message":{"content":"hi"}}]}`, string(out))
}

func TestComplete_StatusError(t *testing.T) {
	for _, code := range []int{http.StatusTooManyRequests, http.StatusUnauthorized, http.StatusBadGateway} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))

		_, err := newTestClient(srv.URL).Complete(context.Background(), []Message{{Role: "user", Content: "x"}})
		var se *StatusError
		require.True(t, errors.As(err, &se), "status %d", code)
		assert.Equal(t, code, se.Code)
		assert.Equal(t, `{"error":"nope"}`, se.Body)
		srv.Close()
	}
}

func TestComplete_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), []Message{{Role: "user", Content: "x"}})
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestComplete_StatusErrorBodyIsBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Complete(context.Background(), []Message{{Role: "user", Content: "x"}})
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Len(t, se.Body, maxErrorBody)
}

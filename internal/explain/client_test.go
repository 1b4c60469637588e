package explain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{
		BaseURL: srv.URL + "/",
		APIKey:  "test-key",
		Model:   "gemini-test",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresKeyAndModel(t *testing.T) {
	_, err := NewClient(ClientConfig{Model: "m"})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewClient(ClientConfig{APIKey: "k"})
	assert.Error(t, err)
}

func TestGenerate_SendsBearerAndModel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gemini-test", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "Recursion")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"# Recursion\nA box inside a box."}}]}`))
	})

	got, err := c.Generate(context.Background(), Prompt("Recursion"))
	require.NoError(t, err)
	assert.Equal(t, "# Recursion\nA box inside a box.", got)
}

func TestGenerate_NoChoicesIsEmptyText(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	got, err := c.Generate(context.Background(), "hi")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGenerate_UpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	})

	_, err := c.Generate(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerate_BadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "decoding response")
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty prompt")
	})

	_, err := c.Generate(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestGenerate_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestPrompt_NamesConcept(t *testing.T) {
	p := Prompt("Binary Code")
	assert.True(t, strings.Contains(p, "'Binary Code'"))
	assert.Contains(t, p, "five-year-old")
}

func TestConcepts_CatalogueSize(t *testing.T) {
	assert.Len(t, Concepts, 30)
	seen := make(map[string]bool, len(Concepts))
	for _, c := range Concepts {
		assert.False(t, seen[c], "duplicate concept %q", c)
		seen[c] = true
	}
}

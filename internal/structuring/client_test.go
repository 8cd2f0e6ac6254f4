package structuring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completion(content string) []byte {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return b
}

func TestClient_Structure(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completion(`[{"title":"Гипсокартон 12,5мм","price":389.9,"unit":"лист"}]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret", Model: "test-model"}, zerolog.Nop())
	items, err := c.Structure(context.Background(), "Гипсокартон 12,5мм — 389,90 руб/лист")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "лист", *items[0].Unit)

	assert.Equal(t, "test-model", got["model"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, Instructions, msgs[0].(map[string]any)["content"])
	assert.Contains(t, msgs[1].(map[string]any)["content"], "Гипсокартон")
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://localhost"}, zerolog.Nop())
	_, err := c.Structure(context.Background(), "text")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestClient_Non2xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k", MaxRetries: 2}, zerolog.Nop())
	_, err := c.Structure(context.Background(), "text")
	assert.ErrorIs(t, err, ErrServiceError)
	assert.Equal(t, int32(1), calls.Load(), "4xx other than 429 is not retried")
}

func TestClient_EmptyAndMalformed(t *testing.T) {
	replies := map[string]error{
		"":                  ErrEmptyReply,
		"нет данных":        ErrMalformedReply,
		`{"items": "none"}`: ErrMalformedReply,
	}
	for content, want := range replies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(completion(content))
		}))
		c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"}, zerolog.Nop())
		_, err := c.Structure(context.Background(), "text")
		assert.ErrorIs(t, err, want, "content %q", content)
		srv.Close()
	}
}

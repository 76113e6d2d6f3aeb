package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/foliochat/internal/model"
)

func TestOpenRouterComplete(t *testing.T) {
	var got openrouterRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.Equal(t, "folio", r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  hello  "}}]}`))
	}))
	defer srv.Close()

	p, err := NewProvider("OpenRouter", map[string]interface{}{"api_key": "k", "base_url": srv.URL, "x_title": "folio"})
	require.NoError(t, err)
	out, err := p.Complete(context.Background(), "m", []model.Message{
		{Role: model.RoleSystem, Content: "sys"},
		{Role: model.RoleUser, Content: "hi"},
	}, CompleteOptions{Temperature: 0.2, JSON: true})
	require.NoError(t, err)
	require.Equal(t, "hello", out)
	require.Equal(t, "m", got.Model)
	require.Len(t, got.Messages, 2)
	require.NotNil(t, got.ResponseFormat)
	require.Equal(t, "json_object", got.ResponseFormat.Type)
}

func TestOpenRouterUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p, err := NewProvider("openrouter", map[string]interface{}{"api_key": "k", "base_url": srv.URL})
	require.NoError(t, err)
	_, err = p.Complete(context.Background(), "m", nil, CompleteOptions{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestProvidersWithoutKeyAreUnavailable(t *testing.T) {
	for _, name := range []string{"openai", "openrouter", "gemini"} {
		p, err := NewProvider(name, map[string]interface{}{})
		require.NoError(t, err)
		_, err = p.Complete(context.Background(), "m", nil, CompleteOptions{})
		require.ErrorIs(t, err, ErrUnavailable, name)
	}
	for _, name := range []string{"openai", "gemini"} {
		p, err := NewEmbedProvider(name, map[string]interface{}{})
		require.NoError(t, err)
		_, err = p.Embed(context.Background(), "m", "text", "")
		require.ErrorIs(t, err, ErrUnavailable, name)
	}
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider("", nil)
	require.Error(t, err)
	_, err = NewProvider("nope", map[string]interface{}{})
	require.Error(t, err)
	_, err = NewEmbedProvider("openrouter", map[string]interface{}{})
	require.Error(t, err)
	_, err = NewProvider("openai", nil)
	require.Error(t, err)
}

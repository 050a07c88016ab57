package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunabot/luna/pkg/retrylimit"
)

func TestGitHubModelsGenerate(t *testing.T) {
	var gotAuth, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var req struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel = req.Model
		require.Len(t, req.Messages, 2)

		fmt.Fprint(w, `{"choices":[{"message":{"content":"chat reply"}}]}`)
	}))
	defer srv.Close()

	p := NewGitHubModels(srv.URL, "gh-token", "gpt-4o-mini")
	out, err := p.Generate(context.Background(), []Message{
		{Role: "system", Content: "persona"},
		{Role: "user", Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "chat reply", out)
	assert.Equal(t, "Bearer gh-token", gotAuth)
	assert.Equal(t, "gpt-4o-mini", gotModel)
}

func TestGitHubModelsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"rate limited"}`)
	}))
	defer srv.Close()

	p := NewGitHubModels(srv.URL, "gh-token", "gpt-4o-mini")
	_, err := p.Generate(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.True(t, retrylimit.IsRateLimit(err))
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lunabot/luna/pkg/retrylimit"
)

// GitHubModels is the secondary provider, an OpenAI-compatible endpoint used
// when the primary is exhausted or unavailable.
type GitHubModels struct {
	baseURL string
	token   string
	model   string
	client  *http.Client
}

func NewGitHubModels(baseURL, token, model string) *GitHubModels {
	return &GitHubModels{
		baseURL: baseURL,
		token:   token,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *GitHubModels) Generate(ctx context.Context, messages []Message) (string, error) {
	payload := map[string]any{
		"model":    p.model,
		"messages": messages,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &retrylimit.StatusError{Code: resp.StatusCode, Body: truncate(respBody)}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshal: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lunabot/luna/pkg/log"
	"github.com/lunabot/luna/pkg/retrylimit"
)

// Retry policy for the primary provider.
const (
	geminiMaxAttempts    = 5
	geminiInitialBackoff = 2 * time.Second
	geminiMaxBackoff     = 60 * time.Second

	// The token endpoint returns no authoritative TTL; assume a conservative
	// lifetime and refresh early.
	geminiTokenLifetime = 55 * time.Minute
)

// modelPreference is the substring order used to pick a model from the
// provider listing when no explicit override matches.
var modelPreference = []string{
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
	"gemini-pro",
}

// fallbackModels is walked in order when the current model reports no free
// quota.
var fallbackModels = []string{
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
}

type GeminiConfig struct {
	BaseURL  string
	APIKey   string
	TokenURL string // optional bearer-token exchange endpoint
	Model    string // explicit override, wins when the listing contains it
}

// Gemini is the primary completion provider. Token and model resolution are
// cached on the client; handlers run in parallel, so both caches are
// mutex-guarded.
type Gemini struct {
	cfg     GeminiConfig
	client  *http.Client
	limiter *retrylimit.AdaptiveLimiter

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
	model       string
	quotaIdx    int
}

func NewGemini(cfg GeminiConfig) *Gemini {
	return &Gemini{
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: retrylimit.NewAdaptiveLimiter(2, 1, 10, 1, 0.5),
	}
}

// Generate calls the generateContent endpoint with bounded retries: rate
// limits honor the provider's retry hint or exponential backoff, quota
// exhaustion walks the fallback model list without waiting, and a stale model
// resolution is re-resolved once.
func (g *Gemini) Generate(ctx context.Context, messages []Message) (string, error) {
	payload := buildGeminiPayload(messages)
	logger := log.FromCtx(ctx)

	var lastErr error
	reresolved := false
	for attempt := 0; attempt < geminiMaxAttempts; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}

		model, err := g.ensureModel(ctx)
		if err != nil {
			return "", err
		}

		out, err := g.generateOnce(ctx, model, payload)
		if err == nil {
			g.limiter.Success()
			return out, nil
		}
		lastErr = err

		switch {
		case retrylimit.IsRateLimit(err):
			g.limiter.RateLimited()
			var se *retrylimit.StatusError
			errors.As(err, &se)
			if isQuotaExhausted(se.Body) && g.advanceQuotaModel() {
				logger.Warn().Str("model", model).Msg("no free quota, switching model")
				continue
			}
			wait := parseRetryDelay(se.Body)
			if wait <= 0 {
				wait = retrylimit.Backoff(attempt, geminiInitialBackoff, geminiMaxBackoff)
			}
			logger.Warn().Int("attempt", attempt+1).Dur("wait", wait).Msg("gemini rate limited")
			if err := retrylimit.Sleep(ctx, wait); err != nil {
				return "", err
			}
		case isModelNotFound(err):
			if reresolved {
				return "", fmt.Errorf("model not found after re-resolution: %w", err)
			}
			reresolved = true
			g.invalidateModel()
			logger.Warn().Str("model", model).Msg("model not found, re-resolving")
		default:
			return "", err
		}
	}
	return "", fmt.Errorf("gemini: %d attempts exhausted: %w", geminiMaxAttempts, lastErr)
}

func (g *Gemini) generateOnce(ctx context.Context, model string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := g.cfg.BaseURL + "/models/" + model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := g.setAuth(ctx, req); err != nil {
		return "", err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &retrylimit.StatusError{Code: resp.StatusCode, Body: truncate(respBody)}
	}

	out, err := extractText(respBody)
	if errors.Is(err, ErrUnrecognizedShape) {
		// Last resort: hand back the serialized response rather than nothing.
		log.FromCtx(ctx).Warn().Msg("gemini response shape unrecognized, returning raw")
		return truncate(respBody), nil
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

// setAuth attaches either the cached bearer token or the static API key.
func (g *Gemini) setAuth(ctx context.Context, req *http.Request) error {
	if g.cfg.TokenURL == "" {
		req.Header.Set("x-goog-api-key", g.cfg.APIKey)
		return nil
	}
	tok, err := g.ensureToken(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	return nil
}

// ensureToken returns the cached bearer token, refreshing it when the assumed
// lifetime has passed.
func (g *Gemini) ensureToken(ctx context.Context) (string, error) {
	g.mu.Lock()
	tok, exp := g.token, g.tokenExpiry
	g.mu.Unlock()
	if tok != "" && time.Now().Before(exp) {
		return tok, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.TokenURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if resp.StatusCode != http.StatusOK {
		return "", &retrylimit.StatusError{Code: resp.StatusCode, Body: truncate(body)}
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("token exchange: empty access_token")
	}

	g.mu.Lock()
	g.token = parsed.AccessToken
	g.tokenExpiry = time.Now().Add(geminiTokenLifetime)
	g.mu.Unlock()
	return parsed.AccessToken, nil
}

// ensureModel resolves and caches the concrete model to call.
func (g *Gemini) ensureModel(ctx context.Context) (string, error) {
	g.mu.Lock()
	m := g.model
	g.mu.Unlock()
	if m != "" {
		return m, nil
	}

	names, err := g.listModels(ctx)
	if err != nil {
		// Listing is best-effort; fall back to the override or the top of the
		// preference order.
		log.FromCtx(ctx).Warn().Err(err).Msg("model listing failed, using static choice")
		if g.cfg.Model != "" {
			m = g.cfg.Model
		} else {
			m = modelPreference[0]
		}
	} else {
		m = pickPreferredModel(names, g.cfg.Model)
	}

	g.mu.Lock()
	g.model = m
	g.mu.Unlock()
	log.FromCtx(ctx).Info().Str("model", m).Msg("resolved gemini model")
	return m, nil
}

func (g *Gemini) invalidateModel() {
	g.mu.Lock()
	g.model = ""
	g.mu.Unlock()
}

// advanceQuotaModel switches to the next fallback candidate. Returns false
// when the list is exhausted.
func (g *Gemini) advanceQuotaModel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for g.quotaIdx < len(fallbackModels) {
		cand := fallbackModels[g.quotaIdx]
		g.quotaIdx++
		if cand != g.model {
			g.model = cand
			return true
		}
	}
	return false
}

func (g *Gemini) listModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"/models?pageSize=100", nil)
	if err != nil {
		return nil, err
	}
	if err := g.setAuth(ctx, req); err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if resp.StatusCode != http.StatusOK {
		return nil, &retrylimit.StatusError{Code: resp.StatusCode, Body: truncate(body)}
	}

	var parsed struct {
		Models []struct {
			Name             string   `json:"name"`
			SupportedMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	var names []string
	for _, m := range parsed.Models {
		if len(m.SupportedMethods) > 0 && !supportsGenerate(m.SupportedMethods) {
			continue
		}
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

func supportsGenerate(methods []string) bool {
	for _, m := range methods {
		if m == "generateContent" {
			return true
		}
	}
	return false
}

// pickPreferredModel chooses from the listing: an explicit override wins when
// the listing contains it, else the first preference-order substring match,
// else the first listed model.
func pickPreferredModel(names []string, override string) string {
	if override != "" {
		for _, n := range names {
			if n == override || strings.Contains(n, override) {
				return n
			}
		}
	}
	for _, pref := range modelPreference {
		for _, n := range names {
			if strings.Contains(n, pref) {
				return n
			}
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	if override != "" {
		return override
	}
	return modelPreference[0]
}

func buildGeminiPayload(messages []Message) map[string]any {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}

	var system []string
	var contents []content
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			contents = append(contents, content{Role: "model", Parts: []part{{Text: m.Content}}})
		default:
			contents = append(contents, content{Role: "user", Parts: []part{{Text: m.Content}}})
		}
	}

	payload := map[string]any{"contents": contents}
	if len(system) > 0 {
		payload["systemInstruction"] = content{Parts: []part{{Text: strings.Join(system, "\n")}}}
	}
	return payload
}

func isQuotaExhausted(body string) bool {
	l := strings.ToLower(body)
	return strings.Contains(l, "quota") || strings.Contains(l, "free_tier") || strings.Contains(l, "free tier")
}

func isModelNotFound(err error) bool {
	if retrylimit.IsNotFound(err) {
		return true
	}
	var se *retrylimit.StatusError
	if !errors.As(err, &se) {
		return false
	}
	l := strings.ToLower(se.Body)
	return strings.Contains(l, "is not found") || strings.Contains(l, "not supported for generatecontent")
}

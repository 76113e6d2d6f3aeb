package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/xxxsen/foliochat/internal/model"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

type openrouterConfig struct {
	APIKey      string `json:"api_key"`
	BaseURL     string `json:"base_url"`
	HTTPReferer string `json:"http_referer"`
	XTitle      string `json:"x_title"`
}

// openrouterProvider speaks the OpenAI compatible chat API of openrouter.
// It has no embeddings endpoint and registers for chat only.
type openrouterProvider struct {
	apiKey   string
	endpoint string
	headers  http.Header
	client   *http.Client
}

type openrouterRequest struct {
	Model          string                    `json:"model"`
	Messages       []model.Message           `json:"messages"`
	Temperature    float32                   `json:"temperature"`
	ResponseFormat *openrouterResponseFormat `json:"response_format,omitempty"`
	Stream         bool                      `json:"stream"`
}

type openrouterResponseFormat struct {
	Type string `json:"type"`
}

type openrouterResponse struct {
	Choices []struct {
		Message model.Message `json:"message"`
	} `json:"choices"`
	Error *openrouterError `json:"error"`
}

type openrouterError struct {
	Message string `json:"message"`
}

func (p *openrouterProvider) Name() string {
	return "openrouter"
}

func (p *openrouterProvider) Complete(ctx context.Context, modelName string, msgs []model.Message, opts CompleteOptions) (string, error) {
	if p.apiKey == "" {
		return "", ErrUnavailable
	}
	payload := openrouterRequest{
		Model:       modelName,
		Messages:    msgs,
		Temperature: opts.Temperature,
	}
	if opts.JSON {
		payload.ResponseFormat = &openrouterResponseFormat{Type: "json_object"}
	}
	var out openrouterResponse
	if err := p.post(ctx, payload, &out); err != nil {
		return "", err
	}
	if out.Error != nil && out.Error.Message != "" {
		return "", fmt.Errorf("openrouter: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("openrouter response has no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func (p *openrouterProvider) post(ctx context.Context, payload interface{}, dst interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode openrouter request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header = p.headers.Clone()
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("openrouter request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("openrouter status %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode openrouter response: %w", err)
	}
	return nil
}

func createOpenRouterFactory(args interface{}) (IAIProvider, error) {
	cfg := &openrouterConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultOpenRouterBaseURL
	}
	key := strings.TrimSpace(cfg.APIKey)
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Authorization", "Bearer "+key)
	if v := strings.TrimSpace(cfg.HTTPReferer); v != "" {
		headers.Set("HTTP-Referer", v)
	}
	if v := strings.TrimSpace(cfg.XTitle); v != "" {
		headers.Set("X-Title", v)
	}
	return &openrouterProvider{
		apiKey:   key,
		endpoint: base + "/chat/completions",
		headers:  headers,
		client:   http.DefaultClient,
	}, nil
}

func init() {
	Register("openrouter", createOpenRouterFactory)
}

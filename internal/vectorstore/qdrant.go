package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xxxsen/foliochat/internal/model"
)

const (
	defaultQdrantCollection = "rag_chunks"
	qdrantScrollPage        = 256
)

type qdrantConfig struct {
	URL        string `json:"url"`
	APIKey     string `json:"api_key"`
	Collection string `json:"collection"`
	Timeout    int    `json:"timeout"`
}

type qdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

type qdrantPoint struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload qdrantPayload   `json:"payload"`
}

type qdrantPayload struct {
	Source   string                 `json:"source"`
	Section  string                 `json:"section"`
	Content  string                 `json:"content"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
}

type qdrantSearchResponse struct {
	Result []qdrantPoint `json:"result"`
}

type qdrantScrollResponse struct {
	Result struct {
		Points         []qdrantPoint   `json:"points"`
		NextPageOffset json.RawMessage `json:"next_page_offset"`
	} `json:"result"`
}

func init() {
	Register("qdrant", createQdrantStore)
}

func createQdrantStore(args interface{}) (Store, error) {
	cfg := &qdrantConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Collection == "" {
		cfg.Collection = defaultQdrantCollection
	}
	// Zero leaves deadlines to the caller's context.
	var timeout time.Duration
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return &qdrantStore{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.URL), "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

func (s *qdrantStore) Type() string {
	return "qdrant"
}

func (s *qdrantStore) Search(ctx context.Context, vec []float32, k int) ([]model.RetrievedFragment, error) {
	if k <= 0 {
		return nil, fmt.Errorf("match count must be positive")
	}
	body := map[string]interface{}{
		"vector":       vec,
		"limit":        k,
		"with_payload": true,
	}
	var out qdrantSearchResponse
	if err := s.post(ctx, "points/search", body, &out); err != nil {
		return nil, err
	}
	frags := make([]model.RetrievedFragment, 0, len(out.Result))
	for _, p := range out.Result {
		frags = append(frags, p.fragment())
	}
	return frags, nil
}

// ListCaseStudies is not offered: qdrant payloads carry no document table.
func (s *qdrantStore) ListCaseStudies(ctx context.Context) ([]model.DocMeta, error) {
	return nil, ErrUnsupported
}

func (s *qdrantStore) ScanFragments(ctx context.Context, limit int) ([]model.RetrievedFragment, error) {
	var frags []model.RetrievedFragment
	var offset json.RawMessage
	for {
		page := qdrantScrollPage
		if limit > 0 && limit-len(frags) < page {
			page = limit - len(frags)
		}
		body := map[string]interface{}{
			"limit":        page,
			"with_payload": true,
			"with_vector":  false,
		}
		if len(offset) > 0 {
			body["offset"] = offset
		}
		var out qdrantScrollResponse
		if err := s.post(ctx, "points/scroll", body, &out); err != nil {
			return nil, err
		}
		for _, p := range out.Result.Points {
			frags = append(frags, p.fragment())
		}
		offset = out.Result.NextPageOffset
		if len(offset) == 0 || string(offset) == "null" || len(out.Result.Points) == 0 {
			return frags, nil
		}
		if limit > 0 && len(frags) >= limit {
			return frags, nil
		}
	}
}

func (s *qdrantStore) Close() error {
	return nil
}

func (s *qdrantStore) post(ctx context.Context, op string, body interface{}, dst interface{}) error {
	if s.baseURL == "" {
		return ErrUnavailable
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode qdrant request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/collections/%s/%s", s.baseURL, url.PathEscape(s.collection), op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("qdrant %s failed: %s: %s", op, resp.Status, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode qdrant %s: %w", op, err)
	}
	return nil
}

func (p qdrantPoint) fragment() model.RetrievedFragment {
	content := p.Payload.Content
	if content == "" {
		content = p.Payload.Text
	}
	return model.RetrievedFragment{
		ID:         strings.Trim(string(p.ID), `"`),
		Source:     p.Payload.Source,
		Section:    p.Payload.Section,
		Content:    content,
		Metadata:   p.Payload.Metadata,
		Similarity: p.Score,
	}
}

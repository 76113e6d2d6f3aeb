package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/xxxsen/foliochat/internal/model"
)

type geminiConfig struct {
	APIKey string `json:"api_key"`
}

// gemini serves both chat and embeddings from one lazily built client.
type gemini struct {
	apiKey string

	once   sync.Once
	client *genai.Client
	err    error
}

func newGemini(args interface{}) (*gemini, error) {
	cfg := &geminiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &gemini{apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

func (g *gemini) Name() string {
	return "gemini"
}

func (g *gemini) connect(ctx context.Context) (*genai.Client, error) {
	if g.apiKey == "" {
		return nil, ErrUnavailable
	}
	g.once.Do(func() {
		g.client, g.err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return g.client, g.err
}

func (g *gemini) Complete(ctx context.Context, modelName string, msgs []model.Message, opts CompleteOptions) (string, error) {
	client, err := g.connect(ctx)
	if err != nil {
		return "", err
	}
	contents, system := toGeminiContents(msgs)
	gen := &genai.GenerateContentConfig{Temperature: genai.Ptr(opts.Temperature)}
	if system != "" {
		gen.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if opts.JSON {
		gen.ResponseMIMEType = "application/json"
	}
	resp, err := client.Models.GenerateContent(ctx, modelName, contents, gen)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (g *gemini) Embed(ctx context.Context, modelName string, text string, taskType string) ([]float32, error) {
	client, err := g.connect(ctx)
	if err != nil {
		return nil, err
	}
	var embedCfg *genai.EmbedContentConfig
	if taskType != "" {
		embedCfg = &genai.EmbedContentConfig{TaskType: taskType}
	}
	resp, err := client.Models.EmbedContent(ctx, modelName, genai.Text(text), embedCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("gemini returned no embedding values")
	}
	return resp.Embeddings[0].Values, nil
}

// toGeminiContents moves system messages out of the turn list into a single
// instruction and maps assistant turns to the "model" role.
func toGeminiContents(msgs []model.Message) ([]*genai.Content, string) {
	contents := make([]*genai.Content, 0, len(msgs))
	var system []string
	for _, m := range msgs {
		if m.Role == model.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		var role genai.Role = genai.RoleUser
		if m.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return contents, strings.Join(system, "\n\n")
}

func init() {
	Register("gemini", func(args interface{}) (IAIProvider, error) {
		return newGemini(args)
	})
	RegisterEmbed("gemini", func(args interface{}) (IEmbedProvider, error) {
		return newGemini(args)
	})
}

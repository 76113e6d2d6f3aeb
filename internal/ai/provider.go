package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/foliochat/internal/model"
)

// ErrUnavailable is returned by a provider built without credentials.
var ErrUnavailable = errors.New("ai provider unavailable")

type CompleteOptions struct {
	Temperature float32
	// JSON asks the provider for a JSON object response when it supports one.
	JSON bool
}

type IAIProvider interface {
	Name() string
	Complete(ctx context.Context, model string, msgs []model.Message, opts CompleteOptions) (string, error)
}

type IEmbedProvider interface {
	Name() string
	Embed(ctx context.Context, model string, text string, taskType string) ([]float32, error)
}

type IGenerator interface {
	Complete(ctx context.Context, msgs []model.Message) (string, error)
}

type IEmbedder interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
	ModelName() string
}

type generator struct {
	provider IAIProvider
	model    string
	opts     CompleteOptions
	timeout  time.Duration
}

// NewGenerator binds a provider to a model. A zero timeout leaves the caller's deadline alone.
func NewGenerator(p IAIProvider, model string, opts CompleteOptions, timeout time.Duration) IGenerator {
	return &generator{provider: p, model: model, opts: opts, timeout: timeout}
}

func (g *generator) Complete(ctx context.Context, msgs []model.Message) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.provider.Complete(ctx, g.model, msgs, g.opts)
}

type embedder struct {
	provider IEmbedProvider
	model    string
	timeout  time.Duration
}

func NewEmbedder(p IEmbedProvider, model string, timeout time.Duration) IEmbedder {
	return &embedder{provider: p, model: model, timeout: timeout}
}

func (e *embedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	return e.provider.Embed(ctx, e.model, text, taskType)
}

func (e *embedder) ModelName() string {
	return e.model
}

type ProviderFactory func(args interface{}) (IAIProvider, error)

type EmbedProviderFactory func(args interface{}) (IEmbedProvider, error)

// factories maps a lowercased provider name to its constructor.
type factories[F any] map[string]F

func (m factories[F]) add(name string, f F) {
	if key := strings.ToLower(strings.TrimSpace(name)); key != "" {
		m[key] = f
	}
}

func (m factories[F]) get(kind, name string) (F, error) {
	var zero F
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return zero, fmt.Errorf("%s.provider is required", kind)
	}
	f, ok := m[key]
	if !ok {
		return zero, fmt.Errorf("unsupported %s provider: %s", kind, name)
	}
	return f, nil
}

var (
	chatFactories  = factories[ProviderFactory]{}
	embedFactories = factories[EmbedProviderFactory]{}
)

func Register(name string, factory ProviderFactory) {
	if factory != nil {
		chatFactories.add(name, factory)
	}
}

func RegisterEmbed(name string, factory EmbedProviderFactory) {
	if factory != nil {
		embedFactories.add(name, factory)
	}
}

// NewProvider builds the chat provider registered under name.
func NewProvider(name string, args interface{}) (IAIProvider, error) {
	f, err := chatFactories.get("ai", name)
	if err != nil {
		return nil, err
	}
	return f(args)
}

// NewEmbedProvider builds the embedding provider registered under name.
func NewEmbedProvider(name string, args interface{}) (IEmbedProvider, error) {
	f, err := embedFactories.get("embedding", name)
	if err != nil {
		return nil, err
	}
	return f(args)
}

// decodeConfig converts the free-form provider block into a typed config
// through a JSON round trip.
func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}

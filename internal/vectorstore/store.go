package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xxxsen/foliochat/internal/config"
	"github.com/xxxsen/foliochat/internal/model"
)

var (
	// ErrUnsupported marks an optional capability the backend does not offer.
	ErrUnsupported = errors.New("vector store capability unsupported")
	// ErrUnavailable is returned when the store was configured without a connection target.
	ErrUnavailable = errors.New("vector store unavailable")
)

// Store is the similarity search collaborator plus the catalog queries of
// the document store.
type Store interface {
	Type() string
	// Search returns up to k fragments, most relevant first.
	Search(ctx context.Context, vec []float32, k int) ([]model.RetrievedFragment, error)
	// ListCaseStudies returns one entry per case-study document, or ErrUnsupported.
	ListCaseStudies(ctx context.Context) ([]model.DocMeta, error)
	// ScanFragments returns up to limit raw fragments without ranking.
	ScanFragments(ctx context.Context, limit int) ([]model.RetrievedFragment, error)
	Close() error
}

type migrator interface {
	Migrate(ctx context.Context) error
}

type Factory func(args interface{}) (Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

func New(ctx context.Context, cfg config.VectorStoreConfig) (Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	if key == "" {
		return nil, fmt.Errorf("vector_store.type is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported vector store type: %s", cfg.Type)
	}
	store, err := factory(cfg.Data)
	if err != nil {
		return nil, err
	}
	if !cfg.Migrate {
		return store, nil
	}
	m, ok := store.(migrator)
	if !ok {
		return store, nil
	}
	if err := m.Migrate(ctx); err != nil && !errors.Is(err, ErrUnavailable) {
		_ = store.Close()
		return nil, fmt.Errorf("migrate vector store: %w", err)
	}
	return store, nil
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("vector store config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode vector store config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode vector store config: %w", err)
	}
	return nil
}

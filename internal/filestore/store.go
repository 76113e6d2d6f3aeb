package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/xxxsen/foliochat/internal/config"
)

// ErrNotFound is returned by Open when the key does not exist.
var ErrNotFound = errors.New("file not found")

// maxAssetSize bounds ReadAll; profile documents are a few kilobytes.
const maxAssetSize = 4 << 20

// Store is a read-only blob source for hand-authored assets such as the profile.
type Store interface {
	Type() string
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type Factory func(args interface{}) (Store, error)

var factories sync.Map

func Register(name string, factory Factory) {
	if name = normalizeName(name); name != "" && factory != nil {
		factories.Store(name, factory)
	}
}

// New builds the store named by cfg.Type from its data block.
func New(cfg config.FileStoreConfig) (Store, error) {
	name := normalizeName(cfg.Type)
	if name == "" {
		return nil, fmt.Errorf("file_store.type is required")
	}
	v, ok := factories.Load(name)
	if !ok {
		return nil, fmt.Errorf("unsupported file store type: %s", cfg.Type)
	}
	return v.(Factory)(cfg.Data)
}

// ReadAll opens key and reads it fully, refusing assets above maxAssetSize.
func ReadAll(ctx context.Context, s Store, key string) ([]byte, error) {
	rc, err := s.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, maxAssetSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if len(data) > maxAssetSize {
		return nil, fmt.Errorf("read %s: asset exceeds %d bytes", key, maxAssetSize)
	}
	return data, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("file store config is required")
	}
	raw, err := json.Marshal(args)
	if err == nil {
		err = json.Unmarshal(raw, dst)
	}
	if err != nil {
		return fmt.Errorf("decode file store config: %w", err)
	}
	return nil
}

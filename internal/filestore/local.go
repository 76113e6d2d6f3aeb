package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

type localConfig struct {
	Dir string `json:"dir"`
}

// localStore serves flat keys from a single directory.
type localStore struct {
	root fs.FS
}

func init() {
	Register("local", func(args interface{}) (Store, error) {
		cfg := &localConfig{}
		if err := decodeConfig(args, cfg); err != nil {
			return nil, err
		}
		dir := strings.TrimSpace(cfg.Dir)
		if dir == "" {
			return nil, fmt.Errorf("local store dir is required")
		}
		return &localStore{root: os.DirFS(dir)}, nil
	})
}

func (s *localStore) Type() string {
	return "local"
}

func (s *localStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if !fs.ValidPath(key) || key == "." || strings.ContainsAny(key, `/\`) {
		return nil, fmt.Errorf("invalid file key %q", key)
	}
	f, err := s.root.Open(key)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("open %s: %w", key, ErrNotFound)
	case err != nil:
		return nil, err
	}
	return f, nil
}

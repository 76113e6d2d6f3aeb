package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/foliochat/internal/ai"
	"github.com/xxxsen/foliochat/internal/config"
	"github.com/xxxsen/foliochat/internal/model"
	appErr "github.com/xxxsen/foliochat/internal/pkg/errors"
	"github.com/xxxsen/foliochat/internal/vectorstore"
)

// VectorStore is the part of vectorstore.Store the chat pipeline consumes.
type VectorStore interface {
	Search(ctx context.Context, vec []float32, k int) ([]model.RetrievedFragment, error)
	ListCaseStudies(ctx context.Context) ([]model.DocMeta, error)
	ScanFragments(ctx context.Context, limit int) ([]model.RetrievedFragment, error)
}

// Retriever turns a query into ranked fragments: one embedding call and one
// similarity search, no retry.
type Retriever struct {
	embedder ai.IEmbedder
	store    VectorStore
	taskType string
	counts   config.RetrievalConfig
}

func NewRetriever(embedder ai.IEmbedder, store VectorStore, taskType string, counts config.RetrievalConfig) *Retriever {
	return &Retriever{embedder: embedder, store: store, taskType: taskType, counts: counts}
}

func (r *Retriever) MatchCount(intent model.Intent) int {
	return r.counts.MatchCountFor(intent.Kind)
}

func (r *Retriever) Retrieve(ctx context.Context, query string, intent model.Intent) ([]model.RetrievedFragment, error) {
	k := r.MatchCount(intent)
	logger := logutil.GetLogger(ctx).With(zap.String("intent", string(intent.Kind)), zap.Int("match_count", k))
	vec, err := r.embedder.Embed(ctx, query, r.taskType)
	if err != nil {
		logger.Error("embed query failed", zap.String("model", r.embedder.ModelName()), zap.Error(err))
		return nil, collaboratorErr("embed query", err)
	}
	frags, err := r.store.Search(ctx, vec, k)
	if err != nil {
		logger.Error("vector search failed", zap.Error(err))
		return nil, collaboratorErr("vector search", err)
	}
	if len(frags) > k {
		frags = frags[:k]
	}
	logger.Debug("fragments retrieved", zap.Int("count", len(frags)))
	return frags, nil
}

// collaboratorErr classifies a failed collaborator call: missing credentials
// are a configuration error, everything else an upstream failure.
func collaboratorErr(op string, err error) error {
	if errors.Is(err, ai.ErrUnavailable) || errors.Is(err, vectorstore.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, appErr.ErrConfig, err)
	}
	return fmt.Errorf("%s: %w: %w", op, appErr.ErrUpstream, err)
}

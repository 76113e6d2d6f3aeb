package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/pgvector/pgvector-go"

	"github.com/xxxsen/foliochat/internal/db"
	"github.com/xxxsen/foliochat/internal/model"
	"github.com/xxxsen/foliochat/internal/pkg/dbutil"
)

const defaultChunkTable = "rag_chunks"

type pgConfig struct {
	DSN string `json:"dsn"`
	// Table is queried with the cosine distance operator when MatchFunction is empty.
	Table string `json:"table"`
	// MatchFunction names a set returning function (query_embedding, match_count).
	MatchFunction string `json:"match_function"`
	// DocumentsTable enables the direct case-study catalog query.
	DocumentsTable string `json:"documents_table"`
}

type pgStore struct {
	db        *sql.DB
	table     string
	matchFunc string
	docTable  string
}

func init() {
	Register("pgvector", createPGStore)
}

func createPGStore(args interface{}) (Store, error) {
	cfg := &pgConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Table == "" {
		cfg.Table = defaultChunkTable
	}
	for _, ident := range []string{cfg.Table, cfg.MatchFunction, cfg.DocumentsTable} {
		if ident != "" && !dbutil.ValidIdentifier(ident) {
			return nil, fmt.Errorf("invalid pgvector identifier: %q", ident)
		}
	}
	store := &pgStore{
		table:     cfg.Table,
		matchFunc: cfg.MatchFunction,
		docTable:  cfg.DocumentsTable,
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return store, nil
	}
	conn, err := db.Open(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open pgvector: %w", err)
	}
	store.db = conn
	return store, nil
}

func (s *pgStore) Type() string {
	return "pgvector"
}

func (s *pgStore) Migrate(ctx context.Context) error {
	if s.db == nil {
		return ErrUnavailable
	}
	return db.ApplyMigrations(ctx, s.db)
}

func (s *pgStore) searchQuery() string {
	if s.matchFunc != "" {
		return fmt.Sprintf("SELECT id::text, source, section, content, metadata, similarity FROM %s($1, $2)", s.matchFunc)
	}
	return fmt.Sprintf(
		"SELECT id::text, source, section, content, metadata, (embedding <=> $1)::float8 AS similarity FROM %s ORDER BY embedding <=> $1 LIMIT $2",
		s.table,
	)
}

func (s *pgStore) Search(ctx context.Context, vec []float32, k int) ([]model.RetrievedFragment, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	if k <= 0 {
		return nil, fmt.Errorf("match count must be positive")
	}
	rows, err := s.db.QueryContext(ctx, s.searchQuery(), pgvector.NewVector(vec), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RetrievedFragment, 0, k)
	for rows.Next() {
		var item model.RetrievedFragment
		var section sql.NullString
		var meta []byte
		if err := rows.Scan(&item.ID, &item.Source, &section, &item.Content, &meta, &item.Similarity); err != nil {
			return nil, err
		}
		item.Section = section.String
		if item.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, fmt.Errorf("fragment %s: %w", item.ID, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *pgStore) ListCaseStudies(ctx context.Context) ([]model.DocMeta, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	if s.docTable == "" {
		return nil, ErrUnsupported
	}
	where := map[string]interface{}{
		"type":     string(model.DocTypeCaseStudy),
		"_orderby": "slug asc",
	}
	sqlStr, args, err := builder.BuildSelect(s.docTable, where, []string{"slug", "title", "url", "github"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsUndefinedTable(err) {
			return nil, fmt.Errorf("documents table %s: %w", s.docTable, ErrUnsupported)
		}
		return nil, err
	}
	defer rows.Close()
	return readCaseStudies(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// readCaseStudies never returns a nil slice on success: an empty catalog is
// an answer, not a missing one.
func readCaseStudies(rows rowScanner) ([]model.DocMeta, error) {
	out := []model.DocMeta{}
	for rows.Next() {
		meta := model.DocMeta{Type: model.DocTypeCaseStudy}
		if err := rows.Scan(&meta.Slug, &meta.Title, &meta.URL, &meta.GitHub); err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *pgStore) ScanFragments(ctx context.Context, limit int) ([]model.RetrievedFragment, error) {
	if s.db == nil {
		return nil, ErrUnavailable
	}
	where := map[string]interface{}{"_orderby": "id asc"}
	if limit > 0 {
		where["_limit"] = []uint{0, uint(limit)}
	}
	sqlStr, args, err := builder.BuildSelect(s.table, where, []string{"id", "source", "section", "content", "metadata"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RetrievedFragment
	for rows.Next() {
		var item model.RetrievedFragment
		var section sql.NullString
		var meta []byte
		if err := rows.Scan(&item.ID, &item.Source, &section, &item.Content, &meta); err != nil {
			return nil, err
		}
		item.Section = section.String
		if item.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, fmt.Errorf("fragment %s: %w", item.ID, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *pgStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// decodeMetadata accepts NULL, JSON null and JSON objects.
func decodeMetadata(raw []byte) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}

package vectorstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/foliochat/internal/config"
)

func TestNewUnknownType(t *testing.T) {
	_, err := New(context.Background(), config.VectorStoreConfig{})
	require.Error(t, err)
	_, err = New(context.Background(), config.VectorStoreConfig{Type: "milvus", Data: map[string]interface{}{}})
	require.Error(t, err)
}

func TestPGStoreWithoutDSN(t *testing.T) {
	store, err := New(context.Background(), config.VectorStoreConfig{Type: "pgvector", Migrate: true, Data: map[string]interface{}{}})
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Search(context.Background(), []float32{1}, 8)
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = store.ListCaseStudies(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	_, err = store.ScanFragments(context.Background(), 10)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestPGStoreRejectsBadIdentifiers(t *testing.T) {
	for _, data := range []map[string]interface{}{
		{"table": "rag_chunks; drop table x"},
		{"match_function": "match(1)"},
		{"documents_table": "docs--"},
	} {
		_, err := createPGStore(data)
		require.Error(t, err)
	}
}

func TestPGSearchQuery(t *testing.T) {
	s := &pgStore{table: "rag_chunks"}
	require.Equal(t,
		"SELECT id::text, source, section, content, metadata, (embedding <=> $1)::float8 AS similarity FROM rag_chunks ORDER BY embedding <=> $1 LIMIT $2",
		s.searchQuery())
	s.matchFunc = "public.match_rag_chunks"
	require.Equal(t,
		"SELECT id::text, source, section, content, metadata, similarity FROM public.match_rag_chunks($1, $2)",
		s.searchQuery())
}

func TestDecodeMetadata(t *testing.T) {
	m, err := decodeMetadata(nil)
	require.NoError(t, err)
	require.Nil(t, m)
	m, err = decodeMetadata([]byte("null"))
	require.NoError(t, err)
	require.Nil(t, m)
	m, err = decodeMetadata([]byte(`{"type":"case-study"}`))
	require.NoError(t, err)
	require.Equal(t, "case-study", m["type"])
	_, err = decodeMetadata([]byte(`[1]`))
	require.Error(t, err)
}

func TestQdrantSearch(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/folio/points/search", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"result":[
			{"id":7,"score":0.91,"payload":{"source":"02_case-studies/jucosa.md","section":"Intro","content":"hello","metadata":{"slug":"jucosa"}}},
			{"id":"b3c1","score":0.5,"payload":{"source":"notes.md","text":"from text"}}
		]}`))
	}))
	defer srv.Close()

	store, err := New(context.Background(), config.VectorStoreConfig{Type: "qdrant", Data: map[string]interface{}{
		"url": srv.URL + "/", "api_key": "secret", "collection": "folio",
	}})
	require.NoError(t, err)

	frags, err := store.Search(context.Background(), []float32{0.1, 0.2}, 4)
	require.NoError(t, err)
	require.Len(t, frags, 2)
	require.Equal(t, "7", frags[0].ID)
	require.Equal(t, 0.91, frags[0].Similarity)
	require.Equal(t, "jucosa", frags[0].Metadata["slug"])
	require.Equal(t, "b3c1", frags[1].ID)
	require.Equal(t, "from text", frags[1].Content)
	require.Equal(t, float64(4), body["limit"])

	_, err = store.ListCaseStudies(context.Background())
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestQdrantScrollPages(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if _, ok := body["offset"]; !ok {
			_, _ = w.Write([]byte(`{"result":{"points":[{"id":1,"payload":{"source":"a.md"}}],"next_page_offset":2}}`))
			return
		}
		require.Equal(t, float64(2), body["offset"])
		_, _ = w.Write([]byte(`{"result":{"points":[{"id":2,"payload":{"source":"b.md"}}],"next_page_offset":null}}`))
	}))
	defer srv.Close()

	store, err := createQdrantStore(map[string]interface{}{"url": srv.URL})
	require.NoError(t, err)
	frags, err := store.ScanFragments(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, frags, 2)
	require.Equal(t, 2, calls)
}

func TestQdrantErrors(t *testing.T) {
	store, err := createQdrantStore(map[string]interface{}{})
	require.NoError(t, err)
	_, err = store.Search(context.Background(), []float32{1}, 1)
	require.ErrorIs(t, err, ErrUnavailable)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	store, err = createQdrantStore(map[string]interface{}{"url": srv.URL})
	require.NoError(t, err)
	_, err = store.Search(context.Background(), []float32{1}, 1)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnavailable)
}

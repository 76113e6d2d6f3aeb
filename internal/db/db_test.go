package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatements(t *testing.T) {
	stmts, err := Statements()
	require.NoError(t, err)
	require.NotEmpty(t, stmts)
	require.Equal(t, "CREATE EXTENSION IF NOT EXISTS vector", stmts[0])

	var fn string
	for _, s := range stmts {
		require.NotContains(t, s, ";")
		if strings.Contains(s, "FUNCTION match_rag_chunks") {
			fn = s
		}
	}
	require.NotEmpty(t, fn)
	require.True(t, strings.HasSuffix(fn, "$$"))
	require.Contains(t, stmts[len(stmts)-1], "rag_documents")
}

func TestOpenRequiresDSN(t *testing.T) {
	_, err := Open("  ")
	require.Error(t, err)
}

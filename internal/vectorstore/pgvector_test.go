package vectorstore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/foliochat/internal/model"
)

type fakeRows struct {
	rows [][4]string
	pos  int
	err  error
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.rows[r.pos-1]
	for i, d := range dest {
		*d.(*string) = row[i]
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }

func TestReadCaseStudies(t *testing.T) {
	metas, err := readCaseStudies(&fakeRows{rows: [][4]string{
		{"jucosa", "Jucosa", "https://www.jucosa.io/", ""},
		{"atlas", "Atlas", "", "https://github.com/justaurelia/atlas"},
	}})
	require.NoError(t, err)
	require.Equal(t, []model.DocMeta{
		{Type: model.DocTypeCaseStudy, Slug: "jucosa", Title: "Jucosa", URL: "https://www.jucosa.io/"},
		{Type: model.DocTypeCaseStudy, Slug: "atlas", Title: "Atlas", GitHub: "https://github.com/justaurelia/atlas"},
	}, metas)
}

func TestReadCaseStudiesEmptyIsNotNil(t *testing.T) {
	metas, err := readCaseStudies(&fakeRows{})
	require.NoError(t, err)
	require.NotNil(t, metas)
	require.Empty(t, metas)
}

func TestReadCaseStudiesRowError(t *testing.T) {
	_, err := readCaseStudies(&fakeRows{err: errors.New("conn reset")})
	require.Error(t, err)
}

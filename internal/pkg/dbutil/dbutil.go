package dbutil

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	limitRegex = regexp.MustCompile(`(?i)LIMIT\s+\?\s*,\s*\?`)
	identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
)

// Finalize turns a gendry query into postgres form: MySQL style
// "LIMIT offset, count" becomes "LIMIT count OFFSET offset" and '?'
// placeholders become $n.
func Finalize(query string, args []interface{}) (string, []interface{}) {
	loc := limitRegex.FindStringIndex(query)
	if loc != nil {
		prefix := query[:loc[0]]
		qCount := strings.Count(prefix, "?")
		if qCount+1 < len(args) {
			args[qCount], args[qCount+1] = args[qCount+1], args[qCount]
			query = limitRegex.ReplaceAllString(query, "LIMIT ? OFFSET ?")
		}
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args
}

// ValidIdentifier reports whether name is safe to splice into SQL as a
// (optionally schema qualified) table or function name.
func ValidIdentifier(name string) bool {
	return identRegex.MatchString(name)
}

// IsUndefinedTable reports a postgres "relation does not exist" error.
func IsUndefinedTable(err error) bool {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	return false
}

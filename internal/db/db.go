package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres codes for objects that a previous run already created.
var ignorableCodes = map[pq.ErrorCode]bool{
	"42P07": true, // duplicate_table
	"42710": true, // duplicate_object
	"42723": true, // duplicate_function
}

// Open connects to postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return conn, nil
}

// Statements returns the embedded migrations as single statements, ordered by
// file name. A migration file must not contain a literal ';' inside a statement.
func Statements() ([]string, error) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	var stmts []string
	for _, name := range files {
		raw, err := migrationsFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path.Base(name), err)
		}
		for _, part := range strings.Split(string(raw), ";") {
			if part = strings.TrimSpace(part); part != "" {
				stmts = append(stmts, part)
			}
		}
	}
	return stmts, nil
}

// ApplyMigrations runs every statement, skipping objects that already exist.
func ApplyMigrations(ctx context.Context, conn *sql.DB) error {
	stmts, err := Statements()
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil && !alreadyExists(err) {
			head, _, _ := strings.Cut(stmt, "\n")
			return fmt.Errorf("execute migration %q: %w", head, err)
		}
	}
	return nil
}

func alreadyExists(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && ignorableCodes[pqErr.Code]
}

// Package sqlstore implements storage.Store on top of database/sql.
// Backend packages (sqlite, postgres) open the connection, run their schema
// and hand the *sql.DB to New together with a Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/mmynk/shoplist/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Dialect captures the differences between SQL backends.
type Dialect struct {
	// Name is used in log output.
	Name string

	// Numbered placeholders ($1, $2, ...) instead of "?".
	Numbered bool

	// IsUniqueViolation reports whether err is a unique constraint failure.
	IsUniqueViolation func(err error) bool
}

// Store implements storage.Store using SQL.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New wraps an open database. The schema must already exist.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// q rewrites "?" placeholders for dialects that number them.
func (s *Store) q(query string) string {
	if !s.dialect.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *Store) isUniqueViolation(err error) bool {
	return s.dialect.IsUniqueViolation != nil && s.dialect.IsUniqueViolation(err)
}

// withTx runs fn in a transaction, committing only if fn succeeds.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

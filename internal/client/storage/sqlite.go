package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/worldacross/membership/internal/client/storage/migrations"
	"github.com/worldacross/membership/internal/common"

	_ "modernc.org/sqlite"
)

var gooseMu sync.Mutex

// SQLiteStore keeps the credential in the metadata table of a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dsn and applies
// pending migrations.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	// a single connection keeps ":memory:" databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate sqlite %q: %w", dsn, err)
	}
	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an already migrated database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	// goose keeps its configuration in package globals
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(log.New(io.Discard, "", 0))
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *SQLiteStore) Load(ctx context.Context) (string, error) {
	value, err := get(ctx, s.db, common.CredentialKey)
	if err != nil {
		return "", err
	}
	return string(value), nil
}

// ExpiresAt returns the expiry recorded by the last Save, zero if none.
func (s *SQLiteStore) ExpiresAt(ctx context.Context) (time.Time, error) {
	value, err := get(ctx, s.db, common.CredentialExpiryKey)
	if err != nil || value == nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, string(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse metadata[%s]: %w", common.CredentialExpiryKey, err)
	}
	return t, nil
}

func (s *SQLiteStore) Save(ctx context.Context, token string, expiresAt time.Time) error {
	return withTx(ctx, s.db, func(ctx context.Context, tx execer) error {
		if err := set(ctx, tx, common.CredentialKey, []byte(token)); err != nil {
			return err
		}
		return set(ctx, tx, common.CredentialExpiryKey, []byte(expiresAt.UTC().Format(time.RFC3339)))
	})
}

func (s *SQLiteStore) Remove(ctx context.Context) error {
	return withTx(ctx, s.db, func(ctx context.Context, tx execer) error {
		if err := del(ctx, tx, common.CredentialKey); err != nil {
			return err
		}
		return del(ctx, tx, common.CredentialExpiryKey)
	})
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func get(ctx context.Context, db execer, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func set(ctx context.Context, db execer, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func del(ctx context.Context, db execer, key string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

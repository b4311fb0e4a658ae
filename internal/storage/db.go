// Package storage persists the client's bearer credential.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

const (
	// CredentialName is the fixed key the access token is stored under.
	CredentialName = "access_token"
	// TokenLifetime is how long a saved token stays readable (7 days).
	TokenLifetime = 7 * 24 * time.Hour
)

// ErrNoCredential is returned by Read when no unexpired token is stored.
var ErrNoCredential = errors.New("no stored credential")

// DB wraps a sql.DB connection holding the credential table.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// NewDB opens a database connection and runs migrations. The parent
// directory of a file path is created if needed.
func NewDB(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps :memory: databases shared across calls.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn, now: time.Now}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS credentials (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at INTEGER NOT NULL,
			saved_at INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Save stores token under CredentialName, replacing any previous value.
func (db *DB) Save(ctx context.Context, token string) error {
	now := db.now()
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO credentials (name, value, expires_at, saved_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at, saved_at = excluded.saved_at`,
		CredentialName, token, now.Add(TokenLifetime).Unix(), now.Unix(),
	)
	return err
}

// Read returns the stored token, or ErrNoCredential if it is missing or
// past its expiry.
func (db *DB) Read(ctx context.Context) (string, error) {
	var token string
	err := db.conn.QueryRowContext(ctx,
		"SELECT value FROM credentials WHERE name = ? AND expires_at > ?",
		CredentialName, db.now().Unix(),
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

// ExpiresAt returns when the stored token stops being readable.
func (db *DB) ExpiresAt(ctx context.Context) (time.Time, error) {
	var unix int64
	err := db.conn.QueryRowContext(ctx,
		"SELECT expires_at FROM credentials WHERE name = ? AND expires_at > ?",
		CredentialName, db.now().Unix(),
	).Scan(&unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrNoCredential
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix, 0), nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (db *DB) Clear(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM credentials WHERE name = ?", CredentialName)
	return err
}

// CleanExpired deletes expired rows.
func (db *DB) CleanExpired(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, "DELETE FROM credentials WHERE expires_at <= ?", db.now().Unix())
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

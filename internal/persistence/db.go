// Package persistence provides SQLite storage for render history, metadata
// and compressed heightmaps.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// MetaLastConfig holds the permalink of the most recent configuration.
const MetaLastConfig = "last_config"

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS renders (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		seed TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		permalink TEXT NOT NULL,
		contours INTEGER NOT NULL,
		zones INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS heightmaps (
		key TEXT PRIMARY KEY,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		data BLOB NOT NULL,
		stored_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_renders_created ON renders(created_at);
	CREATE INDEX IF NOT EXISTS idx_heightmaps_stored ON heightmaps(stored_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Render is one row of render history.
type Render struct {
	ID         string `db:"id" json:"id"`
	CreatedAt  int64  `db:"created_at" json:"createdAt"`
	Seed       string `db:"seed" json:"seed"`
	Width      int    `db:"width" json:"width"`
	Height     int    `db:"height" json:"height"`
	Permalink  string `db:"permalink" json:"permalink"`
	Contours   int    `db:"contours" json:"contours"`
	Zones      int    `db:"zones" json:"zones"`
	DurationMS int64  `db:"duration_ms" json:"durationMs"`
}

// SaveRender appends r to the history, assigning an ID and timestamp when unset.
func (db *DB) SaveRender(r *Render) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().UnixMilli()
	}
	_, err := db.conn.NamedExec(`INSERT INTO renders
		(id, created_at, seed, width, height, permalink, contours, zones, duration_ms)
		VALUES (:id, :created_at, :seed, :width, :height, :permalink, :contours, :zones, :duration_ms)`, r)
	if err != nil {
		return fmt.Errorf("insert render %s: %w", r.ID, err)
	}
	return nil
}

// GetRender looks up a render by ID.
func (db *DB) GetRender(id string) (Render, error) {
	var r Render
	err := db.conn.Get(&r, "SELECT * FROM renders WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("render %s: %w", id, ErrNotFound)
	}
	return r, err
}

// RecentRenders returns the most recent N renders, newest first.
func (db *DB) RecentRenders(limit int) ([]Render, error) {
	var renders []Render
	err := db.conn.Select(&renders,
		"SELECT * FROM renders ORDER BY created_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return renders, err
}

// CountRenders returns the number of stored renders.
func (db *DB) CountRenders() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM renders")
	return n, err
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("meta %s: %w", key, ErrNotFound)
	}
	return value, err
}

// RecordRender saves a history row and remembers its permalink as the last
// configuration.
func (db *DB) RecordRender(r *Render) error {
	if err := db.SaveRender(r); err != nil {
		return fmt.Errorf("save render: %w", err)
	}
	if err := db.SaveMeta(MetaLastConfig, r.Permalink); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	slog.Debug("render recorded", "id", r.ID, "seed", r.Seed, "zones", r.Zones)
	return nil
}

// Package store persists games, moves and stakes in SQLite so a server
// restart does not lose running games.
package store

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// DB wraps the SQLite connection.
type DB struct {
	conn *sql.DB
	log  zerolog.Logger
}

// Open connects to the SQLite file at path and applies the schema. WAL
// mode keeps readers from blocking the move-writing path.
func Open(path string, log zerolog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would get its own empty database.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
	}

	db := &DB{conn: conn, log: log}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.conn.Close() }

// Conn exposes the raw connection for tests.
func (db *DB) Conn() *sql.DB { return db.conn }

var schema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id           TEXT PRIMARY KEY,
		white_player TEXT NOT NULL,
		black_player TEXT,
		status       TEXT NOT NULL,
		result       TEXT NOT NULL,
		snapshot     TEXT NOT NULL,
		created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS game_moves (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id     TEXT NOT NULL REFERENCES games(id),
		move_number INTEGER NOT NULL,
		player      TEXT NOT NULL,
		kind        TEXT NOT NULL,
		request     TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS game_stakes (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id    TEXT NOT NULL REFERENCES games(id),
		player     TEXT NOT NULL,
		amount     INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS quantum_states (
		game_id        TEXT PRIMARY KEY REFERENCES games(id),
		superpositions TEXT NOT NULL,
		entanglements  TEXT NOT NULL,
		updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_game_moves_game ON game_moves(game_id, move_number)`,
	`CREATE INDEX IF NOT EXISTS idx_game_stakes_game ON game_stakes(game_id)`,
}

func (db *DB) migrate() error {
	for _, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	db.log.Debug().Msg("schema applied")
	return nil
}

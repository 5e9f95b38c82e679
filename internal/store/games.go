package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quantum_chess/internal/game"
)

// ErrGameNotFound is returned when no row exists for the given game id.
var ErrGameNotFound = errors.New("game not found")

// GameRecord is the persisted form of one game.
type GameRecord struct {
	ID          uuid.UUID
	WhitePlayer string
	BlackPlayer string
	Status      string
	Result      string
	Snapshot    game.Snapshot
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MoveRecord is one row of a game's move log.
type MoveRecord struct {
	GameID     uuid.UUID
	MoveNumber int
	Player     string
	Kind       string
	Request    game.MoveRequest
	Outcome    game.MoveOutcome
	CreatedAt  time.Time
}

// StakeRecord is one stake entry for a game.
type StakeRecord struct {
	GameID    uuid.UUID
	Player    string
	Amount    uint64
	CreatedAt time.Time
}

// Games is the repository for game rows and their satellite tables.
type Games struct {
	db *DB
}

// NewGames returns the games repository.
func NewGames(db *DB) *Games {
	return &Games{db: db}
}

// Save upserts the game row and refreshes its quantum_states mirror.
func (g *Games) Save(ctx context.Context, rec GameRecord) error {
	snapshot, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	supers, err := json.Marshal(rec.Snapshot.Superpositions)
	if err != nil {
		return fmt.Errorf("marshal superpositions: %w", err)
	}
	ents, err := json.Marshal(rec.Snapshot.Entanglements)
	if err != nil {
		return fmt.Errorf("marshal entanglements: %w", err)
	}

	tx, err := g.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO games (id, white_player, black_player, status, result, snapshot)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			white_player = excluded.white_player,
			black_player = excluded.black_player,
			status       = excluded.status,
			result       = excluded.result,
			snapshot     = excluded.snapshot,
			updated_at   = CURRENT_TIMESTAMP`,
		rec.ID.String(), rec.WhitePlayer, rec.BlackPlayer, rec.Status, rec.Result, string(snapshot))
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO quantum_states (game_id, superpositions, entanglements)
		VALUES (?, ?, ?)
		ON CONFLICT(game_id) DO UPDATE SET
			superpositions = excluded.superpositions,
			entanglements  = excluded.entanglements,
			updated_at     = CURRENT_TIMESTAMP`,
		rec.ID.String(), string(supers), string(ents))
	if err != nil {
		return fmt.Errorf("save quantum state: %w", err)
	}
	return tx.Commit()
}

// Load fetches one game by id.
func (g *Games) Load(ctx context.Context, id uuid.UUID) (*GameRecord, error) {
	row := g.db.conn.QueryRowContext(ctx, `
		SELECT id, white_player, COALESCE(black_player, ''), status, result, snapshot, created_at, updated_at
		FROM games WHERE id = ?`, id.String())
	return scanGame(row)
}

// List returns every game, newest first.
func (g *Games) List(ctx context.Context) ([]GameRecord, error) {
	rows, err := g.db.conn.QueryContext(ctx, `
		SELECT id, white_player, COALESCE(black_player, ''), status, result, snapshot, created_at, updated_at
		FROM games ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameRecord
	for rows.Next() {
		rec, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// AppendMove appends one row to the game's move log.
func (g *Games) AppendMove(ctx context.Context, rec MoveRecord) error {
	request, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	outcome, err := json.Marshal(rec.Outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	_, err = g.db.conn.ExecContext(ctx, `
		INSERT INTO game_moves (game_id, move_number, player, kind, request, outcome)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.GameID.String(), rec.MoveNumber, rec.Player, rec.Kind, string(request), string(outcome))
	if err != nil {
		return fmt.Errorf("append move: %w", err)
	}
	return nil
}

// Moves returns a game's move log in play order.
func (g *Games) Moves(ctx context.Context, id uuid.UUID) ([]MoveRecord, error) {
	rows, err := g.db.conn.QueryContext(ctx, `
		SELECT game_id, move_number, player, kind, request, outcome, created_at
		FROM game_moves WHERE game_id = ? ORDER BY move_number`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MoveRecord
	for rows.Next() {
		var (
			rec     MoveRecord
			rawID   string
			request string
			outcome string
		)
		if err := rows.Scan(&rawID, &rec.MoveNumber, &rec.Player, &rec.Kind, &request, &outcome, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if rec.GameID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parse game id: %w", err)
		}
		if err := json.Unmarshal([]byte(request), &rec.Request); err != nil {
			return nil, fmt.Errorf("unmarshal request: %w", err)
		}
		if err := json.Unmarshal([]byte(outcome), &rec.Outcome); err != nil {
			return nil, fmt.Errorf("unmarshal outcome: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// RecordStake appends one stake entry.
func (g *Games) RecordStake(ctx context.Context, rec StakeRecord) error {
	_, err := g.db.conn.ExecContext(ctx, `
		INSERT INTO game_stakes (game_id, player, amount) VALUES (?, ?, ?)`,
		rec.GameID.String(), rec.Player, rec.Amount)
	if err != nil {
		return fmt.Errorf("record stake: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*GameRecord, error) {
	var (
		rec      GameRecord
		rawID    string
		snapshot string
	)
	err := row.Scan(&rawID, &rec.WhitePlayer, &rec.BlackPlayer, &rec.Status, &rec.Result,
		&snapshot, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	if rec.ID, err = uuid.Parse(rawID); err != nil {
		return nil, fmt.Errorf("parse game id: %w", err)
	}
	if err := json.Unmarshal([]byte(snapshot), &rec.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &rec, nil
}

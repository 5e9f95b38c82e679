// Package arena manages the set of live games: creation, joining, move
// routing and persistence. Each game carries its own lock, so games
// progress independently while a single game's moves are serialized.
package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quantum_chess/internal/game"
	"quantum_chess/internal/shared"
	"quantum_chess/internal/store"
)

// Game lifecycle statuses persisted alongside the snapshot.
const (
	StatusWaiting   = "waiting"   // created, no second player yet
	StatusActive    = "active"    // both players seated
	StatusCompleted = "completed" // terminal result reached
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameFull        = errors.New("game already has two players")
	ErrNotAPlayer      = errors.New("player is not seated in this game")
	ErrNotYourTurn     = errors.New("not this player's turn")
	ErrWaitingForJoin  = errors.New("waiting for an opponent")
	ErrStakeOutOfRange = errors.New("stake out of range")
)

type slot struct {
	mu        sync.Mutex
	id        uuid.UUID
	engine    *game.Engine
	white     string
	black     string
	status    string
	moveCount int
	createdAt time.Time
}

func (s *slot) colorOf(player string) (game.Color, bool) {
	switch player {
	case s.white:
		return game.White, true
	case s.black:
		if s.black != "" {
			return game.Black, true
		}
	}
	return game.White, false
}

// Config bounds the stakes the arena accepts.
type Config struct {
	MinStake uint64
	MaxStake uint64
}

// Arena routes requests to game slots and mirrors every mutation into
// the store. A nil repository keeps games in memory only.
type Arena struct {
	mu         sync.RWMutex
	games      map[uuid.UUID]*slot
	repo       *store.Games
	cfg        Config
	log        zerolog.Logger
	engineOpts []game.Option
}

// New creates an arena. Extra engine options (seeded randomness, policy
// overrides) apply to every game it creates or restores.
func New(repo *store.Games, cfg Config, log zerolog.Logger, opts ...game.Option) *Arena {
	return &Arena{
		games:      make(map[uuid.UUID]*slot),
		repo:       repo,
		cfg:        cfg,
		log:        log,
		engineOpts: opts,
	}
}

// GameView is the external representation of one game.
type GameView struct {
	ID        uuid.UUID       `json:"id"`
	White     string          `json:"white"`
	Black     string          `json:"black,omitempty"`
	Status    string          `json:"status"`
	State     game.BoardState `json:"state"`
	MoveCount int             `json:"moveCount"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Create opens a new game with the creator seated as White.
func (a *Arena) Create(ctx context.Context, whitePlayer string, stake uint64) (*GameView, error) {
	if whitePlayer == "" {
		return nil, errors.New("player name required")
	}
	if err := a.checkStake(stake); err != nil {
		return nil, err
	}

	s := &slot{
		id:        uuid.New(),
		engine:    game.NewEngine(a.engineOpts...),
		white:     whitePlayer,
		status:    StatusWaiting,
		createdAt: time.Now().UTC(),
	}
	s.engine.SetStake(game.White, stake)

	// Publish under the slot lock so a concurrent Join on the new id
	// cannot mutate the engine until the create has persisted.
	s.mu.Lock()
	defer s.mu.Unlock()

	a.mu.Lock()
	a.games[s.id] = s
	a.mu.Unlock()

	if err := a.persist(ctx, s); err != nil {
		return nil, err
	}
	if err := a.recordStake(ctx, s.id, game.White, stake); err != nil {
		return nil, err
	}
	a.log.Info().Stringer("game", s.id).Str("white", whitePlayer).Uint64("stake", stake).Msg("game created")
	view := s.view()
	return &view, nil
}

// Join seats the second player as Black and activates the game.
func (a *Arena) Join(ctx context.Context, id uuid.UUID, blackPlayer string, stake uint64) (*GameView, error) {
	if blackPlayer == "" {
		return nil, errors.New("player name required")
	}
	if err := a.checkStake(stake); err != nil {
		return nil, err
	}
	s, err := a.slotFor(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.black != "" {
		return nil, ErrGameFull
	}
	if blackPlayer == s.white {
		return nil, errors.New("cannot join your own game")
	}
	s.black = blackPlayer
	s.status = StatusActive
	s.engine.SetStake(game.Black, stake)

	if err := a.persist(ctx, s); err != nil {
		return nil, err
	}
	if err := a.recordStake(ctx, id, game.Black, stake); err != nil {
		return nil, err
	}
	a.log.Info().Stringer("game", id).Str("black", blackPlayer).Uint64("stake", stake).Msg("player joined")
	view := s.view()
	return &view, nil
}

// Move applies one move on behalf of a seated player.
func (a *Arena) Move(ctx context.Context, id uuid.UUID, player string, req game.MoveRequest) (*game.MoveOutcome, error) {
	s, err := a.slotFor(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusWaiting {
		return nil, ErrWaitingForJoin
	}
	color, seated := s.colorOf(player)
	if !seated {
		return nil, ErrNotAPlayer
	}
	if color != s.engine.Turn() {
		return nil, ErrNotYourTurn
	}

	outcome, err := s.engine.Move(req)
	if err != nil {
		return nil, err
	}
	s.moveCount++
	if outcome.Result.Terminal() {
		s.status = StatusCompleted
		a.log.Info().Stringer("game", id).Stringer("result", outcome.Result).Msg("game over")
	}

	if err := a.persist(ctx, s); err != nil {
		return nil, err
	}
	if a.repo != nil {
		rec := store.MoveRecord{
			GameID:     id,
			MoveNumber: s.moveCount,
			Player:     player,
			Kind:       req.Kind.String(),
			Request:    req,
			Outcome:    *outcome,
		}
		if err := a.repo.AppendMove(ctx, rec); err != nil {
			a.log.Error().Err(err).Stringer("game", id).Msg("move log write failed")
		}
	}
	return outcome, nil
}

// Get returns the current view of one game.
func (a *Arena) Get(ctx context.Context, id uuid.UUID) (*GameView, error) {
	s, err := a.slotFor(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	view := s.view()
	return &view, nil
}

// List returns a view of every game the arena knows about.
func (a *Arena) List(ctx context.Context) ([]GameView, error) {
	if a.repo != nil {
		records, err := a.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		views := make([]GameView, 0, len(records))
		for _, rec := range records {
			view, err := a.Get(ctx, rec.ID)
			if err != nil {
				return nil, err
			}
			views = append(views, *view)
		}
		return views, nil
	}

	a.mu.RLock()
	slots := make([]*slot, 0, len(a.games))
	for _, s := range a.games {
		slots = append(slots, s)
	}
	a.mu.RUnlock()

	views := make([]GameView, 0, len(slots))
	for _, s := range slots {
		s.mu.Lock()
		views = append(views, s.view())
		s.mu.Unlock()
	}
	return views, nil
}

// Probability previews the move probability model for a game.
func (a *Arena) Probability(ctx context.Context, id uuid.UUID, from, to shared.Square, isCapture bool) (float64, error) {
	s, err := a.slotFor(ctx, id)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.MoveProbabilityPreview(from, to, isCapture)
}

func (a *Arena) checkStake(stake uint64) error {
	if stake < a.cfg.MinStake || stake > a.cfg.MaxStake {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrStakeOutOfRange, stake, a.cfg.MinStake, a.cfg.MaxStake)
	}
	return nil
}

// slotFor fetches the in-memory slot, restoring it from the store when
// the game survived a restart.
func (a *Arena) slotFor(ctx context.Context, id uuid.UUID) (*slot, error) {
	a.mu.RLock()
	s, ok := a.games[id]
	a.mu.RUnlock()
	if ok {
		return s, nil
	}
	if a.repo == nil {
		return nil, ErrGameNotFound
	}

	rec, err := a.repo.Load(ctx, id)
	if errors.Is(err, store.ErrGameNotFound) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	engine, err := game.RestoreEngine(rec.Snapshot, a.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("restore game %s: %w", id, err)
	}
	moves, err := a.repo.Moves(ctx, id)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if existing, ok := a.games[id]; ok {
		return existing, nil
	}
	s = &slot{
		id:        id,
		engine:    engine,
		white:     rec.WhitePlayer,
		black:     rec.BlackPlayer,
		status:    rec.Status,
		moveCount: len(moves),
		createdAt: rec.CreatedAt,
	}
	a.games[id] = s
	a.log.Debug().Stringer("game", id).Msg("game restored from store")
	return s, nil
}

// persist mirrors the slot into the store. Caller holds the slot lock.
func (a *Arena) persist(ctx context.Context, s *slot) error {
	if a.repo == nil {
		return nil
	}
	rec := store.GameRecord{
		ID:          s.id,
		WhitePlayer: s.white,
		BlackPlayer: s.black,
		Status:      s.status,
		Result:      s.engine.Result().String(),
		Snapshot:    s.engine.Snapshot(),
	}
	if err := a.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("persist game %s: %w", s.id, err)
	}
	return nil
}

func (a *Arena) recordStake(ctx context.Context, id uuid.UUID, color game.Color, amount uint64) error {
	if a.repo == nil {
		return nil
	}
	rec := store.StakeRecord{GameID: id, Player: color.String(), Amount: amount}
	if err := a.repo.RecordStake(ctx, rec); err != nil {
		return fmt.Errorf("record stake for %s: %w", id, err)
	}
	return nil
}

// view builds the external representation. Caller holds the slot lock.
func (s *slot) view() GameView {
	return GameView{
		ID:        s.id,
		White:     s.white,
		Black:     s.black,
		Status:    s.status,
		State:     s.engine.State(),
		MoveCount: s.moveCount,
		CreatedAt: s.createdAt,
	}
}

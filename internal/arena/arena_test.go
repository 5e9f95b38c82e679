package arena

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"quantum_chess/internal/game"
	"quantum_chess/internal/shared"
	"quantum_chess/internal/store"
)

func testArena(t *testing.T) *Arena {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "arena.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(store.NewGames(db), Config{MinStake: 1, MaxStake: 1000}, zerolog.Nop(), game.WithSeed(1))
}

func classicalReq(t *testing.T, from, to string) game.MoveRequest {
	t.Helper()
	f, ok := shared.CoordToSquare(from)
	require.True(t, ok)
	s, ok := shared.CoordToSquare(to)
	require.True(t, ok)
	return game.MoveRequest{Kind: shared.MoveClassical, From: f, To: s}
}

func TestCreateJoinMove(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	created, err := a.Create(ctx, "alice", 50)
	require.NoError(t, err)
	require.Equal(t, StatusWaiting, created.Status)
	require.Equal(t, "alice", created.White)

	joined, err := a.Join(ctx, created.ID, "bob", 30)
	require.NoError(t, err)
	require.Equal(t, StatusActive, joined.Status)
	require.Equal(t, "bob", joined.Black)

	outcome, err := a.Move(ctx, created.ID, "alice", classicalReq(t, "e2", "e4"))
	require.NoError(t, err)
	require.Equal(t, shared.MoveClassical, outcome.Kind)

	view, err := a.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, view.MoveCount)
	require.Equal(t, shared.Black, view.State.Turn)
}

func TestMoveGuards(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	created, err := a.Create(ctx, "alice", 50)
	require.NoError(t, err)

	// No opponent yet.
	_, err = a.Move(ctx, created.ID, "alice", classicalReq(t, "e2", "e4"))
	require.ErrorIs(t, err, ErrWaitingForJoin)

	_, err = a.Join(ctx, created.ID, "bob", 30)
	require.NoError(t, err)

	// Strangers are rejected.
	_, err = a.Move(ctx, created.ID, "mallory", classicalReq(t, "e2", "e4"))
	require.ErrorIs(t, err, ErrNotAPlayer)

	// Black cannot open the game.
	_, err = a.Move(ctx, created.ID, "bob", classicalReq(t, "e7", "e5"))
	require.ErrorIs(t, err, ErrNotYourTurn)
}

func TestJoinGuards(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	created, err := a.Create(ctx, "alice", 50)
	require.NoError(t, err)

	_, err = a.Join(ctx, created.ID, "alice", 30)
	require.Error(t, err)

	_, err = a.Join(ctx, created.ID, "bob", 30)
	require.NoError(t, err)

	_, err = a.Join(ctx, created.ID, "carol", 30)
	require.ErrorIs(t, err, ErrGameFull)

	_, err = a.Join(ctx, uuid.New(), "dave", 30)
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestStakeBounds(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	_, err := a.Create(ctx, "alice", 0)
	require.ErrorIs(t, err, ErrStakeOutOfRange)

	_, err = a.Create(ctx, "alice", 5000)
	require.ErrorIs(t, err, ErrStakeOutOfRange)
}

func TestProbabilityPreview(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	created, err := a.Create(ctx, "alice", 50)
	require.NoError(t, err)

	from, _ := shared.CoordToSquare("b1")
	to, _ := shared.CoordToSquare("c3")
	prob, err := a.Probability(ctx, created.ID, from, to, false)
	require.NoError(t, err)
	// Knight, stake 50: base 0.5 plus the 0.15 stake bonus.
	require.InDelta(t, 0.65, prob, 1e-9)
}

func TestRestartRecoversGames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arena.db")
	ctx := context.Background()

	db, err := store.Open(path, zerolog.Nop())
	require.NoError(t, err)
	first := New(store.NewGames(db), Config{MinStake: 1, MaxStake: 1000}, zerolog.Nop(), game.WithSeed(1))

	created, err := first.Create(ctx, "alice", 50)
	require.NoError(t, err)
	_, err = first.Join(ctx, created.ID, "bob", 30)
	require.NoError(t, err)
	_, err = first.Move(ctx, created.ID, "alice", classicalReq(t, "e2", "e4"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Fresh arena over the same file: the game comes back mid-flight.
	db2, err := store.Open(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db2.Close() })
	second := New(store.NewGames(db2), Config{MinStake: 1, MaxStake: 1000}, zerolog.Nop(), game.WithSeed(1))

	view, err := second.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", view.White)
	require.Equal(t, "bob", view.Black)
	require.Equal(t, shared.Black, view.State.Turn)

	_, err = second.Move(ctx, created.ID, "bob", classicalReq(t, "e7", "e5"))
	require.NoError(t, err)
}

func TestConcurrentCreateAndJoin(t *testing.T) {
	a := testArena(t)
	ctx := context.Background()

	const n = 4
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	joined := make(chan uuid.UUID, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := a.Create(ctx, fmt.Sprintf("white-%d", i), 10)
			errs <- err
		}(i)
	}

	// Joiners race the creators: each grabs the first waiting game it
	// sees and retries until one join sticks.
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			player := fmt.Sprintf("black-%d", i)
			for {
				games, err := a.List(ctx)
				if err != nil {
					errs <- err
					return
				}
				for _, g := range games {
					if g.Status != StatusWaiting {
						continue
					}
					view, joinErr := a.Join(ctx, g.ID, player, 10)
					if joinErr != nil {
						continue
					}
					joined <- view.ID
					errs <- nil
					return
				}
				runtime.Gosched()
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	close(joined)
	seen := make(map[uuid.UUID]bool)
	for id := range joined {
		require.False(t, seen[id], "game %s joined twice", id)
		seen[id] = true
		view, err := a.Get(ctx, id)
		require.NoError(t, err)
		require.Equal(t, StatusActive, view.Status)
		require.NotEmpty(t, view.Black)
	}
	require.Len(t, seen, n)
}

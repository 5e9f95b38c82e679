package game

import (
	"quantum_chess/internal/quantum"
)

// Snapshot captures the engine for persistence. The quantum registry is
// not serialized directly; Restore rebuilds it from the superposition and
// entanglement records, which carry the full two-square distributions.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Pieces:         e.board.Pieces(),
		Turn:           e.board.Turn(),
		Superpositions: e.Superpositions(),
		Entanglements:  e.Entanglements(),
		Result:         e.result,
		Stakes:         e.stakes,
	}
}

// RestoreEngine reconstructs an engine from a snapshot. Options apply
// after the position is rebuilt, so a caller can reseed randomness or
// swap the policy without disturbing the restored state.
func RestoreEngine(snap Snapshot, opts ...Option) (*Engine, error) {
	e := &Engine{
		board:    NewBoard(),
		registry: quantum.NewRegistry(),
		policy:   DefaultPolicy(),
		result:   snap.Result,
		stakes:   snap.Stakes,
		lastNote: "restored game",
	}
	for e.board.Turn() != snap.Turn {
		e.board.flipTurn()
	}

	for _, pc := range snap.Pieces {
		if e.board.Occupied(pc.Square) {
			return nil, invalidInput("snapshot places two pieces on %s", pc.Square)
		}
		e.board.Place(pc, pc.Square)
	}

	for _, sup := range snap.Superpositions {
		if e.board.Occupied(sup.Primary) || e.board.Occupied(sup.Secondary) {
			return nil, invalidInput("snapshot superposition {%s, %s} overlaps a board piece", sup.Primary, sup.Secondary)
		}
		state, err := quantum.NewSuperposition(
			[]Square{sup.Primary, sup.Secondary},
			[]float64{sup.Probability, 1 - sup.Probability},
		)
		if err != nil {
			return nil, invalidInput("snapshot superposition: %v", err)
		}
		e.registry.Put(sup.Piece.ID, state)
		e.superpositions = append(e.superpositions, sup)
	}

	for _, ent := range snap.Entanglements {
		a := e.board.PieceAt(ent.A)
		b := e.board.PieceAt(ent.B)
		if a == nil || b == nil {
			return nil, invalidInput("snapshot entanglement %s <-> %s misses a piece", ent.A, ent.B)
		}
		e.ensureRegistered(a)
		e.ensureRegistered(b)
		link := quantum.Link{Kind: ent.Kind, Correlation: ent.Correlation}
		if err := e.registry.Entangle(a.ID, b.ID, link); err != nil {
			return nil, internalError(err)
		}
		e.entanglements = append(e.entanglements, ent)
	}

	for _, opt := range opts {
		opt(e)
	}
	if e.src == nil {
		e.src = defaultSource()
	}
	e.updateGameStatus()
	return e, nil
}

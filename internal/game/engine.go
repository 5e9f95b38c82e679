package game

import (
	"fmt"
	"math/rand"

	"quantum_chess/internal/quantum"
)

// Engine encapsulates one game: the classical board plus the live set of
// superpositions and entanglements, the quantum policy, and the terminal
// result. It owns that quantum bookkeeping exclusively; callers refer to
// it by square or piece id, never by shared pointer. Not safe for
// concurrent use; the arena serializes moves per game.
type Engine struct {
	board          Board
	superpositions []Superposition
	entanglements  []Entanglement
	registry       *quantum.Registry
	policy         Policy
	stakes         [2]uint64
	result         GameResult
	inCheck        bool
	status         string
	lastNote       string
	src            rand.Source
}

// Option configures a new engine.
type Option func(*Engine)

// WithPolicy overrides the default quantum policy.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithRandomSource injects the randomness used for measurement, so
// collapse outcomes are reproducible under a fixed seed.
func WithRandomSource(src rand.Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithSeed is shorthand for WithRandomSource(rand.NewSource(seed)).
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.src = rand.NewSource(seed) }
}

// NewEngine creates an engine with the standard starting position.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		board:    NewStandardBoard(),
		registry: quantum.NewRegistry(),
		policy:   DefaultPolicy(),
		lastNote: "new game",
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.src == nil {
		e.src = defaultSource()
	}
	e.updateGameStatus()
	return e
}

func defaultSource() rand.Source { return rand.NewSource(rand.Int63()) }

// Result returns the current game result. Terminal values are final.
func (e *Engine) Result() GameResult { return e.result }

// Turn returns the side to move.
func (e *Engine) Turn() Color { return e.board.Turn() }

// SetStake records a player's stake. Only an input to the probability
// model; the engine never initiates a transfer.
func (e *Engine) SetStake(color Color, amount uint64) {
	e.stakes[color.Index()] = amount
}

// Stake returns the recorded stake for a player.
func (e *Engine) Stake(color Color) uint64 { return e.stakes[color.Index()] }

// Superpositions returns the active superpositions for display.
func (e *Engine) Superpositions() []Superposition {
	return append([]Superposition(nil), e.superpositions...)
}

// Entanglements returns the active entanglements for display.
func (e *Engine) Entanglements() []Entanglement {
	return append([]Entanglement(nil), e.entanglements...)
}

// MoveProbabilityPreview is the display query for "what are my odds":
// the probability model applied to a prospective move by the side to move.
func (e *Engine) MoveProbabilityPreview(from, to Square, isCapture bool) (float64, error) {
	pc := e.board.PieceAt(from)
	if pc == nil {
		return 0, notFound("no piece at %s", from)
	}
	return quantum.MoveProbability(pc.Type, to, isCapture, e.Stake(pc.Color), e.pieceEntangled(from)), nil
}

// Move validates and executes one move request. On failure the engine
// state is untouched; on success the board and quantum bookkeeping are
// updated and the terminal status recomputed.
func (e *Engine) Move(req MoveRequest) (*MoveOutcome, error) {
	if e.result.Terminal() {
		return nil, &Error{Kind: KindGameAlreadyEnded, Reason: fmt.Sprintf("game ended: %s", e.result)}
	}

	var (
		outcome *MoveOutcome
		err     error
	)
	switch req.Kind {
	case MoveClassical:
		outcome, err = e.moveClassical(req)
	case MoveSplit:
		outcome, err = e.moveSplit(req)
	case MoveMerge:
		outcome, err = e.moveMerge(req)
	case MoveEntangle:
		outcome, err = e.moveEntangle(req)
	case MoveMeasure:
		outcome, err = e.moveMeasure(req)
	default:
		return nil, invalidInput("unknown move kind %d", req.Kind)
	}
	if err != nil {
		return nil, err
	}

	e.board.flipTurn()
	e.updateGameStatus()
	outcome.Result = e.result
	outcome.InCheck = e.inCheck
	outcome.Status = e.status
	return outcome, nil
}

// ---------------------------
// Classical
// ---------------------------

func (e *Engine) moveClassical(req MoveRequest) (*MoveOutcome, error) {
	pc := e.board.PieceAt(req.From)
	if pc == nil {
		return nil, notFound("no piece at %s", req.From)
	}
	if pc.Color != e.board.Turn() {
		return nil, invalidMove("%s piece at %s cannot move on %s's turn", pc.Color, req.From, e.board.Turn())
	}
	if e.squareSuperposed(req.To) {
		return nil, invalidMove("%s is superposed; measure it first", req.To)
	}
	if !e.board.isValidClassicalMove(pc, req.From, req.To) {
		return nil, invalidMove("illegal %s move %s-%s", pc.Type.Name(), req.From, req.To)
	}
	if e.wouldLeaveKingInCheck(pc.Color, req.From, req.To) {
		return nil, invalidMove("move %s-%s leaves own king in check", req.From, req.To)
	}

	captured := e.board.MovePiece(req.From, req.To)
	if captured != nil {
		e.pieceRemoved(captured)
		e.lastNote = fmt.Sprintf("%s %s %sx%s", pc.Color, pc.Type.Name(), req.From, req.To)
	} else {
		e.lastNote = fmt.Sprintf("%s %s %s-%s", pc.Color, pc.Type.Name(), req.From, req.To)
	}
	e.retargetEntanglements(req.From, req.To)
	return &MoveOutcome{Kind: req.Kind}, nil
}

// ---------------------------
// Split
// ---------------------------

func (e *Engine) moveSplit(req MoveRequest) (*MoveOutcome, error) {
	pc := e.board.PieceAt(req.From)
	if pc == nil {
		return nil, notFound("no piece at %s", req.From)
	}
	if pc.Color != e.board.Turn() {
		return nil, invalidMove("%s piece at %s cannot move on %s's turn", pc.Color, req.From, e.board.Turn())
	}
	if req.ToPrimary == req.ToSecondary {
		return nil, invalidInput("split targets must differ")
	}
	if pc.Type == King && !e.policy.Superposition.AllowKingSuperposition {
		return nil, policyViolation("king superposition is not allowed")
	}
	if e.activeSuperpositions(pc.Color) >= e.policy.Superposition.MaxPerPlayer {
		return nil, policyViolation("superposition cap reached (%d per player)", e.policy.Superposition.MaxPerPlayer)
	}
	if !e.policy.Superposition.AllowWhileInCheck && e.isKingInCheckOn(&e.board, pc.Color) {
		return nil, policyViolation("cannot split while in check")
	}
	for _, target := range []Square{req.ToPrimary, req.ToSecondary} {
		if e.board.Occupied(target) || e.squareSuperposed(target) {
			return nil, invalidMove("split target %s is not free", target)
		}
		if !e.board.isValidClassicalMove(pc, req.From, target) {
			return nil, invalidMove("illegal %s move %s-%s", pc.Type.Name(), req.From, target)
		}
	}

	prob := req.Probability
	if prob == 0 {
		prob = quantum.MoveProbability(pc.Type, req.ToPrimary, false, e.Stake(pc.Color), e.pieceEntangled(req.From))
	}
	if prob < e.policy.Superposition.MinProbability || prob >= 1 {
		return nil, invalidInput("split probability %.3f outside [%.2f, 1)", prob, e.policy.Superposition.MinProbability)
	}

	state, err := quantum.NewSuperposition(
		[]Square{req.ToPrimary, req.ToSecondary},
		[]float64{prob, 1 - prob},
	)
	if err != nil {
		return nil, invalidInput("superposition: %v", err)
	}

	moved := *e.board.Remove(req.From)
	e.registry.Put(moved.ID, state)
	e.superpositions = append(e.superpositions, Superposition{
		Piece:       moved,
		Primary:     req.ToPrimary,
		Secondary:   req.ToSecondary,
		Probability: prob,
	})
	e.lastNote = fmt.Sprintf("%s %s split %s -> {%s, %s} p=%.2f",
		moved.Color, moved.Type.Name(), req.From, req.ToPrimary, req.ToSecondary, prob)
	return &MoveOutcome{Kind: req.Kind, Probability: prob}, nil
}

// ---------------------------
// Merge
// ---------------------------

func (e *Engine) moveMerge(req MoveRequest) (*MoveOutcome, error) {
	idx := e.findSuperposition(req.FromPrimary, req.FromSecondary)
	if idx < 0 {
		return nil, notFound("no superposition over {%s, %s}", req.FromPrimary, req.FromSecondary)
	}
	sup := e.superpositions[idx]
	if sup.Piece.Color != e.board.Turn() {
		return nil, invalidMove("superposed %s piece cannot move on %s's turn", sup.Piece.Color, e.board.Turn())
	}
	if e.squareSuperposed(req.To) {
		return nil, invalidMove("%s is superposed; measure it first", req.To)
	}
	// The merge target must be reachable from both halves.
	for _, source := range []Square{sup.Primary, sup.Secondary} {
		virtual := sup.Piece
		virtual.Square = source
		if !e.board.isValidClassicalMove(&virtual, source, req.To) {
			return nil, invalidMove("illegal %s move %s-%s", sup.Piece.Type.Name(), source, req.To)
		}
	}

	e.superpositions = append(e.superpositions[:idx], e.superpositions[idx+1:]...)
	e.registry.Remove(sup.Piece.ID)
	if captured := e.board.Remove(req.To); captured != nil {
		e.pieceRemoved(captured)
	}
	e.board.Place(sup.Piece, req.To)
	e.lastNote = fmt.Sprintf("%s %s merge {%s, %s} -> %s",
		sup.Piece.Color, sup.Piece.Type.Name(), sup.Primary, sup.Secondary, req.To)
	return &MoveOutcome{Kind: req.Kind}, nil
}

// ---------------------------
// Entangle
// ---------------------------

func (e *Engine) moveEntangle(req MoveRequest) (*MoveOutcome, error) {
	first := e.board.PieceAt(req.From)
	if first == nil {
		return nil, notFound("no piece at %s", req.From)
	}
	second := e.board.PieceAt(req.Target)
	if second == nil {
		return nil, notFound("no piece at %s", req.Target)
	}
	if req.From == req.Target {
		return nil, invalidInput("cannot entangle a piece with itself")
	}
	if first.Color != e.board.Turn() {
		return nil, invalidMove("%s piece at %s cannot move on %s's turn", first.Color, req.From, e.board.Turn())
	}

	rule := e.policy.Entanglement
	if first.Color != second.Color && !rule.AllowOpponent {
		return nil, policyViolation("opponent entanglement is not allowed")
	}
	if first.Type != second.Type && !rule.AllowCrossType {
		return nil, policyViolation("cross-type entanglement is not allowed")
	}
	if !rule.typeAllowed(first.Type) || !rule.typeAllowed(second.Type) {
		return nil, policyViolation("piece types %s/%s cannot be entangled", first.Type.Name(), second.Type.Name())
	}
	if e.activeEntanglements(first.Color) >= rule.MaxPairsPerPlayer {
		return nil, policyViolation("entanglement cap reached (%d pairs per player)", rule.MaxPairsPerPlayer)
	}
	for _, ent := range e.entanglements {
		if ent.Covers(req.From) && ent.Covers(req.Target) {
			return nil, invalidMove("%s and %s are already entangled", req.From, req.Target)
		}
	}
	if req.Entanglement == Custom && (req.Correlation < 0 || req.Correlation > 1) {
		return nil, invalidInput("custom correlation %.3f outside [0, 1]", req.Correlation)
	}

	e.ensureRegistered(first)
	e.ensureRegistered(second)
	link := quantum.Link{Kind: req.Entanglement, Correlation: req.Correlation}
	if err := e.registry.Entangle(first.ID, second.ID, link); err != nil {
		return nil, internalError(err)
	}
	e.entanglements = append(e.entanglements, Entanglement{
		A:           req.From,
		B:           req.Target,
		Kind:        req.Entanglement,
		Correlation: req.Correlation,
	})
	e.lastNote = fmt.Sprintf("%s entangle %s <-> %s (%s)", first.Color, req.From, req.Target, req.Entanglement)
	return &MoveOutcome{Kind: req.Kind}, nil
}

// ---------------------------
// Measure
// ---------------------------

func (e *Engine) moveMeasure(req MoveRequest) (*MoveOutcome, error) {
	if len(req.Positions) == 0 {
		return nil, invalidInput("measure requires at least one position")
	}

	outcome := &MoveOutcome{Kind: req.Kind}
	for _, sq := range req.Positions {
		if idx := e.superpositionCovering(sq); idx >= 0 {
			collapse, err := e.collapseSuperposition(idx)
			if err != nil {
				return nil, err
			}
			outcome.Collapses = append(outcome.Collapses, collapse)
			continue
		}
		if pc := e.board.PieceAt(sq); pc != nil && e.pieceEntangled(sq) {
			if _, err := e.registry.Collapse(pc.ID, e.src); err != nil {
				return nil, internalError(err)
			}
			e.dropEntanglements(sq)
			outcome.Collapses = append(outcome.Collapses, Collapse{Piece: *pc, Result: sq})
		}
		// Not superposed, not entangled: measuring is a no-op.
	}
	e.lastNote = fmt.Sprintf("%s measure (%d collapsed)", e.board.Turn(), len(outcome.Collapses))
	return outcome, nil
}

// collapseSuperposition resolves the superposition at index idx to a
// definite square and places the piece there. Any occupant of the
// resolved square is displaced.
func (e *Engine) collapseSuperposition(idx int) (Collapse, error) {
	sup := e.superpositions[idx]
	measured, err := e.registry.Collapse(sup.Piece.ID, e.src)
	if err != nil {
		return Collapse{}, internalError(err)
	}
	e.superpositions = append(e.superpositions[:idx], e.superpositions[idx+1:]...)
	e.registry.Remove(sup.Piece.ID)
	if captured := e.board.Remove(measured); captured != nil {
		e.pieceRemoved(captured)
	}
	e.board.Place(sup.Piece, measured)
	return Collapse{Piece: sup.Piece, Result: measured}, nil
}

// ---------------------------
// Bookkeeping helpers
// ---------------------------

func (e *Engine) squareSuperposed(sq Square) bool {
	return e.superpositionCovering(sq) >= 0
}

func (e *Engine) superpositionCovering(sq Square) int {
	for i, sup := range e.superpositions {
		if sup.Covers(sq) {
			return i
		}
	}
	return -1
}

func (e *Engine) findSuperposition(a, b Square) int {
	for i, sup := range e.superpositions {
		if sup.Matches(a, b) {
			return i
		}
	}
	return -1
}

func (e *Engine) activeSuperpositions(color Color) int {
	n := 0
	for _, sup := range e.superpositions {
		if sup.Piece.Color == color {
			n++
		}
	}
	return n
}

func (e *Engine) activeEntanglements(color Color) int {
	n := 0
	for _, ent := range e.entanglements {
		if pc := e.board.PieceAt(ent.A); pc != nil && pc.Color == color {
			n++
			continue
		}
		if pc := e.board.PieceAt(ent.B); pc != nil && pc.Color == color {
			n++
		}
	}
	return n
}

func (e *Engine) pieceEntangled(sq Square) bool {
	for _, ent := range e.entanglements {
		if ent.Covers(sq) {
			return true
		}
	}
	return false
}

func (e *Engine) ensureRegistered(pc *Piece) {
	if _, ok := e.registry.Get(pc.ID); !ok {
		e.registry.Put(pc.ID, quantum.New(pc.Square))
	}
}

// pieceRemoved tears down quantum bookkeeping for a captured piece. The
// piece is already off the board, so partner lookup goes through the
// record's far square.
func (e *Engine) pieceRemoved(pc *Piece) {
	kept := e.entanglements[:0]
	for _, ent := range e.entanglements {
		if !ent.Covers(pc.Square) {
			kept = append(kept, ent)
			continue
		}
		other := ent.A
		if other == pc.Square {
			other = ent.B
		}
		if partner := e.board.PieceAt(other); partner != nil {
			if state, ok := e.registry.Get(partner.ID); ok {
				state.Disentangle(pc.ID)
			}
		}
	}
	e.entanglements = kept
	e.registry.Remove(pc.ID)
}

// dropEntanglements removes every entanglement record touching a square,
// unlinking the registry states on both sides.
func (e *Engine) dropEntanglements(sq Square) {
	kept := e.entanglements[:0]
	for _, ent := range e.entanglements {
		if !ent.Covers(sq) {
			kept = append(kept, ent)
			continue
		}
		other := ent.A
		if other == sq {
			other = ent.B
		}
		a := e.board.PieceAt(sq)
		b := e.board.PieceAt(other)
		if a != nil && b != nil {
			if sa, ok := e.registry.Get(a.ID); ok {
				sa.Disentangle(b.ID)
			}
			if sb, ok := e.registry.Get(b.ID); ok {
				sb.Disentangle(a.ID)
			}
		}
	}
	e.entanglements = kept
}

// retargetEntanglements keeps the square-keyed records pointing at an
// entangled piece that just moved.
func (e *Engine) retargetEntanglements(from, to Square) {
	for i := range e.entanglements {
		if e.entanglements[i].A == from {
			e.entanglements[i].A = to
		}
		if e.entanglements[i].B == from {
			e.entanglements[i].B = to
		}
	}
}

// State returns a serializable representation of the current game state.
func (e *Engine) State() BoardState {
	state := BoardState{
		Pieces:         make([]PieceState, 0, 32),
		Turn:           e.board.Turn(),
		TurnName:       e.board.Turn().String(),
		Superpositions: e.Superpositions(),
		Entanglements:  e.Entanglements(),
		Result:         e.result,
		InCheck:        e.inCheck,
		GameOver:       e.result.Terminal(),
		Status:         e.status,
		LastNote:       e.lastNote,
		Stakes: map[string]uint64{
			White.String(): e.stakes[White.Index()],
			Black.String(): e.stakes[Black.Index()],
		},
	}
	for _, pc := range e.board.Pieces() {
		state.Pieces = append(state.Pieces, PieceState{
			ID:        pc.ID,
			Color:     pc.Color,
			ColorName: pc.Color.String(),
			Type:      pc.Type,
			TypeName:  pc.Type.Name(),
			Square:    pc.Square,
		})
	}
	return state
}

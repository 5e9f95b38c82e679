// Package game implements the quantum chess rules engine: the classical
// board, the move state machine for the five move kinds, and terminal
// state detection for games whose kings may be superposed.
package game

import (
	"github.com/google/uuid"

	"quantum_chess/internal/shared"
)

// The canonical value types live in internal/shared; these aliases keep
// call sites in this package short.
type (
	Color            = shared.Color
	PieceType        = shared.PieceType
	Square           = shared.Square
	GameResult       = shared.GameResult
	EntanglementKind = shared.EntanglementKind
	MoveKind         = shared.MoveKind
)

const (
	White = shared.White
	Black = shared.Black

	Pawn   = shared.Pawn
	Knight = shared.Knight
	Bishop = shared.Bishop
	Rook   = shared.Rook
	Queen  = shared.Queen
	King   = shared.King

	InProgress = shared.InProgress
	WhiteWins  = shared.WhiteWins
	BlackWins  = shared.BlackWins
	Draw       = shared.Draw

	Bell   = shared.Bell
	WState = shared.WState
	GHZ    = shared.GHZ
	Custom = shared.Custom

	MoveClassical = shared.MoveClassical
	MoveSplit     = shared.MoveSplit
	MoveMerge     = shared.MoveMerge
	MoveEntangle  = shared.MoveEntangle
	MoveMeasure   = shared.MoveMeasure
)

// Re-exported for callers that only import this package.
var (
	CoordToSquare = shared.CoordToSquare
	ParseColor    = shared.ParseColor
	WinnerFor     = shared.WinnerFor
)

// Piece is a single piece owned by the Board at a definite square, or
// held by a Superposition while in flight across two squares.
type Piece struct {
	ID     uuid.UUID `json:"id"`
	Color  Color     `json:"color"`
	Type   PieceType `json:"type"`
	Square Square    `json:"square"`
}

// Superposition records a piece split across two squares. Probability is
// the chance of collapsing to Primary. Any square participates in at most
// one active superposition.
type Superposition struct {
	Piece       Piece   `json:"piece"`
	Primary     Square  `json:"primary"`
	Secondary   Square  `json:"secondary"`
	Probability float64 `json:"probability"`
}

// Covers reports whether the superposition occupies the given square.
func (s Superposition) Covers(sq Square) bool {
	return s.Primary == sq || s.Secondary == sq
}

// Matches reports whether the superposition's two squares equal the given
// pair in either order.
func (s Superposition) Matches(a, b Square) bool {
	return (s.Primary == a && s.Secondary == b) || (s.Primary == b && s.Secondary == a)
}

// Entanglement links two on-board pieces symmetrically. Correlation is
// meaningful only for the Custom kind.
type Entanglement struct {
	A           Square           `json:"a"`
	B           Square           `json:"b"`
	Kind        EntanglementKind `json:"kind"`
	Correlation float64          `json:"correlation,omitempty"`
}

// Covers reports whether the entanglement touches the given square.
func (e Entanglement) Covers(sq Square) bool {
	return e.A == sq || e.B == sq
}

// MoveRequest is submitted by an external layer. Kind selects which of
// the square fields are meaningful.
type MoveRequest struct {
	Kind MoveKind `json:"kind"`

	// Classical, and the source square of a Split.
	From Square `json:"from,omitempty"`
	To   Square `json:"to,omitempty"`

	// Split targets. Probability is the chance of the primary outcome;
	// when zero the engine derives it from the probability model.
	ToPrimary   Square  `json:"toPrimary,omitempty"`
	ToSecondary Square  `json:"toSecondary,omitempty"`
	Probability float64 `json:"probability,omitempty"`

	// Merge sources; To is the merge destination.
	FromPrimary   Square `json:"fromPrimary,omitempty"`
	FromSecondary Square `json:"fromSecondary,omitempty"`

	// Entangle links the pieces at From and Target.
	Target       Square           `json:"target,omitempty"`
	Entanglement EntanglementKind `json:"entanglement,omitempty"`
	Correlation  float64          `json:"correlation,omitempty"`

	// Measure collapses any superposition covering these squares.
	Positions []Square `json:"positions,omitempty"`
}

// Collapse records one measurement outcome.
type Collapse struct {
	Piece  Piece  `json:"piece"`
	Result Square `json:"result"`
}

// MoveOutcome is returned to the caller after a successful move.
type MoveOutcome struct {
	Kind        MoveKind   `json:"kind"`
	Probability float64    `json:"probability,omitempty"` // set for probabilistic moves
	Collapses   []Collapse `json:"collapses,omitempty"`   // set for measure moves
	Result      GameResult `json:"result"`
	InCheck     bool       `json:"inCheck"`
	Status      string     `json:"status"`
}

// PieceState is a serializable representation of a Piece.
type PieceState struct {
	ID        uuid.UUID `json:"id"`
	Color     Color     `json:"color"`
	ColorName string    `json:"colorName"`
	Type      PieceType `json:"type"`
	TypeName  string    `json:"typeName"`
	Square    Square    `json:"square"`
}

// BoardState is a serializable representation of the full game state,
// including the active quantum bookkeeping for display.
type BoardState struct {
	Pieces         []PieceState    `json:"pieces"`
	Turn           Color           `json:"turn"`
	TurnName       string          `json:"turnName"`
	Superpositions []Superposition `json:"superpositions"`
	Entanglements  []Entanglement  `json:"entanglements"`
	Result         GameResult      `json:"result"`
	InCheck        bool            `json:"inCheck"`
	GameOver       bool            `json:"gameOver"`
	Status         string          `json:"status"`
	LastNote       string          `json:"lastNote"`
	Stakes         map[string]uint64 `json:"stakes"`
}

// Snapshot is the persistence form of an engine: everything needed to
// reconstruct it, round-tripping losslessly through JSON.
type Snapshot struct {
	Pieces         []Piece         `json:"pieces"`
	Turn           Color           `json:"turn"`
	Superpositions []Superposition `json:"superpositions"`
	Entanglements  []Entanglement  `json:"entanglements"`
	Result         GameResult      `json:"result"`
	Stakes         [2]uint64       `json:"stakes"`
}

// Package shared holds the canonical value types used by every layer:
// colors, piece types, squares, game results, and entanglement kinds.
// There is exactly one representation of each; the board, the quantum
// store, and the persistence layer all exchange these values.
package shared

import (
	"fmt"
	"strings"
)

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Index() int { return int(c) }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	default:
		return 0, false
	}
}

type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

func (p PieceType) String() string {
	switch p {
	case Pawn:
		return "P"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return fmt.Sprintf("piece(%d)", p)
	}
}

func (p PieceType) Name() string {
	switch p {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	default:
		return "?"
	}
}

func ParsePieceType(s string) (PieceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "p", "pawn":
		return Pawn, true
	case "n", "knight":
		return Knight, true
	case "b", "bishop":
		return Bishop, true
	case "r", "rook":
		return Rook, true
	case "q", "queen":
		return Queen, true
	case "k", "king":
		return King, true
	default:
		return 0, false
	}
}

// Square indexes the 64 board squares, rank-major from a1.
type Square uint8

func (s Square) Rank() int { return int(s) >> 3 }
func (s Square) File() int { return int(s) & 7 }

func (s Square) String() string {
	file := byte('a' + s.File())
	rank := byte('1' + s.Rank())
	return string([]byte{file, rank})
}

// IsCenter reports whether the square is one of d4, d5, e4, e5.
func (s Square) IsCenter() bool {
	r, f := s.Rank(), s.File()
	return (r == 3 || r == 4) && (f == 3 || f == 4)
}

func CoordToSquare(coord string) (Square, bool) {
	if len(coord) != 2 {
		return 0, false
	}
	file := coord[0]
	rank := coord[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return 0, false
	}
	r := int(rank - '1')
	c := int(file - 'a')
	return Square(r*8 + c), true
}

func (s Square) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Square) UnmarshalText(text []byte) error {
	sq, ok := CoordToSquare(strings.ToLower(strings.TrimSpace(string(text))))
	if !ok {
		return fmt.Errorf("invalid square %q", string(text))
	}
	*s = sq
	return nil
}

// ---------------------------
// Game results
// ---------------------------

// GameResult is the terminal status of a game. Terminal values are
// absorbing: once set the engine rejects further moves.
type GameResult uint8

const (
	InProgress GameResult = iota
	WhiteWins
	BlackWins
	Draw
)

func (g GameResult) Terminal() bool { return g != InProgress }

func (g GameResult) String() string {
	switch g {
	case InProgress:
		return "in_progress"
	case WhiteWins:
		return "white_wins"
	case BlackWins:
		return "black_wins"
	case Draw:
		return "draw"
	default:
		return "?"
	}
}

func ParseGameResult(s string) (GameResult, error) {
	switch strings.TrimSpace(s) {
	case "", "in_progress":
		return InProgress, nil
	case "white_wins":
		return WhiteWins, nil
	case "black_wins":
		return BlackWins, nil
	case "draw":
		return Draw, nil
	default:
		return InProgress, fmt.Errorf("invalid game result %q", s)
	}
}

// WinnerFor maps a checkmated color to the opponent's win result.
func WinnerFor(mated Color) GameResult {
	if mated == White {
		return BlackWins
	}
	return WhiteWins
}

func (g GameResult) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *GameResult) UnmarshalText(text []byte) error {
	parsed, err := ParseGameResult(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// ---------------------------
// Entanglement kinds
// ---------------------------

// EntanglementKind selects how a partner's distribution folds into a
// measurement. Custom carries a correlation weight in [0,1].
type EntanglementKind uint8

const (
	Bell EntanglementKind = iota
	WState
	GHZ
	Custom
)

func (k EntanglementKind) String() string {
	switch k {
	case Bell:
		return "bell"
	case WState:
		return "w_state"
	case GHZ:
		return "ghz"
	case Custom:
		return "custom"
	default:
		return "?"
	}
}

func ParseEntanglementKind(s string) (EntanglementKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bell":
		return Bell, true
	case "w_state", "wstate", "w":
		return WState, true
	case "ghz":
		return GHZ, true
	case "custom":
		return Custom, true
	default:
		return 0, false
	}
}

func (k EntanglementKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EntanglementKind) UnmarshalText(text []byte) error {
	parsed, ok := ParseEntanglementKind(string(text))
	if !ok {
		return fmt.Errorf("invalid entanglement kind %q", string(text))
	}
	*k = parsed
	return nil
}

// ---------------------------
// Move kinds
// ---------------------------

type MoveKind uint8

const (
	MoveClassical MoveKind = iota
	MoveSplit
	MoveMerge
	MoveEntangle
	MoveMeasure
)

func (m MoveKind) String() string {
	switch m {
	case MoveClassical:
		return "classical"
	case MoveSplit:
		return "split"
	case MoveMerge:
		return "merge"
	case MoveEntangle:
		return "entangle"
	case MoveMeasure:
		return "measure"
	default:
		return "?"
	}
}

func ParseMoveKind(s string) (MoveKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classical", "move":
		return MoveClassical, true
	case "split":
		return MoveSplit, true
	case "merge":
		return MoveMerge, true
	case "entangle":
		return MoveEntangle, true
	case "measure":
		return MoveMeasure, true
	default:
		return 0, false
	}
}

func (m MoveKind) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *MoveKind) UnmarshalText(text []byte) error {
	parsed, ok := ParseMoveKind(string(text))
	if !ok {
		return fmt.Errorf("invalid move kind %q", string(text))
	}
	*m = parsed
	return nil
}

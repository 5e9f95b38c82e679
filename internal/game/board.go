package game

import (
	"github.com/google/uuid"

	"quantum_chess/internal/shared"
)

// Board owns classical piece placement on the 8x8 grid. Quantum
// bookkeeping (superpositions, entanglements) lives on the Engine; a
// square covered by a superposition holds no board piece.
type Board struct {
	pieceAt   [64]*Piece
	occupancy [2]Bitboard
	turn      Color
}

// NewBoard returns an empty board with White to move.
func NewBoard() Board {
	return Board{turn: White}
}

// NewStandardBoard sets up the ordinary chess starting position.
func NewStandardBoard() Board {
	b := NewBoard()
	setup := func(color Color, backRank, pawnRank int) {
		order := []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
		for file, pt := range order {
			b.Place(Piece{ID: uuid.New(), Color: color, Type: pt}, Square(backRank*8+file))
		}
		for file := 0; file < 8; file++ {
			b.Place(Piece{ID: uuid.New(), Color: color, Type: Pawn}, Square(pawnRank*8+file))
		}
	}
	setup(White, 0, 1)
	setup(Black, 7, 6)
	return b
}

// PieceAt returns the piece at the square, or nil when empty.
func (b *Board) PieceAt(sq Square) *Piece { return b.pieceAt[sq] }

// Occupied reports whether any piece sits on the square.
func (b *Board) Occupied(sq Square) bool { return b.pieceAt[sq] != nil }

// Turn returns the side to move.
func (b *Board) Turn() Color { return b.turn }

func (b *Board) flipTurn() { b.turn = b.turn.Opposite() }

// Place puts a piece on a square, displacing nothing. The caller is
// responsible for the square being empty.
func (b *Board) Place(pc Piece, sq Square) *Piece {
	pc.Square = sq
	p := &pc
	b.pieceAt[sq] = p
	b.occupancy[pc.Color.Index()] = b.occupancy[pc.Color.Index()].Add(sq)
	return p
}

// Remove takes the piece off the square and returns it, or nil.
func (b *Board) Remove(sq Square) *Piece {
	pc := b.pieceAt[sq]
	if pc == nil {
		return nil
	}
	b.pieceAt[sq] = nil
	b.occupancy[pc.Color.Index()] = b.occupancy[pc.Color.Index()].Remove(sq)
	return pc
}

// MovePiece relocates the piece at from to to, returning the captured
// occupant of to, if any.
func (b *Board) MovePiece(from, to Square) *Piece {
	captured := b.Remove(to)
	if pc := b.Remove(from); pc != nil {
		b.Place(*pc, to)
	}
	return captured
}

// Clone deep-copies the board so check simulation never touches the live
// position. Cheap: 64 pointers plus the occupied piece values.
func (b *Board) Clone() Board {
	clone := Board{turn: b.turn, occupancy: b.occupancy}
	for idx, pc := range b.pieceAt {
		if pc != nil {
			cp := *pc
			clone.pieceAt[idx] = &cp
		}
	}
	return clone
}

// Pieces returns every on-board piece in square order.
func (b *Board) Pieces() []Piece {
	out := make([]Piece, 0, 32)
	for _, pc := range b.pieceAt {
		if pc != nil {
			out = append(out, *pc)
		}
	}
	return out
}

// PiecesOf returns every on-board piece of the given color.
func (b *Board) PiecesOf(color Color) []*Piece {
	out := make([]*Piece, 0, 16)
	b.occupancy[color.Index()].Iter(func(sq Square) {
		out = append(out, b.pieceAt[sq])
	})
	return out
}

// findKing locates the on-board king of the given color.
func (b *Board) findKing(color Color) (Square, bool) {
	for idx, pc := range b.pieceAt {
		if pc != nil && pc.Color == color && pc.Type == King {
			return Square(idx), true
		}
	}
	return 0, false
}

// pathClear reports whether every square strictly between from and to is
// empty. Vacuously true for non-sliding geometry.
func (b *Board) pathClear(from, to Square) bool {
	for _, sq := range shared.Line(from, to) {
		if b.pieceAt[sq] != nil {
			return false
		}
	}
	return true
}

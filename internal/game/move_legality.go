package game

import "quantum_chess/internal/shared"

// isValidClassicalMove checks ordinary chess legality for a single piece:
// the destination must not hold a same-color piece, the per-type geometry
// must hold, and sliding pieces need a clear path. Check safety is the
// caller's concern.
func (b *Board) isValidClassicalMove(pc *Piece, from, to Square) bool {
	if from == to {
		return false
	}
	if dest := b.pieceAt[to]; dest != nil && dest.Color == pc.Color {
		return false
	}

	switch pc.Type {
	case Pawn:
		return b.isValidPawnMove(pc, from, to)
	case Knight:
		return knightGeometry(from, to)
	case Bishop:
		return bishopGeometry(from, to) && b.pathClear(from, to)
	case Rook:
		return rookGeometry(from, to) && b.pathClear(from, to)
	case Queen:
		return (rookGeometry(from, to) || bishopGeometry(from, to)) && b.pathClear(from, to)
	case King:
		return kingGeometry(from, to)
	default:
		return false
	}
}

func (b *Board) isValidPawnMove(pc *Piece, from, to Square) bool {
	dir := 1
	startRank := 1
	if pc.Color == Black {
		dir = -1
		startRank = 6
	}

	dr := to.Rank() - from.Rank()
	df := to.File() - from.File()

	// Single or double push onto empty squares.
	if df == 0 {
		if b.pieceAt[to] != nil {
			return false
		}
		if dr == dir {
			return true
		}
		if dr == 2*dir && from.Rank() == startRank {
			mid, ok := shared.SquareFromCoords(from.Rank()+dir, from.File())
			return ok && b.pieceAt[mid] == nil
		}
		return false
	}

	// Diagonal capture requires an enemy occupant.
	if (df == 1 || df == -1) && dr == dir {
		dest := b.pieceAt[to]
		return dest != nil && dest.Color != pc.Color
	}
	return false
}

// attacks reports whether the piece could capture onto the target square.
// It differs from isValidClassicalMove only for pawns, whose attack
// squares are the diagonals regardless of occupancy; check detection
// needs this when the target is the empty half of a superposed king.
func (b *Board) attacks(pc *Piece, from, to Square) bool {
	if pc.Type == Pawn {
		dir := 1
		if pc.Color == Black {
			dir = -1
		}
		dr := to.Rank() - from.Rank()
		df := to.File() - from.File()
		return dr == dir && (df == 1 || df == -1)
	}
	if dest := b.pieceAt[to]; dest != nil && dest.Color == pc.Color {
		return false
	}
	switch pc.Type {
	case Knight:
		return knightGeometry(from, to)
	case Bishop:
		return bishopGeometry(from, to) && b.pathClear(from, to)
	case Rook:
		return rookGeometry(from, to) && b.pathClear(from, to)
	case Queen:
		return (rookGeometry(from, to) || bishopGeometry(from, to)) && b.pathClear(from, to)
	case King:
		return kingGeometry(from, to)
	default:
		return false
	}
}

func knightGeometry(from, to Square) bool {
	dr := absDelta(from.Rank(), to.Rank())
	df := absDelta(from.File(), to.File())
	return (dr == 2 && df == 1) || (dr == 1 && df == 2)
}

func bishopGeometry(from, to Square) bool {
	dr := absDelta(from.Rank(), to.Rank())
	df := absDelta(from.File(), to.File())
	return dr == df && dr != 0
}

func rookGeometry(from, to Square) bool {
	return (from.Rank() == to.Rank()) != (from.File() == to.File())
}

func kingGeometry(from, to Square) bool {
	dr := absDelta(from.Rank(), to.Rank())
	df := absDelta(from.File(), to.File())
	return dr <= 1 && df <= 1 && (dr|df) != 0
}

func absDelta(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

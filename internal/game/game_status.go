package game

// kingSquaresOn collects every square the given color's king may occupy:
// its definite board square plus both halves of any king superposition.
func (e *Engine) kingSquaresOn(b *Board, color Color) []Square {
	squares := make([]Square, 0, 3)
	if sq, ok := b.findKing(color); ok {
		squares = append(squares, sq)
	}
	for _, sup := range e.superpositions {
		if sup.Piece.Type == King && sup.Piece.Color == color {
			squares = append(squares, sup.Primary, sup.Secondary)
		}
	}
	return squares
}

// isKingInCheckOn reports whether any enemy board piece attacks any of
// the color's possible king squares.
func (e *Engine) isKingInCheckOn(b *Board, color Color) bool {
	kings := e.kingSquaresOn(b, color)
	if len(kings) == 0 {
		return false
	}
	for _, attacker := range b.PiecesOf(color.Opposite()) {
		for _, sq := range kings {
			if b.attacks(attacker, attacker.Square, sq) {
				return true
			}
		}
	}
	return false
}

// wouldLeaveKingInCheck simulates the classical move on a cloned board
// and reports whether the mover's king would be attacked afterwards.
func (e *Engine) wouldLeaveKingInCheck(color Color, from, to Square) bool {
	sim := e.board.Clone()
	sim.MovePiece(from, to)
	return e.isKingInCheckOn(&sim, color)
}

// hasLegalClassicalMove reports whether the color has any classical move
// that does not leave its own king in check. Superposed pieces are in
// flight and contribute no classical moves.
func (e *Engine) hasLegalClassicalMove(color Color) bool {
	for _, pc := range e.board.PiecesOf(color) {
		for to := Square(0); to < 64; to++ {
			if e.squareSuperposed(to) {
				continue
			}
			if !e.board.isValidClassicalMove(pc, pc.Square, to) {
				continue
			}
			if !e.wouldLeaveKingInCheck(color, pc.Square, to) {
				return true
			}
		}
	}
	return false
}

// insufficientMaterial reports the dead positions this engine recognizes:
// king versus king, and king plus one minor piece versus king. Any active
// superposition is material in flight and never a dead position.
func (e *Engine) insufficientMaterial() bool {
	if len(e.superpositions) > 0 {
		return false
	}
	minors := 0
	for _, pc := range e.board.Pieces() {
		switch pc.Type {
		case King:
		case Knight, Bishop:
			minors++
		default:
			return false
		}
	}
	return minors <= 1
}

// updateGameStatus recomputes check and terminal state for the side to
// move. A terminal result is absorbing; Move rejects everything after it.
func (e *Engine) updateGameStatus() {
	if e.result.Terminal() {
		e.status = e.result.String()
		return
	}
	current := e.board.Turn()
	e.inCheck = e.isKingInCheckOn(&e.board, current)

	switch {
	case !e.hasLegalClassicalMove(current):
		if e.inCheck {
			e.result = WinnerFor(current)
			e.status = "checkmate"
		} else {
			e.result = Draw
			e.status = "stalemate"
		}
	case e.insufficientMaterial():
		e.result = Draw
		e.status = "insufficient material"
	case e.inCheck:
		e.status = "check"
	default:
		e.status = "ongoing"
	}
}

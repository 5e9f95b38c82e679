package game

import (
	"testing"

	"github.com/google/uuid"
)

func TestClassicalMoveLegality(t *testing.T) {
	// A small middlegame-ish position exercising every piece type.
	place := map[string]Piece{
		"e2": {Color: White, Type: Pawn},
		"d3": {Color: White, Type: Pawn},
		"b1": {Color: White, Type: Knight},
		"c1": {Color: White, Type: Bishop},
		"g5": {Color: White, Type: Knight},
		"a1": {Color: White, Type: Rook},
		"d1": {Color: White, Type: Queen},
		"e1": {Color: White, Type: King},
		"e4": {Color: Black, Type: Pawn},
		"f3": {Color: Black, Type: Knight},
		"a4": {Color: Black, Type: Rook},
	}
	board := NewBoard()
	for coord, pc := range place {
		pc.ID = uuid.New()
		board.Place(pc, mustSq(t, coord))
	}

	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{name: "pawn single push", from: "e2", to: "e3", want: true},
		{name: "pawn double push blocked", from: "e2", to: "e4", want: false},
		{name: "pawn diagonal capture", from: "d3", to: "e4", want: true},
		{name: "pawn diagonal without capture", from: "d3", to: "c4", want: false},
		{name: "pawn backward", from: "d3", to: "d2", want: false},
		{name: "black pawn push", from: "e4", to: "e3", want: true},
		{name: "black pawn capture", from: "e4", to: "d3", want: true},
		{name: "knight jump", from: "b1", to: "c3", want: true},
		{name: "knight bad geometry", from: "b1", to: "b3", want: false},
		{name: "bishop clear diagonal", from: "c1", to: "f4", want: true},
		{name: "bishop blocked diagonal", from: "c1", to: "h6", want: false}, // own knight sits on g5
		{name: "rook clear file", from: "a1", to: "a3", want: true},
		{name: "rook capture enemy rook", from: "a1", to: "a4", want: true},
		{name: "rook diagonal", from: "a1", to: "b2", want: false},
		{name: "queen slide blocked", from: "d1", to: "d4", want: false},         // own pawn on d3
		{name: "queen capture knight blocked", from: "d1", to: "f3", want: false}, // e2 pawn blocks
		{name: "king single step", from: "e1", to: "f2", want: true},
		{name: "king two steps", from: "e1", to: "e3", want: false},
		{name: "no move to same square", from: "e1", to: "e1", want: false},
		{name: "cannot land on own piece", from: "d1", to: "e2", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			from := mustSq(t, tt.from)
			pc := board.PieceAt(from)
			if pc == nil {
				t.Fatalf("no piece at %s", tt.from)
			}
			if got := board.isValidClassicalMove(pc, from, mustSq(t, tt.to)); got != tt.want {
				t.Fatalf("isValidClassicalMove(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestPawnAttacksIgnoreOccupancy(t *testing.T) {
	board := NewBoard()
	pawn := Piece{ID: uuid.New(), Color: White, Type: Pawn}
	placed := board.Place(pawn, mustSq(t, "e4"))

	if !board.attacks(placed, mustSq(t, "e4"), mustSq(t, "d5")) {
		t.Fatal("pawn must attack its empty capture diagonal")
	}
	if board.attacks(placed, mustSq(t, "e4"), mustSq(t, "e5")) {
		t.Fatal("pawn push square is not an attack")
	}
}

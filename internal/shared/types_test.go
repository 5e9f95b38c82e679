package shared

import "testing"

func TestCoordToSquare(t *testing.T) {
	tests := []struct {
		coord string
		want  Square
		ok    bool
	}{
		{coord: "a1", want: 0, ok: true},
		{coord: "h1", want: 7, ok: true},
		{coord: "a8", want: 56, ok: true},
		{coord: "h8", want: 63, ok: true},
		{coord: "e4", want: 28, ok: true},
		{coord: "i1", ok: false},
		{coord: "a9", ok: false},
		{coord: "", ok: false},
		{coord: "e44", ok: false},
	}

	for _, tt := range tests {
		sq, ok := CoordToSquare(tt.coord)
		if ok != tt.ok {
			t.Fatalf("CoordToSquare(%q) ok = %v, want %v", tt.coord, ok, tt.ok)
		}
		if ok && sq != tt.want {
			t.Fatalf("CoordToSquare(%q) = %d, want %d", tt.coord, sq, tt.want)
		}
		if ok && sq.String() != tt.coord {
			t.Fatalf("round trip %q -> %q", tt.coord, sq.String())
		}
	}
}

func TestSquareIsCenter(t *testing.T) {
	center := map[string]bool{"d4": true, "d5": true, "e4": true, "e5": true}
	for sq := Square(0); sq < 64; sq++ {
		if got := sq.IsCenter(); got != center[sq.String()] {
			t.Fatalf("IsCenter(%s) = %v", sq, got)
		}
	}
}

func TestParseMoveKind(t *testing.T) {
	for _, kind := range []MoveKind{MoveClassical, MoveSplit, MoveMerge, MoveEntangle, MoveMeasure} {
		parsed, ok := ParseMoveKind(kind.String())
		if !ok || parsed != kind {
			t.Fatalf("ParseMoveKind(%q) = %v, %v", kind.String(), parsed, ok)
		}
	}
	if _, ok := ParseMoveKind("teleport"); ok {
		t.Fatal("unknown kind must not parse")
	}
}

func TestParseEntanglementKind(t *testing.T) {
	for _, kind := range []EntanglementKind{Bell, WState, GHZ, Custom} {
		parsed, ok := ParseEntanglementKind(kind.String())
		if !ok || parsed != kind {
			t.Fatalf("ParseEntanglementKind(%q) = %v, %v", kind.String(), parsed, ok)
		}
	}
}

func TestWinnerFor(t *testing.T) {
	if WinnerFor(White) != BlackWins {
		t.Fatal("mating White means Black wins")
	}
	if WinnerFor(Black) != WhiteWins {
		t.Fatal("mating Black means White wins")
	}
}

func TestLine(t *testing.T) {
	sq := func(coord string) Square {
		s, ok := CoordToSquare(coord)
		if !ok {
			t.Fatalf("invalid coordinate %q", coord)
		}
		return s
	}

	tests := []struct {
		name string
		from string
		to   string
		want []string
	}{
		{name: "file", from: "a1", to: "a4", want: []string{"a2", "a3"}},
		{name: "rank", from: "b5", to: "e5", want: []string{"c5", "d5"}},
		{name: "diagonal", from: "c1", to: "g5", want: []string{"d2", "e3", "f4"}},
		{name: "reverse diagonal", from: "g5", to: "c1", want: []string{"f4", "e3", "d2"}},
		{name: "adjacent", from: "a1", to: "a2", want: nil},
		{name: "knight shape is unaligned", from: "b1", to: "c3", want: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := Line(sq(tt.from), sq(tt.to))
			if len(got) != len(tt.want) {
				t.Fatalf("Line(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
			for i, coord := range tt.want {
				if got[i] != sq(coord) {
					t.Fatalf("Line(%s, %s)[%d] = %s, want %s", tt.from, tt.to, i, got[i], coord)
				}
			}
		})
	}
}

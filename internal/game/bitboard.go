package game

import "math/bits"

// Bitboard represents a 64-bit set of squares.
type Bitboard uint64

func (b Bitboard) Empty() bool { return b == 0 }

func (b Bitboard) Has(s Square) bool { return b&(1<<s) != 0 }

func (b Bitboard) Add(s Square) Bitboard { return b | (1 << s) }

func (b Bitboard) Remove(s Square) Bitboard { return b &^ (1 << s) }

func (b Bitboard) Count() int { return bits.OnesCount64(uint64(b)) }

func (b Bitboard) Iter(fn func(Square)) {
	for bb := b; bb != 0; bb &= bb - 1 {
		fn(Square(bits.TrailingZeros64(uint64(bb))))
	}
}

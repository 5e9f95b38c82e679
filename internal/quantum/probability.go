// Package quantum implements the probability model and the amplitude-based
// quantum state store for superposed chess pieces.
package quantum

import (
	"quantum_chess/internal/shared"
)

// Zone is a coarse probability bucket used to seed move-success
// probability before fine adjustments.
type Zone uint8

const (
	VeryLow Zone = iota
	Low
	Medium
	High
	VeryHigh
)

func (z Zone) String() string {
	switch z {
	case VeryLow:
		return "very_low"
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case VeryHigh:
		return "very_high"
	default:
		return "?"
	}
}

// Base returns the zone's base probability value.
func (z Zone) Base() float64 {
	switch z {
	case VeryLow:
		return 0.1
	case Low:
		return 0.3
	case Medium:
		return 0.5
	case High:
		return 0.7
	case VeryHigh:
		return 0.9
	default:
		return 0.5
	}
}

func (z Zone) lower() Zone {
	if z == VeryLow {
		return VeryLow
	}
	return z - 1
}

func (z Zone) raise() Zone {
	if z == VeryHigh {
		return VeryHigh
	}
	return z + 1
}

const (
	maxStakeBonus  = 0.3  // ceiling on the stake contribution
	minProbability = 0.05 // floor regardless of factors
	maxProbability = 0.95 // ceiling regardless of factors
	stakeThreshold = 50   // stakes above this raise the zone one step
	centerBonus    = 0.05 // landing on d4/d5/e4/e5
)

// ZoneFor buckets a move by piece type, then shifts once for a capture
// (toward VeryLow) or once for a large stake (toward VeryHigh). The two
// shifts apply to the piece's base zone independently and never compound.
func ZoneFor(piece shared.PieceType, isCapture bool, stake uint64) Zone {
	var base Zone
	switch piece {
	case shared.Pawn:
		base = High
	case shared.Knight, shared.Bishop, shared.Rook:
		base = Medium
	case shared.Queen:
		// More valuable pieces get lower odds for balance.
		base = Low
	case shared.King:
		base = VeryLow
	default:
		base = Medium
	}

	if isCapture {
		return base.lower()
	}
	if stake > stakeThreshold {
		return base.raise()
	}
	return base
}

// Probability combines the zone base with the stake and landing-square
// modifiers and clamps the result to [0.05, 0.95]. Deterministic for
// identical inputs; replays must reproduce it exactly.
func Probability(stake uint64, landing shared.Square, zone Zone) float64 {
	p := zone.Base() + stakeModifier(stake) + positionModifier(landing)
	if p < minProbability {
		return minProbability
	}
	if p > maxProbability {
		return maxProbability
	}
	return p
}

// MoveProbability is the full pipeline: zone selection followed by the
// fine probability, with the entanglement haircut applied last.
func MoveProbability(piece shared.PieceType, landing shared.Square, isCapture bool, stake uint64, isEntangled bool) float64 {
	p := Probability(stake, landing, ZoneFor(piece, isCapture, stake))
	if isEntangled {
		p *= 0.8
	}
	if p < minProbability {
		return minProbability
	}
	return p
}

func stakeModifier(stake uint64) float64 {
	if stake > 100 {
		stake = 100
	}
	return float64(stake) / 100 * maxStakeBonus
}

func positionModifier(landing shared.Square) float64 {
	if landing.IsCenter() {
		return centerBonus
	}
	return 0
}

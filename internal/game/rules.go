package game

// SuperpositionRule caps and constrains split moves.
type SuperpositionRule struct {
	// MaxPerPlayer is the largest number of simultaneously active
	// superpositions one side may hold.
	MaxPerPlayer int
	// MinProbability is the lowest accepted primary-outcome probability.
	MinProbability float64
	// AllowKingSuperposition permits splitting a king.
	AllowKingSuperposition bool
	// AllowWhileInCheck permits splitting while the mover is in check.
	AllowWhileInCheck bool
}

// EntanglementRule caps and constrains entangle moves.
type EntanglementRule struct {
	// MaxPairsPerPlayer is the largest number of active entangled pairs
	// one side may hold.
	MaxPairsPerPlayer int
	// AllowedPieceTypes lists the piece types that may be entangled.
	AllowedPieceTypes []PieceType
	// AllowCrossType permits entangling pieces of different types.
	AllowCrossType bool
	// AllowOpponent permits entangling pieces of different colors.
	AllowOpponent bool
}

// Policy is the quantum rules configuration for one game.
type Policy struct {
	Superposition SuperpositionRule
	Entanglement  EntanglementRule
}

// DefaultPolicy mirrors the standard tournament configuration: up to four
// superpositions and three entangled pairs per player, no king splits, no
// splitting out of check, knights/bishops/queens entangleable across types
// but not across colors.
func DefaultPolicy() Policy {
	return Policy{
		Superposition: SuperpositionRule{
			MaxPerPlayer:           4,
			MinProbability:         0.2,
			AllowKingSuperposition: false,
			AllowWhileInCheck:      false,
		},
		Entanglement: EntanglementRule{
			MaxPairsPerPlayer: 3,
			AllowedPieceTypes: []PieceType{Knight, Bishop, Queen},
			AllowCrossType:    true,
			AllowOpponent:     false,
		},
	}
}

func (r EntanglementRule) typeAllowed(pt PieceType) bool {
	for _, allowed := range r.AllowedPieceTypes {
		if allowed == pt {
			return true
		}
	}
	return false
}

package quantum

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/sampleuv"

	"quantum_chess/internal/shared"
)

// Construction and mutation failures. The rules engine maps these onto
// its own error kinds at the call boundary.
var (
	ErrEmptyBasis       = errors.New("superposition requires at least one position")
	ErrLengthMismatch   = errors.New("positions and probabilities must have the same length")
	ErrProbabilitySum   = errors.New("probabilities must sum to 1.0")
	ErrPositionNotFound = errors.New("position not found in quantum state")
	ErrDegenerateState  = errors.New("all amplitudes are zero")
)

const probabilitySumTolerance = 1e-6

// Link records one side of a symmetric entanglement. Correlation is only
// meaningful for the Custom kind.
type Link struct {
	Kind        shared.EntanglementKind
	Correlation float64
}

// State is a normalized complex amplitude vector over an ordered set of
// candidate squares. Every mutating operation restores Σ|a|² = 1; a
// measurement collapses the vector to a single basis state for good.
type State struct {
	amplitudes []complex128
	basis      []shared.Square
	links      map[uuid.UUID]Link
}

// New returns a definite state: one basis square with amplitude 1.
func New(sq shared.Square) *State {
	return &State{
		amplitudes: []complex128{complex(1, 0)},
		basis:      []shared.Square{sq},
		links:      make(map[uuid.UUID]Link),
	}
}

// NewSuperposition builds a state whose amplitude at each square is the
// square root of the given probability (real, phase zero).
func NewSuperposition(squares []shared.Square, probabilities []float64) (*State, error) {
	if len(squares) == 0 {
		return nil, ErrEmptyBasis
	}
	if len(squares) != len(probabilities) {
		return nil, ErrLengthMismatch
	}
	if math.Abs(floats.Sum(probabilities)-1) > probabilitySumTolerance {
		return nil, fmt.Errorf("%w: got %.9f", ErrProbabilitySum, floats.Sum(probabilities))
	}

	amps := make([]complex128, len(squares))
	for i, p := range probabilities {
		amps[i] = complex(math.Sqrt(p), 0)
	}
	return &State{
		amplitudes: amps,
		basis:      append([]shared.Square(nil), squares...),
		links:      make(map[uuid.UUID]Link),
	}, nil
}

// Basis returns the candidate squares in basis order.
func (s *State) Basis() []shared.Square {
	return append([]shared.Square(nil), s.basis...)
}

// Collapsed reports whether the state has a single definite square.
func (s *State) Collapsed() bool { return len(s.basis) == 1 }

// Probabilities returns |amplitude|² per basis square.
func (s *State) Probabilities() []float64 {
	probs := make([]float64, len(s.amplitudes))
	for i, a := range s.amplitudes {
		probs[i] = probOf(a)
	}
	return probs
}

// Entangle links this state to another piece. The caller is responsible
// for installing the mirror link on the partner.
func (s *State) Entangle(other uuid.UUID, link Link) {
	s.links[other] = link
}

// Disentangle removes the link to the given piece. Idempotent.
func (s *State) Disentangle(other uuid.UUID) bool {
	if _, ok := s.links[other]; !ok {
		return false
	}
	delete(s.links, other)
	return true
}

// EntangledWith reports whether a link to the given piece exists.
func (s *State) EntangledWith(other uuid.UUID) bool {
	_, ok := s.links[other]
	return ok
}

// LinkTo returns the entanglement link to the given piece, if any.
func (s *State) LinkTo(other uuid.UUID) (Link, bool) {
	link, ok := s.links[other]
	return link, ok
}

// Partners returns the ids of every entangled piece.
func (s *State) Partners() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.links))
	for id := range s.links {
		out = append(out, id)
	}
	return out
}

// Measure samples a basis square weighted by |amplitude|² and collapses
// the state to it. A second call returns the same square: the vector is
// already length one.
func (s *State) Measure(src rand.Source) (shared.Square, error) {
	return s.sampleAndCollapse(s.Probabilities(), src)
}

// MeasureWithEntanglement adjusts the sampling distribution for every
// entangled partner found in the registry before sampling. With no links
// it is identical to Measure. The caller still owns entanglement teardown
// and partner updates; see Registry.Collapse.
func (s *State) MeasureWithEntanglement(reg *Registry, src rand.Source) (shared.Square, error) {
	if len(s.links) == 0 {
		return s.Measure(src)
	}

	probs := s.Probabilities()
	for id, link := range s.links {
		partner, ok := reg.Get(id)
		if !ok {
			continue
		}
		foldPartnerDistribution(probs, partner.Probabilities(), link, src)
	}

	if sum := floats.Sum(probs); sum > 0 {
		floats.Scale(1/sum, probs)
	}
	return s.sampleAndCollapse(probs, src)
}

// AddPosition merges the amplitude into an existing basis square or
// appends a new one, then renormalizes.
func (s *State) AddPosition(sq shared.Square, amplitude complex128) {
	if idx := s.indexOf(sq); idx >= 0 {
		s.amplitudes[idx] += amplitude
	} else {
		s.basis = append(s.basis, sq)
		s.amplitudes = append(s.amplitudes, amplitude)
	}
	s.normalize()
}

// ApplyInterference rotates and mixes the amplitudes of two basis squares
// by the given phase, then renormalizes.
func (s *State) ApplyInterference(sq1, sq2 shared.Square, phase float64) error {
	i := s.indexOf(sq1)
	j := s.indexOf(sq2)
	if i < 0 || j < 0 {
		return fmt.Errorf("%w: %s/%s", ErrPositionNotFound, sq1, sq2)
	}

	a1 := s.amplitudes[i]
	a2 := s.amplitudes[j]
	factor := cmplx.Exp(complex(0, phase))
	s.amplitudes[i] = a1 + factor*a2
	s.amplitudes[j] = a2 + cmplx.Conj(factor)*a1
	s.normalize()
	return nil
}

// forceCollapse pins the state to the basis square at idx with amplitude 1.
func (s *State) forceCollapse(idx int) shared.Square {
	sq := s.basis[idx]
	s.basis = []shared.Square{sq}
	s.amplitudes = []complex128{complex(1, 0)}
	return sq
}

func (s *State) sampleAndCollapse(weights []float64, src rand.Source) (shared.Square, error) {
	if len(weights) == 1 {
		return s.forceCollapse(0), nil
	}
	// sampleuv wants a rand/v2 Source; *rand.Rand provides Uint64.
	sampler := sampleuv.NewWeighted(weights, rand.New(src))
	idx, ok := sampler.Take()
	if !ok {
		// Unreachable while the normalization invariant holds.
		return 0, ErrDegenerateState
	}
	return s.forceCollapse(idx), nil
}

func (s *State) indexOf(sq shared.Square) int {
	for i, b := range s.basis {
		if b == sq {
			return i
		}
	}
	return -1
}

// normalize rescales so Σ|a|² = 1. An all-zero vector is left untouched
// rather than dividing by zero; sampling surfaces that as an error.
func (s *State) normalize() {
	var normSq float64
	for _, a := range s.amplitudes {
		normSq += probOf(a)
	}
	if normSq == 0 {
		return
	}
	norm := complex(math.Sqrt(normSq), 0)
	for i := range s.amplitudes {
		s.amplitudes[i] /= norm
	}
}

// foldPartnerDistribution applies one partner's distribution to the
// sampling weights, by entanglement kind:
//
//   - Bell: pointwise average with the partner's distribution.
//   - WState: matching-index weights scaled by 1.2.
//   - GHZ: one binary draw; heads doubles the index-0 weight, tails
//     scales every other weight by 1.5. All-or-none by convention.
//   - Custom(c): linear blend p*(1-c) + p_partner*c.
func foldPartnerDistribution(probs, partner []float64, link Link, src rand.Source) {
	switch link.Kind {
	case shared.Bell:
		for i := range probs {
			if i < len(partner) {
				probs[i] = (probs[i] + partner[i]) / 2
			}
		}
	case shared.WState:
		for i := range probs {
			if i < len(partner) {
				probs[i] *= 1.2
			}
		}
	case shared.GHZ:
		if rand.New(src).Intn(2) == 0 {
			if len(probs) > 0 {
				probs[0] *= 2
			}
		} else {
			for i := 1; i < len(probs); i++ {
				probs[i] *= 1.5
			}
		}
	case shared.Custom:
		c := link.Correlation
		for i := range probs {
			if i < len(partner) {
				probs[i] = probs[i]*(1-c) + partner[i]*c
			}
		}
	}
}

func probOf(a complex128) float64 {
	return real(a)*real(a) + imag(a)*imag(a)
}

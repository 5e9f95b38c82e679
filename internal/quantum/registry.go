package quantum

import (
	"math/rand"

	"github.com/google/uuid"

	"quantum_chess/internal/shared"
)

// Registry owns the quantum states of one game's pieces, keyed by piece
// id. It is not safe for concurrent use; the game slot serializes access.
type Registry struct {
	states map[uuid.UUID]*State
}

func NewRegistry() *Registry {
	return &Registry{states: make(map[uuid.UUID]*State)}
}

func (r *Registry) Get(id uuid.UUID) (*State, bool) {
	s, ok := r.states[id]
	return s, ok
}

func (r *Registry) Put(id uuid.UUID, s *State) {
	r.states[id] = s
}

func (r *Registry) Remove(id uuid.UUID) {
	delete(r.states, id)
}

func (r *Registry) Len() int { return len(r.states) }

// Entangle installs a symmetric link between two registered pieces.
func (r *Registry) Entangle(a, b uuid.UUID, link Link) error {
	sa, ok := r.states[a]
	if !ok {
		return ErrPositionNotFound
	}
	sb, ok := r.states[b]
	if !ok {
		return ErrPositionNotFound
	}
	sa.Entangle(b, link)
	sb.Entangle(a, link)
	return nil
}

// Collapse measures the piece's state, propagating entanglement into the
// sampling distribution, then updates every partner and removes the
// entanglement on both sides. Bell partners are hard-collapsed to their
// first basis square; other kinds renormalize without forcing.
func (r *Registry) Collapse(id uuid.UUID, src rand.Source) (shared.Square, error) {
	state, ok := r.states[id]
	if !ok {
		return 0, ErrPositionNotFound
	}

	partners := state.Partners()
	if len(partners) == 0 {
		return state.Measure(src)
	}

	measured, err := state.MeasureWithEntanglement(r, src)
	if err != nil {
		return 0, err
	}

	for _, other := range partners {
		partner, ok := r.states[other]
		if !ok {
			state.Disentangle(other)
			continue
		}
		if link, ok := state.LinkTo(other); ok {
			updateEntangledState(partner, link)
		}
		partner.Disentangle(id)
		state.Disentangle(other)
	}
	return measured, nil
}

// updateEntangledState applies the post-measurement correlation to a
// partner that was entangled with a just-measured piece.
func updateEntangledState(partner *State, link Link) {
	switch link.Kind {
	case shared.Bell:
		if len(partner.basis) > 1 {
			partner.forceCollapse(0)
		}
	default:
		// WState, GHZ, and Custom soften to a renormalized state.
		partner.normalize()
	}
}

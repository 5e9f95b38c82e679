package quantum

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"quantum_chess/internal/shared"
)

func TestNewSuperpositionValidation(t *testing.T) {
	a3 := mustSquare(t, "a3")
	c3 := mustSquare(t, "c3")

	tests := []struct {
		name    string
		squares []shared.Square
		probs   []float64
		wantErr error
	}{
		{name: "empty basis", squares: nil, probs: nil, wantErr: ErrEmptyBasis},
		{name: "length mismatch", squares: []shared.Square{a3, c3}, probs: []float64{1}, wantErr: ErrLengthMismatch},
		{name: "bad sum", squares: []shared.Square{a3, c3}, probs: []float64{0.6, 0.6}, wantErr: ErrProbabilitySum},
		{name: "valid pair", squares: []shared.Square{a3, c3}, probs: []float64{0.7, 0.3}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			state, err := NewSuperposition(tt.squares, tt.probs)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertNormalized(t, state)
			probs := state.Probabilities()
			if math.Abs(probs[0]-0.7) > 1e-9 || math.Abs(probs[1]-0.3) > 1e-9 {
				t.Fatalf("probabilities = %v, want [0.7 0.3]", probs)
			}
		})
	}
}

func TestMeasureCollapsesToBasisSquare(t *testing.T) {
	a3 := mustSquare(t, "a3")
	c3 := mustSquare(t, "c3")
	state, err := NewSuperposition([]shared.Square{a3, c3}, []float64{0.7, 0.3})
	if err != nil {
		t.Fatalf("new superposition: %v", err)
	}

	src := rand.NewSource(42)
	got, err := state.Measure(src)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if got != a3 && got != c3 {
		t.Fatalf("measured %s, not in basis {%s, %s}", got, a3, c3)
	}
	if !state.Collapsed() {
		t.Fatal("state not collapsed after measurement")
	}

	// Measuring again is idempotent.
	again, err := state.Measure(src)
	if err != nil {
		t.Fatalf("second measure: %v", err)
	}
	if again != got {
		t.Fatalf("second measurement %s differs from first %s", again, got)
	}
}

func TestMeasureDeterministicUnderSeed(t *testing.T) {
	a3 := mustSquare(t, "a3")
	c3 := mustSquare(t, "c3")

	run := func(seed int64) shared.Square {
		state, err := NewSuperposition([]shared.Square{a3, c3}, []float64{0.5, 0.5})
		if err != nil {
			t.Fatalf("new superposition: %v", err)
		}
		sq, err := state.Measure(rand.NewSource(seed))
		if err != nil {
			t.Fatalf("measure: %v", err)
		}
		return sq
	}

	for seed := int64(1); seed <= 5; seed++ {
		if run(seed) != run(seed) {
			t.Fatalf("seed %d produced different outcomes", seed)
		}
	}
}

func TestMeasureBiasedTowardHighProbability(t *testing.T) {
	a3 := mustSquare(t, "a3")
	c3 := mustSquare(t, "c3")

	src := rand.NewSource(7)
	hits := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		state, err := NewSuperposition([]shared.Square{a3, c3}, []float64{0.9, 0.1})
		if err != nil {
			t.Fatalf("new superposition: %v", err)
		}
		sq, err := state.Measure(src)
		if err != nil {
			t.Fatalf("measure: %v", err)
		}
		if sq == a3 {
			hits++
		}
	}
	// 0.9 ± generous slack; a uniform sampler would sit near 0.5.
	ratio := float64(hits) / trials
	if ratio < 0.85 || ratio > 0.95 {
		t.Fatalf("primary outcome ratio = %.3f, want near 0.9", ratio)
	}
}

func TestAddPositionMergesAndNormalizes(t *testing.T) {
	a3 := mustSquare(t, "a3")
	c3 := mustSquare(t, "c3")
	e3 := mustSquare(t, "e3")

	state, err := NewSuperposition([]shared.Square{a3, c3}, []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("new superposition: %v", err)
	}

	state.AddPosition(e3, complex(0.5, 0))
	if len(state.Basis()) != 3 {
		t.Fatalf("basis size = %d, want 3", len(state.Basis()))
	}
	assertNormalized(t, state)

	// Adding to an existing square merges instead of growing the basis.
	state.AddPosition(a3, complex(0.2, 0))
	if len(state.Basis()) != 3 {
		t.Fatalf("basis size after merge = %d, want 3", len(state.Basis()))
	}
	assertNormalized(t, state)
}

func TestApplyInterference(t *testing.T) {
	a3 := mustSquare(t, "a3")
	c3 := mustSquare(t, "c3")
	e3 := mustSquare(t, "e3")

	state, err := NewSuperposition([]shared.Square{a3, c3}, []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("new superposition: %v", err)
	}

	if err := state.ApplyInterference(a3, c3, math.Pi/3); err != nil {
		t.Fatalf("interference: %v", err)
	}
	assertNormalized(t, state)

	if err := state.ApplyInterference(a3, e3, 0); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("error = %v, want ErrPositionNotFound", err)
	}
}

func TestEntangleDisentangle(t *testing.T) {
	a3 := mustSquare(t, "a3")
	state := New(a3)
	other := uuid.New()

	state.Entangle(other, Link{Kind: shared.Bell})
	if !state.EntangledWith(other) {
		t.Fatal("link missing after Entangle")
	}
	if !state.Disentangle(other) {
		t.Fatal("Disentangle reported no link")
	}
	if state.Disentangle(other) {
		t.Fatal("second Disentangle should be a no-op")
	}
}

func TestRegistryCollapseBellTearsDownBothSides(t *testing.T) {
	a4 := mustSquare(t, "a4")
	c4 := mustSquare(t, "c4")
	f4 := mustSquare(t, "f4")
	h4 := mustSquare(t, "h4")

	reg := NewRegistry()
	idA, idB := uuid.New(), uuid.New()

	stateA, err := NewSuperposition([]shared.Square{a4, c4}, []float64{0.6, 0.4})
	if err != nil {
		t.Fatalf("state A: %v", err)
	}
	stateB, err := NewSuperposition([]shared.Square{f4, h4}, []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("state B: %v", err)
	}
	reg.Put(idA, stateA)
	reg.Put(idB, stateB)
	if err := reg.Entangle(idA, idB, Link{Kind: shared.Bell}); err != nil {
		t.Fatalf("entangle: %v", err)
	}

	measured, err := reg.Collapse(idA, rand.NewSource(11))
	if err != nil {
		t.Fatalf("collapse: %v", err)
	}
	if measured != a4 && measured != c4 {
		t.Fatalf("measured %s outside basis", measured)
	}

	// Bell partners hard-collapse to their first basis square.
	if !stateB.Collapsed() {
		t.Fatal("Bell partner not collapsed")
	}
	if got := stateB.Basis()[0]; got != f4 {
		t.Fatalf("partner collapsed to %s, want %s", got, f4)
	}

	// The link is gone on both sides.
	if stateA.EntangledWith(idB) || stateB.EntangledWith(idA) {
		t.Fatal("entanglement survived measurement")
	}
}

func TestRegistryCollapseWStateSoftensPartner(t *testing.T) {
	a4 := mustSquare(t, "a4")
	c4 := mustSquare(t, "c4")
	f4 := mustSquare(t, "f4")
	h4 := mustSquare(t, "h4")

	reg := NewRegistry()
	idA, idB := uuid.New(), uuid.New()

	stateA, err := NewSuperposition([]shared.Square{a4, c4}, []float64{0.5, 0.5})
	if err != nil {
		t.Fatalf("state A: %v", err)
	}
	stateB, err := NewSuperposition([]shared.Square{f4, h4}, []float64{0.3, 0.7})
	if err != nil {
		t.Fatalf("state B: %v", err)
	}
	reg.Put(idA, stateA)
	reg.Put(idB, stateB)
	if err := reg.Entangle(idA, idB, Link{Kind: shared.WState}); err != nil {
		t.Fatalf("entangle: %v", err)
	}

	if _, err := reg.Collapse(idA, rand.NewSource(3)); err != nil {
		t.Fatalf("collapse: %v", err)
	}

	// Non-Bell partners keep their superposition, renormalized.
	if stateB.Collapsed() {
		t.Fatal("WState partner should remain superposed")
	}
	assertNormalized(t, stateB)
	if stateA.EntangledWith(idB) || stateB.EntangledWith(idA) {
		t.Fatal("entanglement survived measurement")
	}
}

// fixedSource drives rand deterministically: Int63 always returns the
// same value, so Intn(2) yields a known heads/tails outcome.
type fixedSource int64

func (s fixedSource) Int63() int64 { return int64(s) }
func (fixedSource) Seed(int64)     {}

func TestFoldPartnerDistribution(t *testing.T) {
	tests := []struct {
		name    string
		link    Link
		src     rand.Source
		probs   []float64
		partner []float64
		want    []float64
	}{
		{
			name:    "GHZ heads doubles the first weight",
			link:    Link{Kind: shared.GHZ},
			src:     fixedSource(0),
			probs:   []float64{0.5, 0.5},
			partner: []float64{0.5, 0.5},
			want:    []float64{1.0, 0.5},
		},
		{
			name:    "GHZ tails scales the remaining weights",
			link:    Link{Kind: shared.GHZ},
			src:     fixedSource(1 << 32),
			probs:   []float64{0.5, 0.5},
			partner: []float64{0.5, 0.5},
			want:    []float64{0.5, 0.75},
		},
		{
			name:    "custom blends by correlation",
			link:    Link{Kind: shared.Custom, Correlation: 0.25},
			probs:   []float64{0.5, 0.5},
			partner: []float64{0.9, 0.1},
			want:    []float64{0.6, 0.4},
		},
		{
			name:    "custom with zero correlation is identity",
			link:    Link{Kind: shared.Custom},
			probs:   []float64{0.7, 0.3},
			partner: []float64{0.1, 0.9},
			want:    []float64{0.7, 0.3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := tt.src
			if src == nil {
				src = rand.NewSource(1)
			}
			foldPartnerDistribution(tt.probs, tt.partner, tt.link, src)
			for i, want := range tt.want {
				if math.Abs(tt.probs[i]-want) > 1e-9 {
					t.Fatalf("weight[%d] = %.9f, want %.9f", i, tt.probs[i], want)
				}
			}
		})
	}
}

func TestRegistryCollapseGHZAndCustomSoftenPartner(t *testing.T) {
	a4 := mustSquare(t, "a4")
	c4 := mustSquare(t, "c4")
	f4 := mustSquare(t, "f4")
	h4 := mustSquare(t, "h4")

	tests := []struct {
		name string
		link Link
	}{
		{name: "GHZ", link: Link{Kind: shared.GHZ}},
		{name: "custom half correlation", link: Link{Kind: shared.Custom, Correlation: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			idA, idB := uuid.New(), uuid.New()

			stateA, err := NewSuperposition([]shared.Square{a4, c4}, []float64{0.5, 0.5})
			if err != nil {
				t.Fatalf("state A: %v", err)
			}
			stateB, err := NewSuperposition([]shared.Square{f4, h4}, []float64{0.2, 0.8})
			if err != nil {
				t.Fatalf("state B: %v", err)
			}
			reg.Put(idA, stateA)
			reg.Put(idB, stateB)
			if err := reg.Entangle(idA, idB, tt.link); err != nil {
				t.Fatalf("entangle: %v", err)
			}

			measured, err := reg.Collapse(idA, rand.NewSource(7))
			if err != nil {
				t.Fatalf("collapse: %v", err)
			}
			if measured != a4 && measured != c4 {
				t.Fatalf("measured %s outside basis", measured)
			}

			// Only Bell forces the partner down; these kinds soften.
			if stateB.Collapsed() {
				t.Fatal("partner should remain superposed")
			}
			assertNormalized(t, stateB)
			if stateA.EntangledWith(idB) || stateB.EntangledWith(idA) {
				t.Fatal("entanglement survived measurement")
			}
		})
	}
}

func TestRegistryCollapseMissingPiece(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Collapse(uuid.New(), rand.NewSource(1)); !errors.Is(err, ErrPositionNotFound) {
		t.Fatalf("error = %v, want ErrPositionNotFound", err)
	}
}

func assertNormalized(t *testing.T, state *State) {
	t.Helper()
	var sum float64
	for _, p := range state.Probabilities() {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("Σ|a|² = %.12f, want 1", sum)
	}
}

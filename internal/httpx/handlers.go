package httpx

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"quantum_chess/internal/game"
	"quantum_chess/internal/shared"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- games ----

type createGameBody struct {
	Player string `json:"player"`
	Stake  uint64 `json:"stake"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var body createGameBody
	if err := decodeJSON(w, r, &body); err != nil {
		return
	}
	view, err := s.arena.Create(r.Context(), strings.TrimSpace(body.Player), body.Stake)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	views, err := s.arena.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": views})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	view, err := s.arena.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type joinGameBody struct {
	Player string `json:"player"`
	Stake  uint64 `json:"stake"`
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	var body joinGameBody
	if err := decodeJSON(w, r, &body); err != nil {
		return
	}
	view, err := s.arena.Join(r.Context(), id, strings.TrimSpace(body.Player), body.Stake)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ---- moves ----

type moveBody struct {
	Player string `json:"player"`
	Kind   string `json:"kind"`

	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	ToPrimary   string  `json:"toPrimary,omitempty"`
	ToSecondary string  `json:"toSecondary,omitempty"`
	Probability float64 `json:"probability,omitempty"`

	FromPrimary   string `json:"fromPrimary,omitempty"`
	FromSecondary string `json:"fromSecondary,omitempty"`

	Target       string  `json:"target,omitempty"`
	Entanglement string  `json:"entanglement,omitempty"`
	Correlation  float64 `json:"correlation,omitempty"`

	Positions []string `json:"positions,omitempty"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	var body moveBody
	if err := decodeJSON(w, r, &body); err != nil {
		return
	}
	req, err := buildMoveRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	outcome, err := s.arena.Move(r.Context(), id, strings.TrimSpace(body.Player), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	view, err := s.arena.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcome": outcome, "game": view})
}

// buildMoveRequest parses the wire form into the engine's request,
// validating only the fields the move kind actually uses.
func buildMoveRequest(body moveBody) (game.MoveRequest, error) {
	var req game.MoveRequest

	kind, ok := shared.ParseMoveKind(strings.TrimSpace(body.Kind))
	if !ok {
		return req, fmt.Errorf("invalid move kind %q", body.Kind)
	}
	req.Kind = kind

	switch kind {
	case shared.MoveClassical:
		return req, parseSquares(map[string]*parseTarget{
			"from": {body.From, &req.From},
			"to":   {body.To, &req.To},
		})
	case shared.MoveSplit:
		req.Probability = body.Probability
		return req, parseSquares(map[string]*parseTarget{
			"from":        {body.From, &req.From},
			"toPrimary":   {body.ToPrimary, &req.ToPrimary},
			"toSecondary": {body.ToSecondary, &req.ToSecondary},
		})
	case shared.MoveMerge:
		return req, parseSquares(map[string]*parseTarget{
			"fromPrimary":   {body.FromPrimary, &req.FromPrimary},
			"fromSecondary": {body.FromSecondary, &req.FromSecondary},
			"to":            {body.To, &req.To},
		})
	case shared.MoveEntangle:
		ent, ok := shared.ParseEntanglementKind(strings.TrimSpace(body.Entanglement))
		if !ok {
			return req, fmt.Errorf("invalid entanglement kind %q", body.Entanglement)
		}
		req.Entanglement = ent
		req.Correlation = body.Correlation
		return req, parseSquares(map[string]*parseTarget{
			"from":   {body.From, &req.From},
			"target": {body.Target, &req.Target},
		})
	case shared.MoveMeasure:
		if len(body.Positions) == 0 {
			return req, fmt.Errorf("measure requires positions")
		}
		for _, coord := range body.Positions {
			sq, ok := parseSquare(coord)
			if !ok {
				return req, fmt.Errorf("invalid position %q", coord)
			}
			req.Positions = append(req.Positions, sq)
		}
		return req, nil
	default:
		return req, fmt.Errorf("invalid move kind %q", body.Kind)
	}
}

type parseTarget struct {
	raw  string
	dest *shared.Square
}

func parseSquares(fields map[string]*parseTarget) error {
	for name, field := range fields {
		sq, ok := parseSquare(field.raw)
		if !ok {
			return fmt.Errorf("invalid %s square %q", name, field.raw)
		}
		*field.dest = sq
	}
	return nil
}

func parseSquare(coord string) (shared.Square, bool) {
	return shared.CoordToSquare(strings.ToLower(strings.TrimSpace(coord)))
}

// ---- quantum views ----

func (s *Server) handleQuantumState(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	view, err := s.arena.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"superpositions": view.State.Superpositions,
		"entanglements":  view.State.Entanglements,
	})
}

func (s *Server) handleProbability(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	from, ok := parseSquare(query.Get("from"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid from square %q", query.Get("from")))
		return
	}
	to, ok := parseSquare(query.Get("to"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid to square %q", query.Get("to")))
		return
	}
	isCapture := query.Get("capture") == "true"

	prob, err := s.arena.Probability(r.Context(), id, from, to, isCapture)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"from":        from,
		"to":          to,
		"capture":     isCapture,
		"probability": prob,
	})
}

func gameID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return uuid.Nil, false
	}
	return id, true
}

package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/tui-match3/internal/board"
	"github.com/vovakirdan/tui-match3/internal/engine"
	"github.com/vovakirdan/tui-match3/internal/journal"
	"github.com/vovakirdan/tui-match3/internal/registry"
)

// State is the JSON view of an engine snapshot. Grid rows use one letter
// per token (see board.Token.Char); "." is empty.
type State struct {
	ID       string       `json:"id"`
	Preset   string       `json:"preset"`
	Size     int          `json:"size"`
	Colors   int          `json:"colors"`
	Seed     int64        `json:"seed"`
	Grid     []string     `json:"grid"`
	Score    int          `json:"score"`
	Moves    int          `json:"moves"`
	Phase    string       `json:"phase"`
	Selected *board.Coord `json:"selected"`
	GameOver bool         `json:"game_over"`
	Journal  string       `json:"journal,omitempty"` // Journal session ID
}

// ActivateResponse is returned by POST /api/games/{id}/activate.
type ActivateResponse struct {
	Outcome string         `json:"outcome"`
	Detail  engine.Outcome `json:"detail"`
	State   State          `json:"state"`
}

type newGameReq struct {
	Preset string `json:"preset"`
	Seed   *int64 `json:"seed"`
}

type restartReq struct {
	Seed *int64 `json:"seed"`
}

type activateReq struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

func stateOf(g *game) State {
	snap := g.eng.Snapshot()
	cfg := g.eng.Config()

	rows := make([]string, 0, snap.Grid.Size())
	for _, row := range snap.Grid.Rows() {
		b := make([]rune, len(row))
		for i, t := range row {
			b[i] = t.Char()
		}
		rows = append(rows, string(b))
	}

	st := State{
		ID:       g.id,
		Preset:   g.preset.ID,
		Size:     cfg.Size,
		Colors:   cfg.Colors,
		Seed:     snap.Seed,
		Grid:     rows,
		Score:    snap.Score,
		Moves:    snap.Moves,
		Phase:    snap.Phase.String(),
		Selected: snap.Selected,
		GameOver: snap.GameOver,
	}
	if g.rec != nil {
		st.Journal = g.rec.SessionID()
	}
	return st
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, registry.List())
}

// handleNewGame creates a game from a preset (default classic) and an
// optional seed. The body may be empty.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	if req.Preset == "" {
		req.Preset = registry.DefaultPreset
	}
	preset, err := registry.Get(req.Preset)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_preset")
		return
	}
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	cfg := s.settings.WithBoard(preset.Size, preset.Colors).EngineConfig(seed)
	g := &game{preset: preset}

	opts := []engine.Option{engine.WithLogger(s.logger)}
	if s.store != nil {
		rec, err := journal.Start(s.store, preset.ID, cfg, s.logger)
		if err != nil {
			s.logger.Warn("journal disabled for game", "error", err)
		} else {
			g.rec = rec
			opts = append(opts, engine.WithObserver(rec), engine.WithRecorder(rec))
		}
	}

	eng, err := engine.New(cfg, opts...)
	if err != nil {
		s.closeGame(g)
		s.logger.Error("cannot create engine", "preset", preset.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "engine_failed")
		return
	}
	g.eng = eng

	id := s.games.add(g)
	s.logger.Info("game created", "game", id, "preset", preset.ID, "seed", seed)
	writeJSON(w, http.StatusCreated, stateOf(g))
}

// lookup resolves the {id} URL parameter, writing 404 when unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*game, bool) {
	g, err := s.games.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "game_not_found")
		return nil, false
	}
	return g, true
}

// acquire is lookup for handlers that drive the engine. The caller must
// call g.end when done. A game retired between lookup and acquire is
// reported as not found.
func (s *Server) acquire(w http.ResponseWriter, r *http.Request) (*game, bool) {
	g, ok := s.lookup(w, r)
	if !ok {
		return nil, false
	}
	if !g.begin(time.Now()) {
		writeError(w, http.StatusNotFound, "game_not_found")
		return nil, false
	}
	return g, true
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, stateOf(g))
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.remove(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "game_not_found")
		return
	}
	s.closeGame(g)
	s.logger.Info("game deleted", "game", g.id)
	w.WriteHeader(http.StatusNoContent)
}

// handleActivate forwards one cell activation to the engine. Activations
// that arrive while another one is resolving come back as "ignored".
func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	g, ok := s.acquire(w, r)
	if !ok {
		return
	}
	defer g.end(time.Now())

	var req activateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.Row == nil || req.Col == nil {
		writeError(w, http.StatusBadRequest, "row_and_col_required")
		return
	}

	out := g.eng.Activate(board.C(*req.Row, *req.Col))
	if out.Kind == engine.OutcomeResolved {
		s.logger.Debug("move resolved", "game", g.id, "points", out.ScoreDelta, "cascades", out.Cascades)
	}
	writeJSON(w, http.StatusOK, ActivateResponse{
		Outcome: out.Kind.String(),
		Detail:  out,
		State:   stateOf(g),
	})
}

// handleRestart deals a new board on an existing game, with an optional
// seed. The journal moves on to a new session.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	g, ok := s.acquire(w, r)
	if !ok {
		return
	}
	defer g.end(time.Now())

	var req restartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	if err := g.eng.Restart(seed); err != nil {
		if errors.Is(err, engine.ErrBusy) {
			writeError(w, http.StatusConflict, "move_in_progress")
			return
		}
		s.logger.Error("cannot restart game", "game", g.id, "error", err)
		writeError(w, http.StatusInternalServerError, "engine_failed")
		return
	}
	s.logger.Info("game restarted", "game", g.id, "seed", seed)
	writeJSON(w, http.StatusOK, stateOf(g))
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	mv, ok := g.eng.Hint()
	if !ok {
		writeError(w, http.StatusNotFound, "no_moves")
		return
	}
	writeJSON(w, http.StatusOK, mv)
}

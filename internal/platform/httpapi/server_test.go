package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/tui-match3/internal/board"
	"github.com/vovakirdan/tui-match3/internal/config"
	"github.com/vovakirdan/tui-match3/internal/engine"
	"github.com/vovakirdan/tui-match3/internal/journal"
	"github.com/vovakirdan/tui-match3/internal/storage"
)

func newTestServer(t *testing.T, store journal.Writer) *Server {
	t.Helper()
	s := New(DefaultConfig(), config.DefaultMatch3Config(), store, nil)
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func newGame(t *testing.T, s *Server, preset string, seed int64) State {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/games", map[string]any{"preset": preset, "seed": seed})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[State](t, rec)
}

func activate(t *testing.T, s *Server, id string, c board.Coord) ActivateResponse {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/api/games/"+id+"/activate", map[string]int{"row": c.Row, "col": c.Col})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[ActivateResponse](t, rec)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	newGame(t, s, "compact", 1)

	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"games":1}`, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestPresets(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/presets", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	presets := decode[[]map[string]any](t, rec)
	require.Len(t, presets, 4)
	assert.Equal(t, "classic", presets[0]["id"])
}

func TestNewGame(t *testing.T) {
	s := newTestServer(t, nil)

	st := newGame(t, s, "compact", 42)
	assert.NotEmpty(t, st.ID)
	assert.Equal(t, "compact", st.Preset)
	assert.Equal(t, 6, st.Size)
	assert.Equal(t, 5, st.Colors)
	assert.Equal(t, int64(42), st.Seed)
	assert.Equal(t, "idle", st.Phase)
	assert.Zero(t, st.Score)
	assert.Nil(t, st.Selected)
	assert.Empty(t, st.Journal)
	require.Len(t, st.Grid, 6)
	for _, row := range st.Grid {
		assert.Len(t, row, 6)
		assert.NotContains(t, row, ".")
	}

	again := newGame(t, s, "compact", 42)
	assert.NotEqual(t, st.ID, again.ID)
	assert.Equal(t, st.Grid, again.Grid, "same seed, same board")
}

func TestNewGameDefaults(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/games", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	st := decode[State](t, rec)
	assert.Equal(t, "classic", st.Preset)
	assert.Equal(t, 8, st.Size)
}

func TestNewGameErrors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/games", map[string]string{"preset": "huge"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"unknown_preset"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/games", bytes.NewBufferString("{"))
	raw := httptest.NewRecorder()
	s.Router().ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestUnknownGame(t *testing.T) {
	s := newTestServer(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/games/nope"},
		{http.MethodDelete, "/api/games/nope"},
		{http.MethodGet, "/api/games/nope/hint"},
		{http.MethodPost, "/api/games/nope/activate"},
		{http.MethodPost, "/api/games/nope/restart"},
	} {
		rec := do(t, s, tc.method, tc.path, map[string]int{"row": 0, "col": 0})
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
		assert.JSONEq(t, `{"error":"game_not_found"}`, rec.Body.String())
	}
}

func TestRoutingErrors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, rec.Body.String())

	rec = do(t, s, http.MethodPut, "/api/presets", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestActivateSelection(t *testing.T) {
	s := newTestServer(t, nil)
	st := newGame(t, s, "compact", 3)

	resp := activate(t, s, st.ID, board.C(1, 1))
	assert.Equal(t, "selected", resp.Outcome)
	require.NotNil(t, resp.State.Selected)
	assert.Equal(t, board.C(1, 1), *resp.State.Selected)
	assert.Equal(t, "awaiting_second_selection", resp.State.Phase)

	resp = activate(t, s, st.ID, board.C(1, 1))
	assert.Equal(t, "deselected", resp.Outcome)
	assert.Nil(t, resp.State.Selected)

	resp = activate(t, s, st.ID, board.C(-1, 9))
	assert.Equal(t, "ignored", resp.Outcome)
}

func TestActivateBadBody(t *testing.T) {
	s := newTestServer(t, nil)
	st := newGame(t, s, "compact", 3)

	rec := do(t, s, http.MethodPost, "/api/games/"+st.ID+"/activate", map[string]int{"row": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"row_and_col_required"}`, rec.Body.String())
}

func TestHintThenPlay(t *testing.T) {
	s := newTestServer(t, nil)
	st := newGame(t, s, "classic", 11)

	rec := do(t, s, http.MethodGet, "/api/games/"+st.ID+"/hint", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	mv := decode[board.Move](t, rec)
	assert.True(t, board.AreAdjacent(mv.A, mv.B))

	activate(t, s, st.ID, mv.A)
	resp := activate(t, s, st.ID, mv.B)
	assert.Equal(t, "resolved", resp.Outcome)
	assert.Positive(t, resp.Detail.ScoreDelta)
	assert.GreaterOrEqual(t, resp.Detail.Cascades, 1)
	assert.Equal(t, engine.OutcomeResolved, resp.Detail.Kind)
	assert.Equal(t, resp.Detail.ScoreDelta, resp.State.Score)
	assert.Equal(t, 1, resp.State.Moves)
	for _, row := range resp.State.Grid {
		assert.NotContains(t, row, ".", "board is refilled after a move")
	}
}

func TestDeleteGame(t *testing.T) {
	s := newTestServer(t, nil)
	st := newGame(t, s, "compact", 5)

	rec := do(t, s, http.MethodDelete, "/api/games/"+st.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/games/"+st.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJournaledGame(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s := newTestServer(t, store)
	st := newGame(t, s, "classic", 21)
	require.NotEmpty(t, st.Journal)

	rec := do(t, s, http.MethodGet, "/api/games/"+st.ID+"/hint", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mv := decode[board.Move](t, rec)
	activate(t, s, st.ID, mv.A)
	played := activate(t, s, st.ID, mv.B)

	rec = do(t, s, http.MethodDelete, "/api/games/"+st.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	sess, err := store.Session(st.Journal)
	require.NoError(t, err)
	assert.Equal(t, "classic", sess.Preset)
	assert.Equal(t, int64(21), sess.Seed)
	assert.Equal(t, played.State.Score, sess.FinalScore)
	assert.True(t, sess.Finished())

	moves, err := store.Moves(st.Journal)
	require.NoError(t, err)
	assert.Len(t, moves, 1)
}

func TestConcurrentActivationsAreSerialized(t *testing.T) {
	s := newTestServer(t, nil)
	st := newGame(t, s, "classic", 8)

	rec := do(t, s, http.MethodGet, "/api/games/"+st.ID+"/hint", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mv := decode[board.Move](t, rec)
	activate(t, s, st.ID, mv.A)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = map[string]int{}
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := do(t, s, http.MethodPost, "/api/games/"+st.ID+"/activate", map[string]int{"row": mv.B.Row, "col": mv.B.Col})
			var resp ActivateResponse
			if json.Unmarshal(r.Body.Bytes(), &resp) != nil {
				return
			}
			mu.Lock()
			outcomes[resp.Outcome]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, outcomes["resolved"], "exactly one request performs the swap: %v", outcomes)
	assert.Equal(t, 1, decode[State](t, do(t, s, http.MethodGet, "/api/games/"+st.ID, nil)).Moves)
}

func TestExpire(t *testing.T) {
	s := newTestServer(t, nil)
	st := newGame(t, s, "compact", 1)

	assert.Empty(t, s.games.expire(time.Now().Add(-time.Minute)))
	gone := s.games.expire(time.Now().Add(time.Minute))
	require.Len(t, gone, 1)
	assert.Equal(t, st.ID, gone[0].id)
	assert.Zero(t, s.games.len())
}

func TestActivateDetailKindIsText(t *testing.T) {
	s := newTestServer(t, nil)
	st := newGame(t, s, "compact", 3)

	rec := do(t, s, http.MethodPost, "/api/games/"+st.ID+"/activate", map[string]int{"row": 0, "col": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	var raw struct {
		Detail map[string]any `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "selected", raw.Detail["kind"])
}

func newJournal(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRestartGame(t *testing.T) {
	store := newJournal(t)
	s := newTestServer(t, store)
	st := newGame(t, s, "classic", 21)

	mv := decode[board.Move](t, do(t, s, http.MethodGet, "/api/games/"+st.ID+"/hint", nil))
	activate(t, s, st.ID, mv.A)
	played := activate(t, s, st.ID, mv.B)
	require.Positive(t, played.State.Score)

	rec := do(t, s, http.MethodPost, "/api/games/"+st.ID+"/restart", map[string]int64{"seed": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fresh := decode[State](t, rec)
	assert.Equal(t, st.ID, fresh.ID)
	assert.Equal(t, int64(5), fresh.Seed)
	assert.Zero(t, fresh.Score)
	assert.Zero(t, fresh.Moves)
	assert.Equal(t, "classic", fresh.Preset)
	require.NotEmpty(t, fresh.Journal)
	assert.NotEqual(t, st.Journal, fresh.Journal)

	other := newGame(t, s, "classic", 5)
	assert.Equal(t, other.Grid, fresh.Grid, "restart deals the board of its seed")

	old, err := store.Session(st.Journal)
	require.NoError(t, err)
	assert.True(t, old.Finished())
	assert.Equal(t, played.State.Score, old.FinalScore)

	sess, err := store.Session(fresh.Journal)
	require.NoError(t, err)
	assert.Equal(t, int64(5), sess.Seed)
	assert.False(t, sess.Finished())
}

func TestRestartWithoutBody(t *testing.T) {
	s := newTestServer(t, nil)
	st := newGame(t, s, "compact", 1)

	rec := do(t, s, http.MethodPost, "/api/games/"+st.ID+"/restart", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[State](t, rec).Journal)

	req := httptest.NewRequest(http.MethodPost, "/api/games/"+st.ID+"/restart", bytes.NewBufferString("{"))
	raw := httptest.NewRecorder()
	s.Router().ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestExpireSkipsGamesInUse(t *testing.T) {
	s := newTestServer(t, nil)
	st := newGame(t, s, "compact", 1)

	g, err := s.games.get(st.ID)
	require.NoError(t, err)
	require.True(t, g.begin(time.Now()))

	assert.Empty(t, s.games.expire(time.Now().Add(time.Hour)), "game with a request in flight")
	assert.Equal(t, 1, s.games.len())

	g.end(time.Now())
	gone := s.games.expire(time.Now().Add(time.Hour))
	require.Len(t, gone, 1)
	assert.False(t, g.begin(time.Now()), "expired game accepts no more work")
}

func TestCloseWaitsForRunningMove(t *testing.T) {
	store := newJournal(t)
	s := newTestServer(t, store)
	st := newGame(t, s, "classic", 21)

	g, err := s.games.get(st.ID)
	require.NoError(t, err)
	require.True(t, g.begin(time.Now()))

	closed := make(chan struct{})
	go func() {
		s.closeGame(g)
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("game closed while a move was running")
	case <-time.After(50 * time.Millisecond):
	}

	mv, ok := g.eng.Hint()
	require.True(t, ok)
	g.eng.Activate(mv.A)
	g.eng.Activate(mv.B)
	g.end(time.Now())

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("close did not finish after the move ended")
	}

	rec := do(t, s, http.MethodPost, "/api/games/"+st.ID+"/activate", map[string]int{"row": 0, "col": 0})
	assert.Equal(t, http.StatusNotFound, rec.Code, "closed game still takes activations")

	sess, err := store.Session(st.Journal)
	require.NoError(t, err)
	assert.True(t, sess.Finished())
	assert.Equal(t, g.eng.Score(), sess.FinalScore)
	moves, err := store.Moves(st.Journal)
	require.NoError(t, err)
	assert.Len(t, moves, 1)
}

package httpapi

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/tui-match3/internal/engine"
	"github.com/vovakirdan/tui-match3/internal/journal"
	"github.com/vovakirdan/tui-match3/internal/registry"
)

// ErrGameNotFound is returned for unknown or deleted game IDs.
var ErrGameNotFound = errors.New("httpapi: game not found")

// game is one engine served over HTTP.
type game struct {
	id      string
	preset  registry.Preset
	eng     *engine.Engine
	rec     *journal.Recorder // nil when the journal is off
	created time.Time

	mu       sync.Mutex
	lastUsed time.Time
	inflight int
	retired  bool // set once the game leaves the store; no new work starts
	work     sync.WaitGroup
}

func (g *game) touch(now time.Time) {
	g.mu.Lock()
	g.lastUsed = now
	g.mu.Unlock()
}

// begin registers a request that drives the engine. It fails once the game
// is retired. Every successful begin must be paired with end.
func (g *game) begin(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.retired {
		return false
	}
	g.inflight++
	g.lastUsed = now
	g.work.Add(1)
	return true
}

func (g *game) end(now time.Time) {
	g.mu.Lock()
	g.inflight--
	g.lastUsed = now
	g.mu.Unlock()
	g.work.Done()
}

// retireIfIdle retires g if nothing is running on it and it was last used
// before cutoff.
func (g *game) retireIfIdle(cutoff time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.retired || g.inflight > 0 || !g.lastUsed.Before(cutoff) {
		return false
	}
	g.retired = true
	return true
}

// close retires the game, waits for running requests and ends its journal
// session.
func (g *game) close() error {
	g.mu.Lock()
	g.retired = true
	g.mu.Unlock()
	g.work.Wait()

	if g.rec == nil {
		return nil
	}
	return g.rec.Close()
}

// games is an in-memory, concurrency-safe map of running games.
type games struct {
	mu    sync.RWMutex
	games map[string]*game
}

func newGames() *games {
	return &games{games: make(map[string]*game)}
}

// add stores g under a fresh ID and returns it.
func (s *games) add(g *game) string {
	g.id = uuid.NewString()
	now := time.Now()
	g.created, g.lastUsed = now, now

	s.mu.Lock()
	s.games[g.id] = g
	s.mu.Unlock()
	return g.id
}

// get looks up a game and marks it used.
func (s *games) get(id string) (*game, error) {
	s.mu.RLock()
	g, ok := s.games[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrGameNotFound
	}
	g.touch(time.Now())
	return g, nil
}

// remove deletes a game and returns it.
func (s *games) remove(id string) (*game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	delete(s.games, id)
	return g, nil
}

// expire removes games idle since before cutoff and returns them. Games
// with a request in flight are kept.
func (s *games) expire(cutoff time.Time) []*game {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*game
	for id, g := range s.games {
		if g.retireIfIdle(cutoff) {
			delete(s.games, id)
			out = append(out, g)
		}
	}
	return out
}

// drain removes every game.
func (s *games) drain() []*game {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*game, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	clear(s.games)
	return out
}

func (s *games) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

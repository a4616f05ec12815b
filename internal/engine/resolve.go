package engine

import "github.com/vovakirdan/tui-match3/internal/board"

type resolution struct {
	cascades int
	chains   int
	points   int
	score    int
	gameOver bool
}

// resolve runs the cascade loop after a matching swap: remove chains, score
// them, apply gravity, refill, and repeat while matches remain. Each step is
// presented to the animator with the lock released. Ends with one deadlock
// check.
func (e *Engine) resolve() resolution {
	var res resolution

	for depth := 0; ; depth++ {
		if e.cfg.MaxCascades > 0 && depth >= e.cfg.MaxCascades {
			e.log.Error("cascade limit reached, stopping", "depth", depth, "limit", e.cfg.MaxCascades)
			break
		}

		e.mu.Lock()
		chains := board.FindAllChains(e.grid)
		if len(chains) == 0 {
			e.mu.Unlock()
			break
		}
		removed := board.ChainCells(e.grid, chains)
		for _, c := range removed {
			e.grid.Set(c, board.Empty)
		}
		points := board.ScoreChains(chains, e.cfg.BaseScore, depth)
		e.score += points
		score := e.score
		destroy := e.batchLocked(BatchDestroy, depth)
		destroy.Removed = removed
		e.mu.Unlock()

		e.animator.Animate(destroy)
		e.notifyScore(score)

		e.mu.Lock()
		falls := board.ApplyGravity(e.grid)
		fall := e.batchLocked(BatchFall, depth)
		fall.Falls = falls
		e.mu.Unlock()

		e.animator.Animate(fall)

		e.mu.Lock()
		created := e.refiller().Refill(e.grid)
		refill := e.batchLocked(BatchRefill, depth)
		refill.Created = created
		e.mu.Unlock()

		e.animator.Animate(refill)

		e.log.Debug("cascade", "depth", depth, "chains", len(chains), "cells", len(removed), "points", points)
		res.cascades++
		res.chains += len(chains)
		res.points += points
	}

	e.mu.Lock()
	res.score = e.score
	res.gameOver = !board.HasAnyLegalMove(e.grid)
	if res.gameOver {
		e.phase = PhaseGameOver
	} else {
		e.phase = PhaseIdle
	}
	e.mu.Unlock()

	if res.gameOver {
		e.log.Info("game over", "score", res.score)
	}
	return res
}

func (e *Engine) refiller() Filler {
	if e.filler != nil {
		return e.filler
	}
	return e.gen
}

// Package sim plays many seeded games with a random autoplayer and reports
// score statistics. It exercises the engine exactly as a frontend would,
// one Activate per selected cell.
package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"

	"github.com/vovakirdan/tui-match3/internal/board"
	"github.com/vovakirdan/tui-match3/internal/engine"
)

// ErrInvalidOptions wraps every Options validation failure.
var ErrInvalidOptions = errors.New("sim: invalid options")

// DefaultMaxMoves caps a single game when Options.MaxMoves is zero.
const DefaultMaxMoves = 200

// Options controls a simulation run.
type Options struct {
	Games    int   // Number of games to play
	Workers  int   // Concurrent engines, defaults to 1
	MaxMoves int   // Moves per game before it is stopped
	Seed     int64 // Master seed; every game seed derives from it
	Config   engine.Config

	ShowProgress bool
	Progress     io.Writer // Progress bar output, defaults to stderr
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.MaxMoves == 0 {
		o.MaxMoves = DefaultMaxMoves
	}
	if o.Progress == nil {
		o.Progress = os.Stderr
	}
	return o
}

func (o Options) validate() error {
	switch {
	case o.Games < 1:
		return fmt.Errorf("%w: games must be positive", ErrInvalidOptions)
	case o.MaxMoves < 1:
		return fmt.Errorf("%w: max moves must be positive", ErrInvalidOptions)
	}
	if err := o.Config.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// GameResult is the outcome of one simulated game.
type GameResult struct {
	Seed        int64 `json:"seed"`
	Score       int   `json:"score"`
	Moves       int   `json:"moves"`
	MaxCascades int   `json:"max_cascades"` // Deepest cascade of the game
	Deadlocked  bool  `json:"deadlocked"`   // Ended with no legal move
}

// Report is a finished simulation.
type Report struct {
	Games    int           `json:"games"`
	Workers  int           `json:"workers"`
	MaxMoves int           `json:"max_moves"`
	Seed     int64         `json:"seed"`
	Size     int           `json:"size"`
	Colors   int           `json:"colors"`
	Elapsed  time.Duration `json:"elapsed"`
	Results  []GameResult  `json:"results"`
	Summary  Summary       `json:"summary"`
}

// seeds derives one seed per game from the master seed, so results do not
// depend on how games are spread over workers.
func seeds(master int64, n int) []int64 {
	rng := rand.New(rand.NewSource(master))
	out := make([]int64, n)
	for i := range out {
		out[i] = rng.Int63()
	}
	return out
}

// Run plays opts.Games games on opts.Workers goroutines. It stops early
// and returns ctx.Err() when ctx is cancelled.
func Run(ctx context.Context, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	gameSeeds := seeds(opts.Seed, opts.Games)
	results := make([]GameResult, opts.Games)

	out := opts.Progress
	if !opts.ShowProgress {
		out = io.Discard
	}
	bar := pb.New(opts.Games).SetWriter(out).Start()

	jobs := make(chan int)
	errCh := make(chan error, opts.Workers)
	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for range opts.Workers {
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := playGame(opts.Config, gameSeeds[i], opts.MaxMoves)
				if err != nil {
					errCh <- err
					return
				}
				results[i] = res
				bar.Increment()
			}
		}()
	}

	var runErr error
feed:
	for i := range opts.Games {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break feed
		case err := <-errCh:
			runErr = err
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	if runErr == nil {
		select {
		case runErr = <-errCh:
		default:
		}
	}
	if runErr != nil {
		return nil, runErr
	}

	return &Report{
		Games:    opts.Games,
		Workers:  opts.Workers,
		MaxMoves: opts.MaxMoves,
		Seed:     opts.Seed,
		Size:     opts.Config.Size,
		Colors:   opts.Config.Colors,
		Elapsed:  used,
		Results:  results,
		Summary:  Summarize(results),
	}, nil
}

// playGame runs one game with a uniformly random legal-move player.
func playGame(cfg engine.Config, seed int64, maxMoves int) (GameResult, error) {
	cfg.Seed = seed
	eng, err := engine.New(cfg)
	if err != nil {
		return GameResult{}, err
	}

	res := GameResult{Seed: seed}
	player := rand.New(rand.NewSource(seed ^ 0x5eed))
	for res.Moves < maxMoves {
		snap := eng.Snapshot()
		if snap.GameOver {
			break
		}
		legal := board.LegalMoves(snap.Grid)
		if len(legal) == 0 {
			break
		}
		mv := legal[player.Intn(len(legal))]

		eng.Activate(mv.A)
		out := eng.Activate(mv.B)
		if out.Kind != engine.OutcomeResolved {
			return res, fmt.Errorf("sim: legal move %v->%v was %s (seed %d)", mv.A, mv.B, out.Kind, seed)
		}
		res.Moves++
		res.MaxCascades = max(res.MaxCascades, out.Cascades)
	}

	res.Score = eng.Score()
	res.Deadlocked = eng.GameOver()
	return res, nil
}

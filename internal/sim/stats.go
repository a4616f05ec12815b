package sim

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary aggregates the results of a run.
type Summary struct {
	MeanScore   float64    `json:"mean_score"`
	StdScore    float64    `json:"std_score"`
	ScoreCI     [2]float64 `json:"score_ci"` // 95% interval of the mean
	MedianScore float64    `json:"median_score"`
	P90Score    float64    `json:"p90_score"`
	MaxScore    float64    `json:"max_score"`
	MeanMoves   float64    `json:"mean_moves"`
	MaxCascades int        `json:"max_cascades"`
	Deadlocks   int        `json:"deadlocks"`
}

// DeadlockRate is the fraction of games that ran out of legal moves.
func (s Summary) DeadlockRate(games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(s.Deadlocks) / float64(games)
}

// Summarize computes score statistics over results.
func Summarize(results []GameResult) Summary {
	var sum Summary
	if len(results) == 0 {
		return sum
	}

	scores := make([]float64, len(results))
	moves := make([]float64, len(results))
	for i, r := range results {
		scores[i] = float64(r.Score)
		moves[i] = float64(r.Moves)
		sum.MaxCascades = max(sum.MaxCascades, r.MaxCascades)
		if r.Deadlocked {
			sum.Deadlocks++
		}
	}

	sum.MeanScore, sum.StdScore = stat.MeanStdDev(scores, nil)
	sum.MeanMoves = stat.Mean(moves, nil)

	n := len(scores)
	if n < 2 {
		sum.StdScore = 0
		sum.ScoreCI = [2]float64{sum.MeanScore, sum.MeanScore}
	} else {
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(0.975)
		half := t * sum.StdScore / math.Sqrt(float64(n))
		sum.ScoreCI = [2]float64{sum.MeanScore - half, sum.MeanScore + half}
	}

	slices.Sort(scores)
	sum.MedianScore = stat.Quantile(0.5, stat.Empirical, scores, nil)
	sum.P90Score = stat.Quantile(0.9, stat.Empirical, scores, nil)
	sum.MaxScore = scores[n-1]
	return sum
}

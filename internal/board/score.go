package board

// DefaultBaseScore is the points awarded per chain cell beyond the threshold,
// plus one.
const DefaultBaseScore = 50

// ScoreChains returns Σ base·(len−ExplosionThreshold+1) over all chains,
// multiplied by (depth+1). The multiplier applies once per cascade
// iteration, not per chain.
func ScoreChains(chains []Chain, base, depth int) int {
	points := 0
	for _, ch := range chains {
		points += base * (ch.Len() - ExplosionThreshold + 1)
	}
	return points * (depth + 1)
}

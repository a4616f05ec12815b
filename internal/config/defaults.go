package config

import (
	_ "embed"

	"github.com/vovakirdan/tui-match3/internal/board"
)

//go:embed defaults/match3.yaml
var defaultMatch3YAML []byte

// DefaultMatch3Config returns the default match-3 configuration.
func DefaultMatch3Config() Match3Config {
	return Match3Config{
		Board: BoardConfig{
			Size:   8,
			Colors: board.MaxColors,
		},
		Rules: RulesConfig{
			ExplosionThreshold: board.ExplosionThreshold,
			BaseScore:          board.DefaultBaseScore,
			MaxCascades:        0,
		},
		Animation: AnimationConfig{
			SwapMS:    180,
			DestroyMS: 180,
			FallMS:    180,
		},
	}
}

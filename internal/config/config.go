// Package config provides YAML-based configuration loading for the match-3
// engine and its terminal frontends.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/tui-match3/internal/engine"
)

// Match3Config contains all configuration for a match-3 game.
type Match3Config struct {
	Board     BoardConfig     `yaml:"board"`
	Rules     RulesConfig     `yaml:"rules"`
	Animation AnimationConfig `yaml:"animation"`
}

// BoardConfig defines the board dimensions and palette.
type BoardConfig struct {
	Size   int `yaml:"size"`
	Colors int `yaml:"colors"`
}

// RulesConfig defines matching and scoring rules.
type RulesConfig struct {
	ExplosionThreshold int `yaml:"explosion_threshold"`
	BaseScore          int `yaml:"base_score"`
	MaxCascades        int `yaml:"max_cascades"` // 0 = unbounded
}

// AnimationConfig defines how long each batch is shown, in milliseconds.
type AnimationConfig struct {
	SwapMS    int `yaml:"swap_ms"`
	DestroyMS int `yaml:"destroy_ms"`
	FallMS    int `yaml:"fall_ms"`
}

// Swap returns the swap animation duration.
func (a AnimationConfig) Swap() time.Duration {
	return time.Duration(a.SwapMS) * time.Millisecond
}

// Destroy returns the destroy animation duration.
func (a AnimationConfig) Destroy() time.Duration {
	return time.Duration(a.DestroyMS) * time.Millisecond
}

// Fall returns the fall and refill animation duration.
func (a AnimationConfig) Fall() time.Duration {
	return time.Duration(a.FallMS) * time.Millisecond
}

// EngineConfig converts the file configuration to an engine configuration.
func (c Match3Config) EngineConfig(seed int64) engine.Config {
	return engine.Config{
		Size:        c.Board.Size,
		Colors:      c.Board.Colors,
		Threshold:   c.Rules.ExplosionThreshold,
		BaseScore:   c.Rules.BaseScore,
		MaxCascades: c.Rules.MaxCascades,
		Seed:        seed,
	}
}

// WithBoard returns a copy with the board dimensions replaced.
func (c Match3Config) WithBoard(size, colors int) Match3Config {
	c.Board.Size = size
	c.Board.Colors = colors
	return c
}

// Validate rejects configurations the engine cannot run.
func (c Match3Config) Validate() error {
	if err := c.EngineConfig(0).Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a := c.Animation
	if a.SwapMS < 0 || a.DestroyMS < 0 || a.FallMS < 0 {
		return fmt.Errorf("config: animation durations must not be negative")
	}
	return nil
}

package engine

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/tui-match3/internal/board"
)

// Configuration errors. New wraps them in a *ConfigError.
var (
	ErrInvalidSize      = board.ErrInvalidSize
	ErrInvalidPalette   = board.ErrInvalidColor
	ErrInvalidThreshold = errors.New("engine: explosion threshold must be 3")
	ErrInvalidScore     = errors.New("engine: base score must be positive")
	ErrInvalidCascades  = errors.New("engine: cascade limit must not be negative")
	ErrGridMismatch     = errors.New("engine: initial grid does not match board size")
)

// Config holds construction-time engine settings. It is immutable once the
// engine is built.
type Config struct {
	Size        int   // Board dimension (Size x Size)
	Colors      int   // Palette size, 3-6
	Threshold   int   // Minimum chain length, fixed at 3
	BaseScore   int   // Points per chain cell beyond the threshold, plus one
	MaxCascades int   // Diagnostic cascade cap, 0 means unbounded
	Seed        int64 // RNG seed for generation and refill
}

// DefaultConfig returns the classic 8x8 board with six colors.
func DefaultConfig() Config {
	return Config{
		Size:        8,
		Colors:      board.MaxColors,
		Threshold:   board.ExplosionThreshold,
		BaseScore:   board.DefaultBaseScore,
		MaxCascades: 0,
	}
}

// withDefaults fills zero-valued rule fields.
func (c Config) withDefaults() Config {
	if c.Threshold == 0 {
		c.Threshold = board.ExplosionThreshold
	}
	if c.BaseScore == 0 {
		c.BaseScore = board.DefaultBaseScore
	}
	return c
}

// Validate checks the configuration and returns a *ConfigError on failure.
func (c Config) Validate() error {
	switch {
	case c.Size < board.MinSize:
		return &ConfigError{Field: "size", Value: c.Size, Err: ErrInvalidSize}
	case c.Colors < board.MinColors || c.Colors > board.MaxColors:
		return &ConfigError{Field: "colors", Value: c.Colors, Err: ErrInvalidPalette}
	case c.Threshold != board.ExplosionThreshold:
		return &ConfigError{Field: "threshold", Value: c.Threshold, Err: ErrInvalidThreshold}
	case c.BaseScore <= 0:
		return &ConfigError{Field: "base score", Value: c.BaseScore, Err: ErrInvalidScore}
	case c.MaxCascades < 0:
		return &ConfigError{Field: "max cascades", Value: c.MaxCascades, Err: ErrInvalidCascades}
	}
	return nil
}

// ConfigError reports an invalid configuration detected before any grid
// exists.
type ConfigError struct {
	Field string
	Value int
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("engine: invalid %s %d: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Package board provides the match-3 board model and the pure algorithms that
// operate on it: match detection, generation, gravity, refill, move validation
// and scoring. It has no dependencies outside the standard library so the
// engine and every frontend can share it.
package board

import (
	"fmt"
	"strings"
)

// Token is the content of a single cell: either Empty or one of the colors.
// Tokens carry no position; a position is always a Coord.
type Token uint8

const (
	Empty Token = iota
	Blue
	Green
	Orange
	Red
	White
	Yellow
)

// Palette limits.
const (
	MinColors = 3
	MaxColors = 6
)

// String returns the color name.
func (t Token) String() string {
	switch t {
	case Empty:
		return "empty"
	case Blue:
		return "blue"
	case Green:
		return "green"
	case Orange:
		return "orange"
	case Red:
		return "red"
	case White:
		return "white"
	case Yellow:
		return "yellow"
	default:
		return "unknown"
	}
}

// Char returns a single character for ASCII rendering and fixtures.
func (t Token) Char() rune {
	switch t {
	case Empty:
		return '.'
	case Blue:
		return 'B'
	case Green:
		return 'G'
	case Orange:
		return 'O'
	case Red:
		return 'R'
	case White:
		return 'W'
	case Yellow:
		return 'Y'
	default:
		return '?'
	}
}

// IsColor reports whether the token is a non-empty color.
func (t Token) IsColor() bool {
	return t >= Blue && t <= Yellow
}

// ParseToken converts a name or single letter to a Token.
// Returns Empty and false if the string is not recognized.
func ParseToken(s string) (Token, bool) {
	switch strings.ToLower(s) {
	case "empty", ".":
		return Empty, true
	case "blue", "b":
		return Blue, true
	case "green", "g":
		return Green, true
	case "orange", "o":
		return Orange, true
	case "red", "r":
		return Red, true
	case "white", "w":
		return White, true
	case "yellow", "y":
		return Yellow, true
	default:
		return Empty, false
	}
}

// MarshalText encodes the token by color name.
func (t Token) MarshalText() ([]byte, error) {
	if t > Yellow {
		return nil, fmt.Errorf("board: invalid token %d", uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts anything ParseToken does.
func (t *Token) UnmarshalText(b []byte) error {
	v, ok := ParseToken(string(b))
	if !ok {
		return fmt.Errorf("board: unknown token %q", b)
	}
	*t = v
	return nil
}

// Palette returns the first n colors. n is clamped to [0, MaxColors].
func Palette(n int) []Token {
	if n < 0 {
		n = 0
	}
	if n > MaxColors {
		n = MaxColors
	}
	p := make([]Token, n)
	for i := range p {
		p[i] = Token(i + 1)
	}
	return p
}

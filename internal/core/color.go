package core

// Color represents a foreground color for a screen cell.
// The platform maps each value to an ANSI 256-color code.
type Color uint8

// Predefined colors. The first six after ColorDefault match the token palette.
const (
	ColorDefault Color = iota
	ColorBlue
	ColorGreen
	ColorOrange
	ColorRed
	ColorWhite
	ColorYellow
	ColorGray
	ColorCyan
	ColorMagenta
)

// Attr is a set of text attributes for a cell.
type Attr uint8

const (
	AttrBold    Attr = 1 << iota
	AttrReverse      // Swap foreground and background (selection, cursor)
	AttrFaint
)

// Has reports whether all bits of other are set.
func (a Attr) Has(other Attr) bool {
	return a&other == other
}

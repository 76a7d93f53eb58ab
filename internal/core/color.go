package core

// Color is the foreground colour of a screen cell. The platform maps each
// value to an ANSI 256-colour code.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// PlayerColors gives each seat (1..4) a distinct colour. Index 0 is unused.
var PlayerColors = [5]Color{ColorDefault, ColorBrightCyan, ColorBrightMagenta, ColorBrightGreen, ColorBrightYellow}

// PlayerColor returns the colour for a 1-based seat number.
func PlayerColor(seat int) Color {
	if seat < 1 || seat >= len(PlayerColors) {
		return ColorWhite
	}
	return PlayerColors[seat]
}

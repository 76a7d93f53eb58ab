// Package engine implements the deterministic, turn-based rules of the bomb
// arena: terrain, players, bombs, chain reactions, turn order and lethality
// forecasting. It performs no I/O and has no UI dependencies.
package engine

import (
	"fmt"
	"strings"
)

// Coord represents a cell on the grid.
// X increases to the right, Y increases downward (screen coordinates).
type Coord struct {
	X int `msgpack:"x" yaml:"x"`
	Y int `msgpack:"y" yaml:"y"`
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns a new Coord offset by (dx, dy).
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Step returns the neighbouring Coord in the given direction.
func (c Coord) Step(d Dir) Coord {
	dx, dy := d.Delta()
	return c.Add(dx, dy)
}

// Manhattan returns the Manhattan distance to another coordinate.
func (c Coord) Manhattan(other Coord) int {
	dx := c.X - other.X
	dy := c.Y - other.Y
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// Dir is one of the four cardinal directions.
type Dir uint8

const (
	DirNone Dir = iota
	DirUp
	DirDown
	DirLeft
	DirRight
)

// Cardinals lists the four walkable directions in a fixed order.
// Blast walks and move enumeration follow this order.
var Cardinals = [4]Dir{DirUp, DirDown, DirLeft, DirRight}

// String returns the lowercase name of the direction.
func (d Dir) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

// Valid reports whether d is one of the four cardinal directions.
func (d Dir) Valid() bool {
	return d >= DirUp && d <= DirRight
}

// Delta returns the (dx, dy) offset for one step in this direction.
// Up decreases Y, Down increases Y.
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the reverse direction.
func (d Dir) Opposite() Dir {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	default:
		return d
	}
}

// ParseDir converts "up", "down", "left" or "right" (case-insensitive) to a Dir.
func ParseDir(s string) (Dir, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	}
	return DirNone, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

package model

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/mj1618/android-cli/internal/core"
)

// Bounds is an axis-aligned screen rectangle in device pixels, stored as
// its top-left and bottom-right corners.
type Bounds struct {
	X1, Y1, X2, Y2 int
}

var boundsPattern = regexp.MustCompile(`^\[(\d+),(\d+)\]\[(\d+),(\d+)\]$`)

// ParseBounds parses the uiautomator "[x1,y1][x2,y2]" form. Anything else,
// including an inverted rectangle, is a parse error.
func ParseBounds(s string) (Bounds, error) {
	m := boundsPattern.FindStringSubmatch(s)
	if m == nil {
		return Bounds{}, core.Newf(core.KindParse, "parse bounds", "invalid bounds %q: expected [x1,y1][x2,y2]", s)
	}
	var vals [4]int
	for i := range vals {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Bounds{}, core.Wrap(core.KindParse, "parse bounds", fmt.Sprintf("invalid bounds %q", s), err)
		}
		vals[i] = v
	}
	b := Bounds{X1: vals[0], Y1: vals[1], X2: vals[2], Y2: vals[3]}
	if b.X2 < b.X1 || b.Y2 < b.Y1 {
		return Bounds{}, core.Newf(core.KindParse, "parse bounds", "invalid bounds %q: corners are inverted", s)
	}
	return b, nil
}

// Center returns the integer midpoint, rounding down.
func (b Bounds) Center() (x, y int) {
	return (b.X1 + b.X2) / 2, (b.Y1 + b.Y2) / 2
}

// Width returns the horizontal extent.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// String formats the bounds in uiautomator notation.
func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", b.X1, b.Y1, b.X2, b.Y2)
}

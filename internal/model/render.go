package model

import (
	"fmt"
	"strings"
)

// DefaultRenderDepth is the depth limit used when the caller gives none.
const DefaultRenderDepth = 15

// maxDisplayText caps text and content-desc in rendered lines.
const maxDisplayText = 80

// Render produces one indented line per node in pre-order. Nodes deeper
// than maxDepth are left out together with their subtrees; a maxDepth of 0
// yields only the root line.
//
// The output is for people and agents to read. Matching always runs on the
// raw node attributes, never on these lines.
func Render(t *Tree, maxDepth int) []string {
	var lines []string
	t.Walk(func(n *Node, depth int) bool {
		if depth > maxDepth {
			return false
		}
		lines = append(lines, renderLine(n, depth))
		return true
	})
	return lines
}

func renderLine(n *Node, depth int) string {
	parts := []string{strings.Repeat("  ", depth) + "[" + n.ShortClass() + "]"}
	if n.ResourceID != "" {
		parts = append(parts, "@"+n.ShortResourceID())
	}
	if n.Text != "" {
		parts = append(parts, fmt.Sprintf("%q", truncate(n.Text, maxDisplayText)))
	}
	if n.ContentDesc != "" {
		parts = append(parts, fmt.Sprintf("desc=%q", truncate(n.ContentDesc, maxDisplayText)))
	}

	var states []string
	if n.Clickable {
		states = append(states, "clickable")
	}
	if n.Focused {
		states = append(states, "focused")
	}
	if !n.Enabled {
		states = append(states, "disabled")
	}
	if len(states) > 0 {
		parts = append(parts, "["+strings.Join(states, ",")+"]")
	}
	if n.RawBounds != "" {
		parts = append(parts, n.RawBounds)
	}
	return strings.Join(parts, " ")
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

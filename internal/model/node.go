package model

import (
	"strings"
	"time"
)

// Node is one element of a uiautomator hierarchy snapshot. Children keep
// document order.
type Node struct {
	Class       string  `yaml:"class,omitempty"        json:"class,omitempty"`
	Text        string  `yaml:"text,omitempty"         json:"text,omitempty"`
	ResourceID  string  `yaml:"resource_id,omitempty"  json:"resource_id,omitempty"`
	ContentDesc string  `yaml:"content_desc,omitempty" json:"content_desc,omitempty"`
	Bounds      *Bounds `yaml:"-"                      json:"-"`
	RawBounds   string  `yaml:"bounds,omitempty"       json:"bounds,omitempty"` // Bounds attribute exactly as captured
	Clickable   bool    `yaml:"clickable,omitempty"    json:"clickable,omitempty"`
	Enabled     bool    `yaml:"enabled"                json:"enabled"`
	Focused     bool    `yaml:"focused,omitempty"      json:"focused,omitempty"`
	Children    []*Node `yaml:"children,omitempty"     json:"children,omitempty"`
}

// ShortClass returns the last dot-separated segment of the class name,
// or "?" when the node has no class.
func (n *Node) ShortClass() string {
	if n.Class == "" {
		return "?"
	}
	if i := strings.LastIndex(n.Class, "."); i >= 0 {
		return n.Class[i+1:]
	}
	return n.Class
}

// ShortResourceID returns the part of the resource id after the last "/".
func (n *Node) ShortResourceID() string {
	if i := strings.LastIndex(n.ResourceID, "/"); i >= 0 {
		return n.ResourceID[i+1:]
	}
	return n.ResourceID
}

// Label returns the most descriptive identifying string for the node.
func (n *Node) Label() string {
	switch {
	case n.Text != "":
		return n.Text
	case n.ContentDesc != "":
		return n.ContentDesc
	case n.ResourceID != "":
		return n.ResourceID
	}
	return "?"
}

// Tree is an immutable snapshot of the hierarchy. Every query takes a
// fresh Tree; nothing is updated in place.
type Tree struct {
	Root       *Node
	CapturedAt time.Time
}

// Walk visits nodes in pre-order with their depth (root = 0). Returning
// false from fn skips the node's subtree. The walk uses an explicit stack,
// so deeply nested layouts cannot exhaust the goroutine stack.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	if t == nil || t.Root == nil {
		return
	}
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{t.Root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.depth) {
			continue
		}
		// Push in reverse so the first child is popped first.
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
}

// Count returns the number of nodes in the tree.
func (t *Tree) Count() int {
	n := 0
	t.Walk(func(*Node, int) bool {
		n++
		return true
	})
	return n
}

package model

import "strings"

// FlatNode is a node with a path breadcrumb instead of children.
type FlatNode struct {
	Class       string `yaml:"class,omitempty"        json:"class,omitempty"`
	ResourceID  string `yaml:"resource_id,omitempty"  json:"resource_id,omitempty"`
	Text        string `yaml:"text,omitempty"         json:"text,omitempty"`
	ContentDesc string `yaml:"content_desc,omitempty" json:"content_desc,omitempty"`
	Bounds      string `yaml:"bounds,omitempty"       json:"bounds,omitempty"`
	Clickable   bool   `yaml:"clickable,omitempty"    json:"clickable,omitempty"`
	Enabled     bool   `yaml:"enabled"                json:"enabled"`
	Focused     bool   `yaml:"focused,omitempty"      json:"focused,omitempty"`
	Path        string `yaml:"path"                   json:"path"`
}

// Flatten lists the tree's nodes in pre-order. Each node's path joins the
// short class names of its ancestors and itself with " > ".
func Flatten(t *Tree) []FlatNode {
	var result []FlatNode
	var path []string
	t.Walk(func(n *Node, depth int) bool {
		path = append(path[:depth], n.ShortClass())
		result = append(result, FlatNode{
			Class:       n.Class,
			ResourceID:  n.ResourceID,
			Text:        n.Text,
			ContentDesc: n.ContentDesc,
			Bounds:      n.RawBounds,
			Clickable:   n.Clickable,
			Enabled:     n.Enabled,
			Focused:     n.Focused,
			Path:        strings.Join(path, " > "),
		})
		return true
	})
	return result
}

// Describe renders the node on one line the way Render does, without
// indentation or bounds.
func (f FlatNode) Describe() string {
	n := &Node{Class: f.Class, ResourceID: f.ResourceID, Text: f.Text, ContentDesc: f.ContentDesc, Enabled: true}
	return renderLine(n, 0)
}

package model

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/mj1618/android-cli/internal/core"
)

// documentMarkers are the strings that may begin a hierarchy document.
// uiautomator prints a status line such as "UI hierchary dumped to: /dev/tty"
// before or after the XML; everything before the first marker is dropped.
var documentMarkers = []string{"<?xml", "<hierarchy"}

// ParseHierarchy parses a uiautomator dump into a Tree. The root element
// (normally <hierarchy>) becomes the root node. Parsing stops once the root
// element closes, so trailing status output is ignored.
//
// Two dialects are accepted: the dump format where every element is <node>
// with a class attribute, and the Appium page-source format where the tag
// name is the class.
func ParseHierarchy(raw string) (*Tree, error) {
	start := -1
	for _, marker := range documentMarkers {
		if i := strings.Index(raw, marker); i >= 0 && (start < 0 || i < start) {
			start = i
		}
	}
	if start < 0 {
		return nil, core.New(core.KindParse, "parse hierarchy", "no hierarchy document found in capture output")
	}

	decoder := xml.NewDecoder(strings.NewReader(raw[start:]))
	var root *Node
	var stack []*Node
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.Wrap(core.KindParse, "parse hierarchy", "malformed hierarchy document", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			node, err := nodeFromElement(t)
			if err != nil {
				return nil, err
			}
			if len(stack) == 0 {
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, core.Newf(core.KindParse, "parse hierarchy", "unexpected closing tag </%s>", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return &Tree{Root: root, CapturedAt: time.Now()}, nil
			}
		}
	}

	if root == nil {
		return nil, core.New(core.KindParse, "parse hierarchy", "hierarchy document has no elements")
	}
	return nil, core.New(core.KindParse, "parse hierarchy", "hierarchy document is truncated")
}

// nodeFromElement builds a Node from one element. Bounds are parsed here,
// not when a node is tapped: one malformed bounds attribute anywhere in the
// dump fails the whole capture with a parse error, which the acquirer
// retries. An absent or empty attribute leaves Bounds nil.
func nodeFromElement(el xml.StartElement) (*Node, error) {
	n := &Node{Enabled: true}
	if tag := el.Name.Local; tag != "node" && tag != "hierarchy" {
		n.Class = tag
	}
	for _, attr := range el.Attr {
		switch attr.Name.Local {
		case "class":
			n.Class = attr.Value
		case "text":
			n.Text = attr.Value
		case "resource-id":
			n.ResourceID = attr.Value
		case "content-desc":
			n.ContentDesc = attr.Value
		case "bounds":
			if attr.Value == "" {
				continue
			}
			b, err := ParseBounds(attr.Value)
			if err != nil {
				return nil, err
			}
			n.Bounds = &b
			n.RawBounds = attr.Value
		case "clickable":
			n.Clickable = attr.Value == "true"
		case "enabled":
			n.Enabled = attr.Value != "false"
		case "focused":
			n.Focused = attr.Value == "true"
		}
	}
	return n, nil
}

package model

import (
	"crypto/sha256"
	"fmt"
	"strconv"
)

// NodeChange is a node present in both snapshots whose mutable
// properties differ.
type NodeChange struct {
	Node    FlatNode             `yaml:"node"    json:"node"`
	Changes map[string][2]string `yaml:"changes" json:"changes"`
}

// TreeDiff is the result of comparing two snapshots by content hash.
type TreeDiff struct {
	Added          []FlatNode   `yaml:"added,omitempty"   json:"added,omitempty"`
	Removed        []FlatNode   `yaml:"removed,omitempty" json:"removed,omitempty"`
	Changed        []NodeChange `yaml:"changed,omitempty" json:"changed,omitempty"`
	UnchangedCount int          `yaml:"unchanged_count"   json:"unchanged_count"`
}

// Empty reports whether nothing was added, removed or changed.
func (d TreeDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// NodeHash computes an identity for a node from the attributes that do not
// change while a widget stays on screen: class, resource id, content
// description and tree path. Text is left out so an edited field is a
// change rather than a removal plus an addition.
func NodeHash(n FlatNode) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", n.Class, n.ResourceID, n.ContentDesc, n.Path)
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// keyed assigns each node its hash plus an occurrence counter, so
// identical siblings (list rows) pair up in order instead of colliding.
func keyed(nodes []FlatNode) ([]string, map[string]FlatNode) {
	keys := make([]string, len(nodes))
	byKey := make(map[string]FlatNode, len(nodes))
	seen := make(map[string]int, len(nodes))
	for i, n := range nodes {
		h := NodeHash(n)
		keys[i] = h + "#" + strconv.Itoa(seen[h])
		seen[h]++
		byKey[keys[i]] = n
	}
	return keys, byKey
}

// DiffTrees compares two flattened snapshots. Added and changed nodes are
// listed in curr order, removed nodes in prev order.
func DiffTrees(prev, curr []FlatNode) TreeDiff {
	prevKeys, prevByKey := keyed(prev)
	currKeys, currByKey := keyed(curr)

	var diff TreeDiff
	for i, key := range currKeys {
		n := curr[i]
		old, existed := prevByKey[key]
		if !existed {
			diff.Added = append(diff.Added, n)
			continue
		}
		if changes := diffProperties(old, n); len(changes) > 0 {
			diff.Changed = append(diff.Changed, NodeChange{Node: n, Changes: changes})
		} else {
			diff.UnchangedCount++
		}
	}
	for i, key := range prevKeys {
		if _, exists := currByKey[key]; !exists {
			diff.Removed = append(diff.Removed, prev[i])
		}
	}
	return diff
}

// diffProperties compares the mutable properties of two nodes matched by
// hash.
func diffProperties(prev, curr FlatNode) map[string][2]string {
	diffs := make(map[string][2]string)
	if prev.Text != curr.Text {
		diffs["text"] = [2]string{prev.Text, curr.Text}
	}
	if prev.Bounds != curr.Bounds {
		diffs["bounds"] = [2]string{prev.Bounds, curr.Bounds}
	}
	for name, pair := range map[string][2]bool{
		"clickable": {prev.Clickable, curr.Clickable},
		"enabled":   {prev.Enabled, curr.Enabled},
		"focused":   {prev.Focused, curr.Focused},
	} {
		if pair[0] != pair[1] {
			diffs[name] = [2]string{strconv.FormatBool(pair[0]), strconv.FormatBool(pair[1])}
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	return diffs
}

package model

import (
	"fmt"
	"strings"

	"github.com/mj1618/android-cli/internal/core"
)

// Query is a conjunction of attribute predicates. Empty fields are not
// evaluated. ResourceID matches case-sensitively; the others ignore case.
// All predicates are substring matches.
type Query struct {
	ResourceID  string `yaml:"resource_id,omitempty"  json:"resource_id,omitempty"`
	Text        string `yaml:"text,omitempty"         json:"text,omitempty"`
	ContentDesc string `yaml:"content_desc,omitempty" json:"content_desc,omitempty"`
	ClassName   string `yaml:"class_name,omitempty"   json:"class_name,omitempty"`
}

// IsEmpty reports whether no predicate is set.
func (q Query) IsEmpty() bool {
	return q.ResourceID == "" && q.Text == "" && q.ContentDesc == "" && q.ClassName == ""
}

// Validate rejects a query with no predicates.
func (q Query) Validate() error {
	if q.IsEmpty() {
		return core.New(core.KindValidation, "", "provide at least one of resource_id, text, content_desc, or class_name")
	}
	return nil
}

// String describes the query for diagnostics.
func (q Query) String() string {
	return fmt.Sprintf("resource_id=%q, text=%q, content_desc=%q, class_name=%q",
		q.ResourceID, q.Text, q.ContentDesc, q.ClassName)
}

// Matches reports whether n satisfies every set predicate.
func (q Query) Matches(n *Node) bool {
	if q.ResourceID != "" && !strings.Contains(n.ResourceID, q.ResourceID) {
		return false
	}
	if q.Text != "" && !containsFold(n.Text, q.Text) {
		return false
	}
	if q.ContentDesc != "" && !containsFold(n.ContentDesc, q.ContentDesc) {
		return false
	}
	if q.ClassName != "" && !containsFold(n.Class, q.ClassName) {
		return false
	}
	return true
}

// Find returns the first node in pre-order that matches q. It fails with a
// validation error for an empty query and a not-found error on a miss.
func (t *Tree) Find(q Query) (*Node, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	var found *Node
	t.Walk(func(n *Node, _ int) bool {
		if found != nil {
			return false
		}
		if q.Matches(n) {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil, core.Newf(core.KindNotFound, "", "element not found (%s)", q)
	}
	return found, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

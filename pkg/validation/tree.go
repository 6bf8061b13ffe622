package validation

import (
	"encoding/json"
	"sort"
	"strings"
)

// Kind classifies a validation failure.
type Kind string

const (
	KindRequired      Kind = "required"
	KindInvalidFormat Kind = "invalid_format"
	KindBusinessRule  Kind = "business_rule"
	KindTooFew        Kind = "too_few"
)

// Issue is one failure attached to a node of the error tree.
type Issue struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// ErrorTree mirrors the shape of form.State: children are keyed by section,
// field, or document index, and only invalid nodes exist. A nil tree is an
// empty tree.
type ErrorTree struct {
	issues   []Issue
	children map[string]*ErrorTree
}

// NewErrorTree returns an empty tree.
func NewErrorTree() *ErrorTree {
	return &ErrorTree{}
}

// Add records issue at the dotted path (for example "documents.1.fileName").
// An empty path targets the root. Blank messages are ignored and a message
// already present at the path is not repeated.
func (t *ErrorTree) Add(path string, issue Issue) {
	if t == nil {
		return
	}
	issue.Message = strings.TrimSpace(issue.Message)
	if issue.Message == "" {
		return
	}
	node := t
	for _, segment := range splitPath(path) {
		if node.children == nil {
			node.children = make(map[string]*ErrorTree)
		}
		child, ok := node.children[segment]
		if !ok {
			child = &ErrorTree{}
			node.children[segment] = child
		}
		node = child
	}
	for _, existing := range node.issues {
		if existing.Message == issue.Message {
			return
		}
	}
	node.issues = append(node.issues, issue)
}

// At returns the subtree rooted at path, or nil when nothing below it failed.
func (t *ErrorTree) At(path string) *ErrorTree {
	node := t
	for _, segment := range splitPath(path) {
		if node == nil {
			return nil
		}
		node = node.children[segment]
	}
	return node
}

// Issues returns the issues recorded directly at path.
func (t *ErrorTree) Issues(path string) []Issue {
	node := t.At(path)
	if node == nil || len(node.issues) == 0 {
		return nil
	}
	return append([]Issue(nil), node.issues...)
}

// Messages returns the messages recorded directly at path, in insertion order.
func (t *ErrorTree) Messages(path string) []string {
	issues := t.Issues(path)
	if len(issues) == 0 {
		return nil
	}
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Message
	}
	return out
}

// Has reports whether path has issues of its own.
func (t *ErrorTree) Has(path string) bool {
	return len(t.Issues(path)) > 0
}

// Empty reports whether the tree holds no issues at all.
func (t *ErrorTree) Empty() bool {
	if t == nil {
		return true
	}
	if len(t.issues) > 0 {
		return false
	}
	for _, child := range t.children {
		if !child.Empty() {
			return false
		}
	}
	return true
}

// Flatten returns messages keyed by dotted path.
func (t *ErrorTree) Flatten() map[string][]string {
	if t.Empty() {
		return nil
	}
	out := make(map[string][]string)
	t.walk("", func(path string, node *ErrorTree) {
		if len(node.issues) == 0 {
			return
		}
		msgs := make([]string, len(node.issues))
		for i, issue := range node.issues {
			msgs[i] = issue.Message
		}
		out[path] = msgs
	})
	return out
}

// Paths lists every path with issues, sorted.
func (t *ErrorTree) Paths() []string {
	flat := t.Flatten()
	if len(flat) == 0 {
		return nil
	}
	paths := make([]string, 0, len(flat))
	for path := range flat {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Len counts the paths that carry issues.
func (t *ErrorTree) Len() int {
	return len(t.Flatten())
}

// MarshalJSON renders the tree in the nested `_errors` shape consumed by form
// front-ends: every node carries an `_errors` array and its children by key.
func (t *ErrorTree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.jsonNode())
}

func (t *ErrorTree) jsonNode() map[string]any {
	node := map[string]any{"_errors": t.messagesOrEmpty()}
	if t == nil {
		return node
	}
	for key, child := range t.children {
		if child.Empty() {
			continue
		}
		node[key] = child.jsonNode()
	}
	return node
}

func (t *ErrorTree) messagesOrEmpty() []string {
	if t == nil || len(t.issues) == 0 {
		return []string{}
	}
	out := make([]string, len(t.issues))
	for i, issue := range t.issues {
		out[i] = issue.Message
	}
	return out
}

func (t *ErrorTree) walk(prefix string, fn func(string, *ErrorTree)) {
	if t == nil {
		return
	}
	fn(prefix, t)
	for key, child := range t.children {
		child.walk(joinPath(prefix, key), fn)
	}
}

func splitPath(path string) []string {
	trimmed := strings.Trim(strings.TrimSpace(path), ".")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ".")
	out := parts[:0]
	for _, part := range parts {
		if segment := strings.TrimSpace(part); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

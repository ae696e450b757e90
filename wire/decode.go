package wire

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Keys that always decode to a sequence, even when the response carries a
// single item or drops the collection wrapper. Callers rely on this set; add
// to it whenever a collection typed resource appears upstream.
var pluralKeys = map[string]struct{}{
	"payment_methods": {},
	"transactions":    {},
	"receivers":       {},
	"gateways":        {},
}

// PluralKeys returns the keys Decode guarantees to be sequences, sorted.
func PluralKeys() []string {
	out := make([]string, 0, len(pluralKeys))
	for k := range pluralKeys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func isPlural(key string) bool {
	_, ok := pluralKeys[key]
	return ok
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 MST",
}

// Decode turns a parsed tree into typed values. The result is a Record with a
// single key, the root element name. Keys keep their wire spelling; run
// CamelizeKeys over the result for host-side names.
//
// Elements decode to: trimmed strings, bool, int64, time.Time, nil, []any and
// *Record.
func Decode(root *Node) (any, error) {
	if root == nil {
		return nil, malformed("", "nil tree", nil)
	}
	v, err := decodeGroup(root.Name, []*Node{root}, root.Name)
	if err != nil {
		return nil, err
	}
	out := NewRecord()
	out.Set(root.Name, v)
	return out, nil
}

type group struct {
	name  string
	nodes []*Node
}

func groupChildren(children []*Node) []group {
	var groups []group
	index := map[string]int{}
	for _, c := range children {
		i, ok := index[c.Name]
		if !ok {
			i = len(groups)
			index[c.Name] = i
			groups = append(groups, group{name: c.Name})
		}
		groups[i].nodes = append(groups[i].nodes, c)
	}
	return groups
}

func decodeGroup(key string, nodes []*Node, path string) (any, error) {
	v, err := decodeSequence(nodes, path)
	if err != nil {
		return nil, err
	}
	if isPlural(key) {
		return pluralize(v), nil
	}
	return v, nil
}

// pluralize wraps a lone value. Empty elements become empty sequences.
func pluralize(v any) any {
	switch t := v.(type) {
	case []any:
		return t
	case nil:
		return []any{}
	case string:
		if t == "" {
			return []any{}
		}
	}
	return []any{v}
}

// decodeSequence collapses single item sequences and maps over longer ones.
func decodeSequence(nodes []*Node, path string) (any, error) {
	if len(nodes) == 1 {
		return decodeElement(nodes[0], path)
	}
	out := make([]any, 0, len(nodes))
	for i, n := range nodes {
		v, err := decodeElement(n, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeElement(n *Node, path string) (any, error) {
	if n == nil || n.Name == "" {
		return nil, malformed(path, "element without a name", nil)
	}
	if len(n.Attrs) == 0 && len(n.Children) == 0 {
		return strings.TrimSpace(n.Text), nil
	}

	groups := groupChildren(n.Children)
	if isCollection(n, groups) {
		g := groups[0]
		return decodeSequence(g.nodes, joinPath(path, g.name))
	}

	if typ, ok := n.Attr("type"); ok {
		if typ == "array" {
			return decodeArray(n, path)
		}
		return typecast(typ, n.Text, path)
	}
	if v, ok := n.Attr("nil"); ok && v == "true" {
		return nil, nil
	}

	extra := 0
	for _, a := range n.Attrs {
		if a.Name != "nil" {
			extra++
		}
	}
	if len(groups) == 0 && extra == 0 {
		return strings.TrimSpace(n.Text), nil
	}

	rec := NewRecord()
	for _, a := range n.Attrs {
		if a.Name == "nil" {
			continue
		}
		rec.Set(a.Name, a.Value)
	}
	for _, g := range groups {
		v, err := decodeGroup(g.name, g.nodes, joinPath(path, g.name))
		if err != nil {
			return nil, err
		}
		rec.Set(g.name, v)
	}
	if text := strings.TrimSpace(n.Text); text != "" {
		rec.Set("text", text)
	}
	return rec, nil
}

// isCollection spots wrapper elements such as <gateways><gateway/>...</gateways>:
// a single kind of child, no text, and either an array type, repeated
// children, a plural name or a name that is the child's name plus "s".
func isCollection(n *Node, groups []group) bool {
	if len(groups) != 1 || strings.TrimSpace(n.Text) != "" {
		return false
	}
	typ, hasType := n.Attr("type")
	if len(n.Attrs) > 1 || (len(n.Attrs) == 1 && typ != "array") {
		return false
	}
	child := groups[0]
	return (hasType && typ == "array") ||
		len(child.nodes) > 1 ||
		isPlural(n.Name) ||
		n.Name == child.name+"s"
}

// decodeArray handles type="array" elements that are empty or mix child names.
func decodeArray(n *Node, path string) (any, error) {
	out := make([]any, 0, len(n.Children))
	for i, c := range n.Children {
		v, err := decodeElement(c, fmt.Sprintf("%s[%d]", joinPath(path, c.Name), i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// typecast coerces element text according to its type attribute. Typed
// elements with no text decode to nil, except booleans which are false.
func typecast(typ, text, path string) (any, error) {
	text = strings.TrimSpace(text)
	switch typ {
	case "boolean":
		return text == "true", nil
	case "integer":
		if text == "" {
			return nil, nil
		}
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, malformed(path, "integer", err)
		}
		return i, nil
	case "dateTime", "datetime":
		if text == "" {
			return nil, nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return t, nil
			}
		}
		return nil, malformed(path, fmt.Sprintf("dateTime %q", text), nil)
	default:
		return text, nil
	}
}

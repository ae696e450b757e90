package wire

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Merge shallow-merges the mappings; later ones win on key collisions.
func Merge(fields ...map[string]any) map[string]any {
	out := map[string]any{}
	for _, f := range fields {
		for k, v := range f {
			out[k] = v
		}
	}
	return out
}

// Encode merges fields, converts every key to lower_snake, wraps the result in
// a root element and serializes it without attributes.
func Encode(root string, fields ...map[string]any) ([]byte, error) {
	n, err := Tree(root, fields...)
	if err != nil {
		return nil, err
	}
	return Build(n)
}

// Tree is Encode without the final serialization step.
func Tree(root string, fields ...map[string]any) (*Node, error) {
	if root == "" {
		return nil, malformed("", "empty root name", nil)
	}
	n := &Node{Name: root}
	if err := fillMap(n, Merge(fields...), root); err != nil {
		return nil, err
	}
	return n, nil
}

func fillMap(n *Node, m map[string]any, path string) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := appendValue(n, Decamelize(k), m[k], path); err != nil {
			return err
		}
	}
	return nil
}

// appendValue adds the child (or children, for slices) that represent v.
func appendValue(parent *Node, name string, v any, parentPath string) error {
	switch t := v.(type) {
	case []any:
		for _, e := range t {
			if err := appendValue(parent, name, e, parentPath); err != nil {
				return err
			}
		}
		return nil
	case []string:
		for _, e := range t {
			parent.Children = append(parent.Children, &Node{Name: name, Text: e})
		}
		return nil
	}

	child := &Node{Name: name}
	if err := fillValue(child, v, joinPath(parentPath, name)); err != nil {
		return err
	}
	parent.Children = append(parent.Children, child)
	return nil
}

func fillValue(n *Node, v any, path string) error {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		n.Text = t
	case bool:
		n.Text = strconv.FormatBool(t)
	case int:
		n.Text = strconv.Itoa(t)
	case int64:
		n.Text = strconv.FormatInt(t, 10)
	case float64:
		n.Text = strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		n.Text = t.UTC().Format(time.RFC3339)
	case fmt.Stringer:
		n.Text = t.String()
	case map[string]any:
		return fillMap(n, t, path)
	case map[string]string:
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return fillMap(n, m, path)
	case *Record:
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			if err := appendValue(n, Decamelize(k), val, path); err != nil {
				return err
			}
		}
	default:
		return fillReflect(n, v, path)
	}
	return nil
}

// fillReflect covers the remaining numeric kinds.
func fillReflect(n *Node, v any, path string) error {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n.Text = strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n.Text = strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		n.Text = strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.String:
		n.Text = rv.String()
	case reflect.Bool:
		n.Text = strconv.FormatBool(rv.Bool())
	default:
		return malformed(path, fmt.Sprintf("unsupported value of type %T", v), nil)
	}
	return nil
}

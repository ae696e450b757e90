package wire

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"regexp"
	"strings"
)

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is one element of the attributed tree produced by Parse. Children keep
// document order; Decode groups them by name.
type Node struct {
	Name     string
	Attrs    []Attr
	Text     string
	Children []*Node
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Parse reads a markup document into a tree. Namespace prefixes are dropped;
// comments and processing instructions are skipped.
func Parse(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("", "parse", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, malformed(n.Name, "second root element", nil)
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, malformed("", "text outside the root element", nil)
				}
				continue
			}
			stack[len(stack)-1].Text += string(t)
		}
	}

	if root == nil {
		return nil, malformed("", "no root element", nil)
	}
	if len(stack) != 0 {
		return nil, malformed(stack[len(stack)-1].Name, "unclosed element", nil)
	}
	return root, nil
}

var elementName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)

// Build serializes n. Attributes are never written: requests carry plain
// elements only.
func Build(n *Node) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	if err := buildNode(enc, n, ""); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, malformed("", "flush", err)
	}
	return buf.Bytes(), nil
}

func buildNode(enc *xml.Encoder, n *Node, parent string) error {
	path := joinPath(parent, n.Name)
	if !elementName.MatchString(n.Name) {
		return malformed(path, "invalid element name", nil)
	}

	start := xml.StartElement{Name: xml.Name{Local: n.Name}}
	if err := enc.EncodeToken(start); err != nil {
		return malformed(path, "encode", err)
	}
	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return malformed(path, "encode", err)
		}
	}
	for _, c := range n.Children {
		if err := buildNode(enc, c, path); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return malformed(path, "encode", err)
	}
	return nil
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

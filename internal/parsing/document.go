package parsing

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// node is a minimal element tree. Text holds the character data that comes
// before the first child element, nil when there is none.
type node struct {
	Name     xml.Name
	Attr     []xml.Attr
	Text     *string
	Children []*node
}

// attr returns the value of the unqualified attribute name.
func (n *node) attr(name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// walk visits n and its descendants in document order.
func (n *node) walk(visit func(*node)) {
	visit(n)
	for _, c := range n.Children {
		c.walk(visit)
	}
}

// parseDocument builds the element tree of a complete XML document.
// A document must have exactly one root element.
func parseDocument(raw string) (*node, error) {
	dec := xml.NewDecoder(strings.NewReader(raw))

	var root *node
	var stack []*node

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Message: "malformed XML", Cause: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{Name: t.Name, Attr: t.Copy().Attr}
			if len(stack) == 0 {
				if root != nil {
					return nil, &ParseError{Message: "document has more than one root element"}
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
					return nil, &ParseError{Message: "text outside root element"}
				}
				continue
			}
			current := stack[len(stack)-1]
			if len(current.Children) > 0 {
				// tail text of a child; not part of the element's own text
				continue
			}
			text := string(t)
			if current.Text != nil {
				text = *current.Text + text
			}
			current.Text = &text
		}
	}

	if root == nil {
		return nil, &ParseError{Message: "document has no root element"}
	}
	if len(stack) > 0 {
		return nil, &ParseError{Message: "document ends inside an element"}
	}
	return root, nil
}

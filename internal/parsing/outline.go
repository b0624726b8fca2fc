package parsing

import (
	"strings"
)

// Outline describes the shape of a votes document for troubleshooting
// upstream format changes.
type Outline struct {
	RootTag       string
	RootNamespace string
	RootAttrs     map[string]string
	ChildCount    int
	VoteCount     int
	FirstTag      string
	FirstChildren []OutlineField
}

// OutlineField is one child of the first root entry.
type OutlineField struct {
	Tag   string
	Text  string
	Attrs map[string]string
}

// Inspect parses raw and summarizes its structure.
func Inspect(raw string) (*Outline, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Message: "empty document"}
	}

	root, err := parseDocument(raw)
	if err != nil {
		return nil, err
	}

	out := &Outline{
		RootTag:       root.Name.Local,
		RootNamespace: root.Name.Space,
		RootAttrs:     attrMap(root),
		ChildCount:    len(root.Children),
	}

	root.walk(func(el *node) {
		if el.Name.Space == Namespace && el.Name.Local == VoteElement {
			out.VoteCount++
		}
	})

	if len(root.Children) > 0 {
		first := root.Children[0]
		out.FirstTag = first.Name.Local
		for _, c := range first.Children {
			f := OutlineField{Tag: c.Name.Local, Attrs: attrMap(c)}
			if c.Text != nil {
				f.Text = *c.Text
			}
			out.FirstChildren = append(out.FirstChildren, f)
		}
	}

	return out, nil
}

func attrMap(n *node) map[string]string {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		attrs[a.Name.Local] = a.Value
	}
	return attrs
}

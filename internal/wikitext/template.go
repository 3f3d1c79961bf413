package wikitext

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Template is a single {{Title|param=value}} invocation flattened out of a
// MediaWiki parse tree.
type Template struct {
	Title string `json:"title"`
	// Parameters holds the trimmed text content of each value.
	Parameters map[string]string `json:"parameters"`
	// Markup holds the trimmed raw inner XML of each value, so nested
	// templates can be re-extracted with ExtractFragment.
	Markup    map[string]string `json:"-"`
	LineStart *int              `json:"lineStart,omitempty"`
}

// Param returns the text value of a parameter, or "" when absent.
func (t Template) Param(name string) string {
	return t.Parameters[name]
}

// Raw returns the raw markup of a parameter, or "" when absent.
func (t Template) Raw(name string) string {
	return t.Markup[name]
}

// IntParam parses the leading integer of a parameter value.
func (t Template) IntParam(name string) (int, bool) {
	return leadingInt(t.Parameters[name])
}

// BoolParam interprets yes/no style flags.
func (t Template) BoolParam(name string) (bool, bool) {
	switch strings.ToLower(t.Parameters[name]) {
	case "yes", "true", "1":
		return true, true
	case "no", "false", "0":
		return false, true
	}
	return false, false
}

// ParseTemplates decodes a parse-tree document and returns every <template>
// node in document order, regardless of nesting depth.
func ParseTemplates(r io.Reader) ([]Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "reading parse tree")
	}

	root, err := decodeTree(data)
	if err != nil {
		return nil, eris.Wrap(err, "decoding parse tree")
	}

	templates := make([]Template, 0)
	root.walk(func(n *node) {
		if n.name == "template" {
			templates = append(templates, buildTemplate(n, data))
		}
	})

	return templates, nil
}

// ExtractTemplates flattens a parse-tree document. Malformed XML yields an
// empty result.
func ExtractTemplates(doc string) []Template {
	templates, err := ParseTemplates(strings.NewReader(doc))
	if err != nil {
		return []Template{}
	}
	return templates
}

// ExtractFragment flattens a partial parse tree, such as the raw markup of a
// single parameter value.
func ExtractFragment(fragment string) []Template {
	return ExtractTemplates("<root>" + fragment + "</root>")
}

// FindTemplate returns the first template with exactly the given title.
func FindTemplate(templates []Template, title string) (Template, bool) {
	for _, t := range templates {
		if t.Title == title {
			return t, true
		}
	}
	return Template{}, false
}

// FindTemplates returns every template with exactly the given title.
func FindTemplates(templates []Template, title string) []Template {
	matches := make([]Template, 0)
	for _, t := range templates {
		if t.Title == title {
			matches = append(matches, t)
		}
	}
	return matches
}

func buildTemplate(n *node, data []byte) Template {
	tpl := Template{
		Parameters: make(map[string]string),
		Markup:     make(map[string]string),
	}

	if title := n.child("title"); title != nil {
		tpl.Title = strings.TrimSpace(title.textContent())
	}

	if raw, ok := n.attr("lineStart"); ok {
		if line, ok := leadingInt(raw); ok {
			tpl.LineStart = &line
		}
	}

	for _, part := range n.children {
		if part.name != "part" {
			continue
		}

		name := partName(part)
		if name == "" {
			continue
		}

		value := part.child("value")
		if value == nil {
			tpl.Parameters[name] = ""
			tpl.Markup[name] = ""
			continue
		}

		tpl.Parameters[name] = strings.TrimSpace(value.textContent())
		tpl.Markup[name] = strings.TrimSpace(string(data[value.start:value.end]))
	}

	return tpl
}

// partName resolves the explicit name of a part, falling back to its
// positional index.
func partName(part *node) string {
	nameEl := part.child("name")
	if nameEl == nil {
		return ""
	}
	if name := strings.TrimSpace(nameEl.textContent()); name != "" {
		return name
	}
	index, _ := nameEl.attr("index")
	return index
}

// node is a minimal DOM element or text run. Element nodes record the byte
// range of their inner markup.
type node struct {
	name     string
	text     string
	attrs    []xml.Attr
	children []*node
	start    int64
	end      int64
}

func decodeTree(data []byte) (*node, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Entity = xml.HTMLEntity

	root := &node{}
	stack := []*node{root}

	for {
		offset := d.InputOffset()
		tok, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: t.Attr, start: d.InputOffset()}
			n.end = n.start
			top.children = append(top.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			top.end = offset
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.children = append(top.children, &node{text: string(t)})
		}
	}

	if len(stack) != 1 {
		return nil, eris.New("unclosed element in parse tree")
	}

	return root, nil
}

func (n *node) walk(fn func(*node)) {
	for _, c := range n.children {
		if c.name == "" {
			continue
		}
		fn(c)
		c.walk(fn)
	}
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) textContent() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *node) writeText(b *strings.Builder) {
	for _, c := range n.children {
		if c.name == "" {
			b.WriteString(c.text)
			continue
		}
		c.writeText(b)
	}
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Source turns a parse-tree fragment back into wikitext. Comments and
// <ignore> regions are dropped.
func Source(fragment string) string {
	root, err := decodeTree([]byte("<root>" + fragment + "</root>"))
	if err != nil {
		return ""
	}

	var b strings.Builder
	root.writeSource(&b)
	return b.String()
}

func (n *node) writeSource(b *strings.Builder) {
	for _, c := range n.children {
		switch c.name {
		case "":
			b.WriteString(c.text)
		case "comment", "ignore":
		case "template", "tplarg":
			opening, closing := "{{", "}}"
			if c.name == "tplarg" {
				opening, closing = "{{{", "}}}"
			}
			b.WriteString(opening)
			for _, part := range c.children {
				switch part.name {
				case "title":
					part.writeSource(b)
				case "part":
					b.WriteString("|")
					part.writeSource(b)
				}
			}
			b.WriteString(closing)
		case "ext":
			b.WriteString("<")
			if name := c.child("name"); name != nil {
				b.WriteString(name.textContent())
			}
			if attr := c.child("attr"); attr != nil {
				b.WriteString(attr.textContent())
			}
			b.WriteString(">")
			if inner := c.child("inner"); inner != nil {
				b.WriteString(inner.textContent())
			}
			if end := c.child("close"); end != nil {
				b.WriteString(end.textContent())
			}
		default:
			c.writeSource(b)
		}
	}
}

package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// minWrapWidth keeps very narrow terminals readable.
const minWrapWidth = 40

// RenderMarkdown renders a rule documentation page for the terminal.
// Paragraphs are wrapped to width columns, code blocks are indented, and
// headings, code and links are styled. Inline HTML is dropped.
func (s *Styles) RenderMarkdown(source []byte, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	width = max(width, minWrapWidth)

	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	r := &markdownRenderer{styles: s, src: source, width: width}
	r.blocks(doc, "")

	return strings.TrimRight(r.out.String(), "\n") + "\n"
}

type markdownRenderer struct {
	styles *Styles
	src    []byte
	width  int
	out    strings.Builder
}

func (r *markdownRenderer) line(s string) {
	r.out.WriteString(strings.TrimRight(s, " "))
	r.out.WriteByte('\n')
}

// blank ends a block with a single empty line.
func (r *markdownRenderer) blank() {
	cur := r.out.String()
	if cur == "" || strings.HasSuffix(cur, "\n\n") {
		return
	}
	r.out.WriteByte('\n')
}

func (r *markdownRenderer) blocks(parent ast.Node, indent string) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		r.block(n, indent)
	}
}

func (r *markdownRenderer) block(n ast.Node, indent string) {
	switch node := n.(type) {
	case *ast.Heading:
		title := r.inline(node)
		r.line(indent + r.styles.Heading.Render(title))
		if node.Level == 1 {
			r.line(indent + r.styles.Dim.Render(strings.Repeat("─", lipgloss.Width(title))))
		}
		r.blank()

	case *ast.Paragraph:
		r.wrap(r.inline(node), indent, indent)
		r.blank()

	case *ast.TextBlock:
		r.wrap(r.inline(node), indent, indent)

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := n.Lines()
		for i := range lines.Len() {
			seg := lines.At(i)
			code := strings.TrimRight(string(seg.Value(r.src)), "\r\n")
			r.line(indent + "    " + r.styles.Code.Render(code))
		}
		r.blank()

	case *ast.List:
		num := node.Start
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "• "
			if node.IsOrdered() {
				marker = fmt.Sprintf("%d. ", num)
				num++
			}
			r.listItem(item, indent, marker)
		}
		r.blank()

	case *ast.Blockquote:
		r.blocks(node, indent+r.styles.Dim.Render("│")+" ")

	case *ast.ThematicBreak:
		r.line(indent + r.styles.Dim.Render(strings.Repeat("─", minWrapWidth)))
		r.blank()

	case *ast.HTMLBlock:
		// Dropped.

	default:
		r.blocks(n, indent)
	}
}

func (r *markdownRenderer) listItem(item ast.Node, indent, marker string) {
	hang := indent + strings.Repeat(" ", lipgloss.Width(marker))
	first := true

	for c := item.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			lead := hang
			if first {
				lead = indent + marker
			}
			r.wrap(r.inline(c), lead, hang)
		default:
			if first {
				r.line(indent + marker)
			}
			r.block(c, hang)
		}
		first = false
	}
}

// wrap writes text word-wrapped to the renderer width. The first output
// line starts with first and later lines with rest. Hard breaks in text
// start a new line.
func (r *markdownRenderer) wrap(content, first, rest string) {
	prefix := first
	for _, para := range strings.Split(content, "\n") {
		var cur strings.Builder
		cur.WriteString(prefix)
		curWidth := lipgloss.Width(prefix)
		empty := true

		for _, word := range strings.Fields(para) {
			w := lipgloss.Width(word)
			if !empty && curWidth+1+w > r.width {
				r.line(cur.String())
				cur.Reset()
				cur.WriteString(rest)
				curWidth = lipgloss.Width(rest)
				empty = true
			}
			if !empty {
				cur.WriteByte(' ')
				curWidth++
			}
			cur.WriteString(word)
			curWidth += w
			empty = false
		}

		r.line(cur.String())
		prefix = rest
	}
}

// inline flattens the inline children of n into styled text.
func (r *markdownRenderer) inline(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(r.src))
			switch {
			case node.HardLineBreak():
				b.WriteByte('\n')
			case node.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.CodeSpan:
			b.WriteString(r.styles.Code.Render(r.raw(node)))
		case *ast.Emphasis:
			inner := r.inline(node)
			if node.Level >= 2 {
				inner = r.styles.Bold.Render(inner)
			}
			b.WriteString(inner)
		case *ast.Link:
			label := r.inline(node)
			dest := string(node.Destination)
			b.WriteString(label)
			if dest != "" && dest != label {
				b.WriteString(" (" + r.styles.Link.Render(dest) + ")")
			}
		case *ast.AutoLink:
			b.WriteString(r.styles.Link.Render(string(node.URL(r.src))))
		case *ast.RawHTML:
			// Dropped.
		default:
			b.WriteString(r.inline(c))
		}
	}
	return b.String()
}

// raw returns the unstyled text below n.
func (r *markdownRenderer) raw(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(r.src))
		case *ast.String:
			b.Write(node.Value)
		default:
			b.WriteString(r.raw(c))
		}
	}
	return b.String()
}

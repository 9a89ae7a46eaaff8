package generate

import (
	"bytes"
	"sort"
	"strings"

	autodoc "github.com/autodoc-ai/autodoc"
	"github.com/autodoc-ai/autodoc/parse"
)

// commentPair binds a declaration to its normalized comment block.
type commentPair struct {
	decl    autodoc.Declaration
	comment string
	style   parse.CommentStyle
}

// extractFenced returns the content of fenced code blocks in a model
// message, or "" when the message has no fences.
func extractFenced(msg string) string {
	var sb strings.Builder
	inFence := false
	found := false
	for _, line := range strings.Split(msg, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			found = true
			continue
		}
		if inFence {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	if !found {
		return ""
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatComment normalizes raw model output into an insertable comment
// block in the target style, without indentation.
func formatComment(raw string, style parse.CommentStyle) string {
	text := raw
	if fenced := extractFenced(raw); fenced != "" {
		text = fenced
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	switch style {
	case parse.StyleDocstring:
		return formatDocstring(text)
	case parse.StyleBlock:
		return formatBlockComment(text)
	default:
		return formatHashComment(text)
	}
}

// formatDocstring keeps an existing triple-quoted body and wraps bare text.
func formatDocstring(text string) string {
	for _, q := range []string{`"""`, "'''"} {
		first := strings.Index(text, q)
		if first < 0 {
			continue
		}
		last := strings.LastIndex(text, q)
		if last <= first {
			continue
		}
		inner := strings.Trim(text[first+len(q):last], "\n")
		return `"""` + "\n" + inner + "\n" + `"""`
	}
	return `"""` + "\n" + text + "\n" + `"""`
}

// formatBlockComment keeps an existing /** */ block and wraps bare text.
func formatBlockComment(text string) string {
	if start := strings.Index(text, "/**"); start >= 0 {
		if end := strings.Index(text[start:], "*/"); end >= 0 {
			return text[start : start+end+2]
		}
	}
	var sb strings.Builder
	sb.WriteString("/**\n")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		sb.WriteString(" *")
		if line != "" {
			sb.WriteString(" ")
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
	sb.WriteString(" */")
	return sb.String()
}

// formatHashComment ensures every line carries a "#" marker.
func formatHashComment(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			out[i] = strings.TrimSpace(line)
		} else if strings.TrimSpace(line) == "" {
			out[i] = "#"
		} else {
			out[i] = "# " + strings.TrimSpace(line)
		}
	}
	return strings.Join(out, "\n")
}

// insertComments splices comment blocks into src. Pairs are applied in
// descending start order so earlier byte offsets stay valid.
func insertComments(src []byte, pairs []commentPair) []byte {
	ordered := make([]commentPair, len(pairs))
	copy(ordered, pairs)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].decl.StartByte > ordered[j].decl.StartByte
	})

	out := src
	for _, p := range ordered {
		if p.comment == "" {
			continue
		}
		out = insertOne(out, p)
	}
	return out
}

func insertOne(src []byte, p commentPair) []byte {
	d := p.decl
	if p.style == parse.StyleDocstring {
		if pos, ok := docstringInsertPos(src, d); ok {
			block := indentBlock(p.comment, d.Indent+4) + "\n"
			return splice(src, pos, block)
		}
		// Signature and body share one line; fall back to a comment above.
		p.comment = formatHashComment(strings.Trim(p.comment, `"'`))
	}
	pos := lineStart(src, d.StartByte)
	block := indentBlock(p.comment, d.Indent) + "\n"
	return splice(src, pos, block)
}

// docstringInsertPos finds the byte position just after the signature:
// the first line whose text, with any trailing "#" comment stripped, ends
// with ":" while no brackets are open. Bracket depth keeps multi-line
// signatures together and stops body headers (if/for/with) from being
// mistaken for the signature; reports !ok for one-line definitions with
// an inline body.
func docstringInsertPos(src []byte, d autodoc.Declaration) (int, bool) {
	pos := d.StartByte
	depth := 0
	for pos < d.EndByte {
		nl := bytes.IndexByte(src[pos:d.EndByte], '\n')
		if nl < 0 {
			return 0, false
		}
		line := src[pos : pos+nl]
		if i := bytes.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = bytes.TrimRight(line, " \t\r")
		for _, b := range line {
			switch b {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				depth--
			}
		}
		if depth == 0 {
			if bytes.HasSuffix(line, []byte(":")) {
				return pos + nl + 1, true
			}
			// A closed signature line not ending in ":" means the body
			// has started; never anchor inside it.
			return 0, false
		}
		pos += nl + 1
	}
	return 0, false
}

func lineStart(src []byte, offset int) int {
	if nl := bytes.LastIndexByte(src[:offset], '\n'); nl >= 0 {
		return nl + 1
	}
	return 0
}

func indentBlock(block string, indent int) string {
	pad := strings.Repeat(" ", indent)
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		if line == "" {
			continue
		}
		lines[i] = pad + line
	}
	return strings.Join(lines, "\n")
}

func splice(src []byte, pos int, insert string) []byte {
	out := make([]byte, 0, len(src)+len(insert))
	out = append(out, src[:pos]...)
	out = append(out, insert...)
	out = append(out, src[pos:]...)
	return out
}

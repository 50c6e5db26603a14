package artifact

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind selects the formatting rules for a code fragment.
type Kind int

const (
	KindHTML Kind = iota
	KindCSS
	KindJS
)

// Format normalises whitespace and indentation of a code fragment by kind,
// using two-space indents. Formatting already formatted output is a no-op.
// An error means the fragment could not be safely reflowed; callers keep
// the original text.
func Format(kind Kind, src string) (string, error) {
	switch kind {
	case KindHTML:
		return formatHTML(src)
	case KindCSS:
		return formatCSS(src)
	case KindJS:
		return formatJS(src)
	}
	return "", fmt.Errorf("format: unknown kind %d", kind)
}

// ── CSS ───────────────────────────────────────────────────────────────────────

// formatCSS rewrites a stylesheet as one rule per block with indented
// declarations. At-rules with nested blocks are reflowed recursively.
func formatCSS(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	blocks, err := cssRules(src, 0)
	if err != nil {
		return "", err
	}
	return strings.Join(blocks, "\n\n"), nil
}

func cssRules(src string, depth int) ([]string, error) {
	indent := strings.Repeat("  ", depth)
	var blocks []string
	i := 0
	for i < len(src) {
		for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
			i++
		}
		if i >= len(src) {
			break
		}
		open := strings.IndexByte(src[i:], '{')
		if open < 0 {
			return nil, fmt.Errorf("css: stray content %q", strings.TrimSpace(src[i:]))
		}
		sel := strings.Join(strings.Fields(src[i:i+open]), " ")
		if sel == "" {
			return nil, errors.New("css: empty selector")
		}

		braces := 1
		j := i + open + 1
		for j < len(src) && braces > 0 {
			switch src[j] {
			case '{':
				braces++
			case '}':
				braces--
			}
			j++
		}
		if braces != 0 {
			return nil, errors.New("css: unbalanced braces")
		}

		block, err := cssBlock(indent, sel, src[i+open+1:j-1], depth)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
		i = j
	}
	return blocks, nil
}

func cssBlock(indent, sel, body string, depth int) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return indent + sel + " {}", nil
	}

	var inner []string
	if strings.ContainsRune(body, '{') {
		nested, err := cssRules(body, depth+1)
		if err != nil {
			return "", err
		}
		inner = nested
	} else {
		for _, decl := range strings.Split(body, ";") {
			decl = strings.TrimSpace(decl)
			if decl == "" {
				continue
			}
			prop, val, ok := strings.Cut(decl, ":")
			if !ok {
				return "", fmt.Errorf("css: bad declaration %q", decl)
			}
			inner = append(inner,
				indent+"  "+strings.TrimSpace(prop)+": "+strings.Join(strings.Fields(val), " ")+";")
		}
	}
	return indent + sel + " {\n" + strings.Join(inner, "\n") + "\n" + indent + "}", nil
}

// ── HTML ──────────────────────────────────────────────────────────────────────

var tagPattern = regexp.MustCompile(`<[^>]*>`)

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// formatHTML re-indents markup line by line from tag depth. It never splits
// or joins lines, so a single-line fragment only loses outer whitespace.
func formatHTML(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}

	depth := 0
	var out []string
	for _, line := range strings.Split(src, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			out = append(out, "")
			continue
		}
		level := depth
		if strings.HasPrefix(t, "</") {
			level--
		}
		if level < 0 {
			return "", errors.New("html: unbalanced tags")
		}
		out = append(out, strings.Repeat("  ", level)+t)
		depth += tagBalance(t)
		if depth < 0 {
			return "", errors.New("html: unbalanced tags")
		}
	}
	if depth != 0 {
		return "", errors.New("html: unbalanced tags")
	}
	return strings.Join(out, "\n"), nil
}

func tagBalance(line string) int {
	net := 0
	for _, m := range tagPattern.FindAllString(line, -1) {
		inner := strings.TrimSpace(strings.Trim(m, "<>"))
		if inner == "" {
			continue
		}
		switch {
		case strings.HasPrefix(inner, "/"):
			net--
		case strings.HasPrefix(inner, "!"), strings.HasPrefix(inner, "?"), strings.HasSuffix(inner, "/"):
			// doctype, comment, processing instruction, self-closing
		default:
			name := strings.ToLower(strings.Fields(inner)[0])
			if !voidTags[name] {
				net++
			}
		}
	}
	return net
}

// ── JavaScript ────────────────────────────────────────────────────────────────

// formatJS normalises leading indentation from bracket depth, line by line.
// Statements are never reflowed, and lines inside template literals or block
// comments are kept verbatim.
func formatJS(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}

	depth := 0
	var sc jsScanner
	var out []string
	for _, line := range strings.Split(src, "\n") {
		if sc.inBlockComment || sc.inTemplate {
			out = append(out, line)
			depth += sc.scan(line)
			if depth < 0 {
				return "", errors.New("js: unbalanced brackets")
			}
			continue
		}
		t := strings.TrimSpace(line)
		if t == "" {
			out = append(out, "")
			continue
		}
		level := depth
		switch t[0] {
		case '}', ')', ']':
			level--
		}
		if level < 0 {
			return "", errors.New("js: unbalanced brackets")
		}
		out = append(out, strings.Repeat("  ", level)+t)
		depth += sc.scan(t)
		if depth < 0 {
			return "", errors.New("js: unbalanced brackets")
		}
	}
	if depth != 0 {
		return "", errors.New("js: unbalanced brackets")
	}
	return strings.Join(out, "\n"), nil
}

// jsScanner counts bracket depth while skipping string, template and comment
// contents. Template and block-comment state carries across lines.
type jsScanner struct {
	inBlockComment bool
	inTemplate     bool
}

func (s *jsScanner) scan(line string) int {
	net := 0
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case s.inBlockComment:
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				s.inBlockComment = false
				i++
			}
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case s.inTemplate:
			if c == '\\' {
				i++
			} else if c == '`' {
				s.inTemplate = false
			}
		case c == '/':
			if i+1 < len(line) && line[i+1] == '/' {
				return net
			}
			if i+1 < len(line) && line[i+1] == '*' {
				s.inBlockComment = true
				i++
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '`':
			s.inTemplate = true
		case c == '{' || c == '(' || c == '[':
			net++
		case c == '}' || c == ')' || c == ']':
			net--
		}
	}
	return net
}

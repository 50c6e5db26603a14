package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// MalformedResponseError means the model text could not be read as the
// expected three-field JSON object. Raw carries the full provider text for
// auditing.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Parse extracts the three code fields from raw model text.
//
// Extraction is two-stage: first strip any non-JSON wrapping (markdown
// fences, surrounding prose), then parse the remaining object. A field the
// model left out or emptied falls back to the caller's default; the parser
// never fabricates code. Each extracted field is then formatted by kind,
// and a fragment the formatter cannot handle passes through unchanged.
func Parse(raw string, defaults Artifact) (Artifact, error) {
	payload := extractObject(raw)
	if payload == "" {
		return Artifact{}, &MalformedResponseError{Raw: raw, Err: errors.New("no JSON object found")}
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return Artifact{}, &MalformedResponseError{Raw: raw, Err: err}
	}

	a := Artifact{
		HTML: fieldOr(obj, defaults.HTML, "htmlcode", "html"),
		CSS:  fieldOr(obj, defaults.CSS, "csscode", "css"),
		JS:   fieldOr(obj, defaults.JS, "javascriptcode", "jscode", "javascript", "js"),
	}
	a.HTML = formatOr(KindHTML, a.HTML)
	a.CSS = formatOr(KindCSS, a.CSS)
	a.JS = formatOr(KindJS, a.JS)
	return a, nil
}

// fieldOr returns the first non-empty string value whose normalised key
// matches one of the wanted names, falling back to def.
func fieldOr(obj map[string]any, def string, want ...string) string {
	for k, v := range obj {
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		nk := normaliseKey(k)
		for _, w := range want {
			if nk == w {
				return s
			}
		}
	}
	return def
}

func normaliseKey(k string) string {
	k = strings.ToLower(k)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, k)
}

func formatOr(kind Kind, src string) string {
	out, err := Format(kind, src)
	if err != nil {
		log.Debug().Err(err).Msg("formatter fell back to raw fragment")
		return src
	}
	return out
}

// extractObject trims markdown fences and surrounding prose, returning the
// outermost {...} span, or "" when the text holds no object at all.
func extractObject(raw string) string {
	s := stripFences(raw)
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func stripFences(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) > 0 && (strings.HasPrefix(lines[0], "```") || strings.HasPrefix(lines[0], "~~~")) {
		lines = lines[1:]
	}
	if len(lines) > 0 && (strings.HasPrefix(lines[len(lines)-1], "```") || strings.HasPrefix(lines[len(lines)-1], "~~~")) {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

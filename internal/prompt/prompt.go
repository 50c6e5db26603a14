// Package prompt renders the fixed prompt templates sent to the model
// providers. Rendering is pure: a template plus variables in, the exact
// provider string out.
package prompt

import (
	"fmt"
	"regexp"
)

// Template names.
const (
	Generate = "generate"
	Modify   = "modify"
	Classify = "classify"
)

// TemplateError reports an unknown template or a placeholder with no
// matching variable.
type TemplateError struct {
	Template string
	Variable string
}

func (e *TemplateError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("prompt: template %q: missing variable %q", e.Template, e.Variable)
	}
	return fmt.Sprintf("prompt: unknown template %q", e.Template)
}

// The model-facing field names ("HTML Code" etc.) are load-bearing: the
// parser matches against them, so the generation and modification templates
// must spell out the exact JSON shape.
var templates = map[string]string{
	Generate: `This is the user prompt: "{{userPrompt}}"
You are a coding engine. Generate fully executable HTML, CSS, and JavaScript code.
Respond with ONLY a valid JSON object in exactly this shape, with no prose and no markdown fences:
{
  "HTML Code": "<html code>",
  "CSS Code": "<css code>",
  "JavaScript Code": "<javascript code>"
}`,

	Modify: `Modify the following code based on the user request:
- HTML: {{htmlCode}}
- CSS: {{cssCode}}
- JavaScript: {{jsCode}}

User Request: "{{message}}"

Respond with ONLY a valid JSON object in exactly this shape, with no prose and no markdown fences:
{
  "HTML Code": "<updated html>",
  "CSS Code": "<updated css>",
  "JavaScript Code": "<updated javascript>"
}`,

	Classify: `User Message: "{{message}}"

Carefully analyze this request. Does it require:
- "CODE_UPDATE" if the user asks to modify or generate HTML, CSS, or JavaScript.
- "UX_SUGGESTION" if the user asks for UI/UX improvement ideas (e.g. "How can I improve my design?").
- "NORMAL_CHAT" if it is a general conversation.

Your response must be exactly one of these three words: "CODE_UPDATE", "UX_SUGGESTION", or "NORMAL_CHAT".`,
}

var placeholder = regexp.MustCompile(`\{\{([a-zA-Z]+)\}\}`)

// Render substitutes {{name}} markers in the named template. Substituted
// values are never rescanned, so user-supplied code containing braces cannot
// inject further expansion.
func Render(name string, vars map[string]string) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", &TemplateError{Template: name}
	}

	var missing string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := m[2 : len(m)-2]
		v, ok := vars[key]
		if !ok {
			if missing == "" {
				missing = key
			}
			return m
		}
		return v
	})
	if missing != "" {
		return "", &TemplateError{Template: name, Variable: missing}
	}
	return out, nil
}

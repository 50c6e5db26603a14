// Package intent labels an incoming chat message before dispatch.
package intent

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/llm"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/prompt"
)

// Label is one of the three request categories. The set is closed.
type Label string

const (
	CodeUpdate   Label = "CODE_UPDATE"
	UXSuggestion Label = "UX_SUGGESTION"
	NormalChat   Label = "NORMAL_CHAT"
)

// classifyOptions favour determinism over creativity: this is a routing
// decision, not content generation.
var classifyOptions = llm.Options{MaxTokens: 5, Temperature: 0.3}

// Classifier asks the structured provider to label a message.
type Classifier struct {
	provider llm.Provider
}

func NewClassifier(p llm.Provider) *Classifier {
	return &Classifier{provider: p}
}

// Classify returns the label for message, or an error when the provider
// call itself fails. The provider's text is untrusted: it is normalised and
// validated against the closed set rather than taken at face value.
func (c *Classifier) Classify(ctx context.Context, message string) (Label, error) {
	p, err := prompt.Render(prompt.Classify, map[string]string{"message": message})
	if err != nil {
		return NormalChat, err
	}
	raw, err := c.provider.Complete(ctx, p, classifyOptions)
	if err != nil {
		return NormalChat, err
	}
	return Normalize(raw), nil
}

// Normalize maps raw model text onto the label set. Anything that is not an
// exact member after trimming becomes NormalChat: an unrecognised
// instruction must never trigger a code edit.
func Normalize(raw string) Label {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.Trim(s, "\"'.` ")
	switch Label(s) {
	case CodeUpdate, UXSuggestion, NormalChat:
		return Label(s)
	}
	log.Warn().Str("reply", raw).Msg("unrecognised classification, treating as chat")
	return NormalChat
}

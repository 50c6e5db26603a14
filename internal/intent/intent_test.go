package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/llm"
)

type fakeProvider struct {
	reply     string
	err       error
	gotPrompt string
	gotOpts   llm.Options
}

func (f *fakeProvider) Complete(_ context.Context, prompt string, opts llm.Options) (string, error) {
	f.gotPrompt = prompt
	f.gotOpts = opts
	return f.reply, f.err
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want Label
	}{
		{"CODE_UPDATE", CodeUpdate},
		{"  code_update \n", CodeUpdate},
		{`"UX_SUGGESTION"`, UXSuggestion},
		{"NORMAL_CHAT.", NormalChat},
		{"normal_chat", NormalChat},
		// Anything outside the closed set is conservative chat, never a
		// code edit.
		{"CODE UPDATE", NormalChat},
		{"I think this is a CODE_UPDATE request", NormalChat},
		{"", NormalChat},
		{"MAYBE", NormalChat},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Normalize(tc.raw), "raw=%q", tc.raw)
	}
}

func TestClassifyEmbedsMessageAndTunesSampling(t *testing.T) {
	p := &fakeProvider{reply: "UX_SUGGESTION"}
	c := NewClassifier(p)

	label, err := c.Classify(context.Background(), "how can I improve my design?")
	require.NoError(t, err)
	require.Equal(t, UXSuggestion, label)
	require.Contains(t, p.gotPrompt, `User Message: "how can I improve my design?"`)

	// Routing decisions run with a short output budget and low temperature.
	require.Equal(t, 5, p.gotOpts.MaxTokens)
	require.InDelta(t, 0.3, p.gotOpts.Temperature, 1e-9)
}

func TestClassifyProviderError(t *testing.T) {
	p := &fakeProvider{err: errors.New("boom")}
	c := NewClassifier(p)

	_, err := c.Classify(context.Background(), "hello")
	require.Error(t, err)
}

package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/artifact"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/llm"
)

// fakeProvider answers classification and pipeline calls from a script.
// The first call is always the classifier's, so replies[0] is the label.
type fakeProvider struct {
	replies []string
	errs    []error
	prompts []string
	opts    []llm.Options
}

func (f *fakeProvider) Complete(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	i := len(f.prompts)
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var out string
	if i < len(f.replies) {
		out = f.replies[i]
	}
	return out, err
}

type recordingEmitter struct {
	keys []string
}

func (r *recordingEmitter) Emit(ctx context.Context, routingKey string, payload any) {
	r.keys = append(r.keys, routingKey)
}

const generated = `{"HTML Code":"<h1>Hi</h1>","CSS Code":"h1{color:red}","JavaScript Code":""}`

func TestGenerateCode(t *testing.T) {
	structured := &fakeProvider{replies: []string{generated}}
	o := New(structured, &fakeProvider{})

	res, err := o.GenerateCode(context.Background(), "make a heading")
	require.NoError(t, err)
	require.Equal(t, "<h1>Hi</h1>", res.Artifact.HTML)
	require.Equal(t, "h1 {\n  color: red;\n}", res.Artifact.CSS)
	require.Empty(t, res.Artifact.JS)
	require.Equal(t, generated, res.Raw)

	require.Contains(t, structured.prompts[0], "make a heading")
	require.Equal(t, llm.Options{MaxTokens: 1500, Temperature: 0.7}, structured.opts[0])
}

func TestGenerateCodeProviderFailure(t *testing.T) {
	transport := &llm.TransportError{Provider: "openai", Status: 500, Err: errors.New("boom")}
	o := New(&fakeProvider{errs: []error{transport}}, &fakeProvider{})

	_, err := o.GenerateCode(context.Background(), "anything")
	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	require.ErrorIs(t, err, transport)
}

func TestGenerateCodeMalformedReply(t *testing.T) {
	o := New(&fakeProvider{replies: []string{"no json here at all"}}, &fakeProvider{})

	_, err := o.GenerateCode(context.Background(), "anything")
	var ge *GenerationError
	require.True(t, errors.As(err, &ge))
	var me *artifact.MalformedResponseError
	require.True(t, errors.As(err, &me))
}

func TestChatCodeUpdate(t *testing.T) {
	structured := &fakeProvider{replies: []string{
		"CODE_UPDATE",
		`{"HTML Code":"<p>new</p>","CSS Code":"","JavaScript Code":"let x = 1;"}`,
	}}
	emitter := &recordingEmitter{}
	o := New(structured, &fakeProvider{}, WithEmitter(emitter))

	prior := artifact.Artifact{HTML: "<p>old</p>", CSS: "p {\n  margin: 0;\n}", JS: "old()"}
	res := o.Chat(context.Background(), "change the text", prior)

	require.Nil(t, res.Text)
	require.NotNil(t, res.Code)
	require.Equal(t, "<p>new</p>", res.Code.Artifact.HTML)
	// Fields the model left empty keep their prior value.
	require.Equal(t, prior.CSS, res.Code.Artifact.CSS)
	require.Equal(t, "let x = 1;", res.Code.Artifact.JS)

	require.Equal(t, llm.Options{MaxTokens: 5, Temperature: 0.3}, structured.opts[0])
	require.Equal(t, llm.Options{MaxTokens: 1000, Temperature: 0.7}, structured.opts[1])
	require.Contains(t, structured.prompts[1], "<p>old</p>")
	require.Contains(t, structured.prompts[1], "change the text")

	require.Contains(t, emitter.keys, "code.modified")
}

func TestChatFailedModification(t *testing.T) {
	structured := &fakeProvider{replies: []string{"CODE_UPDATE", "not json"}}
	o := New(structured, &fakeProvider{})

	res := o.Chat(context.Background(), "break it", artifact.Artifact{HTML: "<p>safe</p>"})

	require.Nil(t, res.Code)
	require.NotNil(t, res.Text)
	require.Equal(t, "Error processing code modification request.", res.Text.Reply)
	require.False(t, res.Text.IsChat)
}

func TestChatModificationTransportFailure(t *testing.T) {
	structured := &fakeProvider{
		replies: []string{"CODE_UPDATE", ""},
		errs:    []error{nil, &llm.TransportError{Provider: "openai", Err: errors.New("down")}},
	}
	o := New(structured, &fakeProvider{})

	res := o.Chat(context.Background(), "update", artifact.Artifact{})
	require.NotNil(t, res.Text)
	require.Equal(t, "Error processing code modification request.", res.Text.Reply)
	require.False(t, res.Text.IsChat)
}

func TestChatConversational(t *testing.T) {
	conversational := &fakeProvider{replies: []string{"A button triggers an action."}}
	o := New(&fakeProvider{replies: []string{"NORMAL_CHAT"}}, conversational)

	res := o.Chat(context.Background(), "what is a button?", artifact.Artifact{})
	require.Nil(t, res.Code)
	require.Equal(t, "A button triggers an action.", res.Text.Reply)
	require.True(t, res.Text.IsChat)

	// Conversational calls carry no sampling overrides.
	require.Equal(t, "what is a button?", conversational.prompts[0])
	require.Equal(t, llm.Options{}, conversational.opts[0])
}

func TestChatUXSuggestionConverses(t *testing.T) {
	conversational := &fakeProvider{replies: []string{"Try more contrast."}}
	o := New(&fakeProvider{replies: []string{"UX_SUGGESTION"}}, conversational)

	res := o.Chat(context.Background(), "how can I improve this?", artifact.Artifact{})
	require.Equal(t, "Try more contrast.", res.Text.Reply)
	require.True(t, res.Text.IsChat)
}

func TestChatClassifierFailure(t *testing.T) {
	structured := &fakeProvider{errs: []error{errors.New("classifier down")}}
	conversational := &fakeProvider{}
	o := New(structured, conversational)

	res := o.Chat(context.Background(), "hello", artifact.Artifact{})
	require.NotNil(t, res.Text)
	require.Equal(t, "Sorry, I could not fetch a response right now. Please try again.", res.Text.Reply)
	require.True(t, res.Text.IsChat)
	require.Empty(t, conversational.prompts)
}

func TestChatConversationalFailure(t *testing.T) {
	conversational := &fakeProvider{errs: []error{errors.New("gemini down")}}
	o := New(&fakeProvider{replies: []string{"NORMAL_CHAT"}}, conversational)

	res := o.Chat(context.Background(), "hello", artifact.Artifact{})
	require.Equal(t, "Sorry, I could not fetch a response right now. Please try again.", res.Text.Reply)
	require.True(t, res.Text.IsChat)
}

func TestChatEmitsAuditTrail(t *testing.T) {
	emitter := &recordingEmitter{}
	o := New(
		&fakeProvider{replies: []string{"NORMAL_CHAT"}},
		&fakeProvider{replies: []string{"hi"}},
		WithEmitter(emitter),
	)

	o.Chat(context.Background(), "hello", artifact.Artifact{})
	require.Equal(t, []string{"request.received", "intent.classified", "chat.replied"}, emitter.keys)
}

// Package orchestrator sequences one request through classification and the
// generation, modification or conversational pipeline, and shapes the final
// result. Each request walks received -> classified -> dispatched ->
// responded; there is no path that leaves a request unanswered.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/artifact"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/events"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/intent"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/llm"
	"github.com/Rohith-AI-HUB/S.P.E.A.R-Backend/internal/prompt"
)

// Token and temperature budgets per pipeline. Generation gets headroom for
// three code fields; modification is tighter because the shape is fixed.
var (
	generateOptions = llm.Options{MaxTokens: 1500, Temperature: 0.7}
	modifyOptions   = llm.Options{MaxTokens: 1000, Temperature: 0.7}
)

const (
	// modifyFailureReply is the fixed notice for a modification that could
	// not be applied. The caller's prior artifact stays authoritative.
	modifyFailureReply = "Error processing code modification request."

	// unavailableReply covers classification and conversational provider
	// failures. Chat must never hard-fail.
	unavailableReply = "Sorry, I could not fetch a response right now. Please try again."
)

// CodeResult is a generated or modified artifact plus the untouched model
// text, kept for auditing and never fed to the formatter.
type CodeResult struct {
	Artifact artifact.Artifact
	Raw      string
}

// TextResult is a plain text reply.
type TextResult struct {
	Reply string
	// IsChat reports whether Reply is conversational text, as opposed to a
	// failure notice from an attempted code modification.
	IsChat bool
}

// Result is the outcome of one chat turn. Exactly one of Code or Text is
// set; callers must branch on the pointers, never infer from shape.
type Result struct {
	Code *CodeResult
	Text *TextResult
}

// GenerationError wraps whatever stopped the generation pipeline: a
// provider transport failure or a whole-response parse failure.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("generation failed: %v", e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

// Emitter receives one audit record per orchestration step.
type Emitter interface {
	Emit(ctx context.Context, routingKey string, payload any)
}

type Option func(*Orchestrator)

// WithEmitter attaches an audit emitter. Without one, steps are only logged.
func WithEmitter(e Emitter) Option {
	return func(o *Orchestrator) { o.emit = e }
}

// Orchestrator owns no per-request state: every call builds its state on
// the stack, so concurrent requests never serialize on each other.
type Orchestrator struct {
	structured     llm.Provider
	conversational llm.Provider
	classifier     *intent.Classifier
	emit           Emitter
}

func New(structured, conversational llm.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		structured:     structured,
		conversational: conversational,
		classifier:     intent.NewClassifier(structured),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GenerateCode renders the generation template, calls the structured
// provider once and parses the reply with empty-string defaults. A missing
// field degrades to its default; a transport failure or a reply with no
// JSON at all fails with a GenerationError the caller must surface.
func (o *Orchestrator) GenerateCode(ctx context.Context, userPrompt string) (*CodeResult, error) {
	reqID := uuid.New().String()
	o.step(ctx, reqID, "received", events.RequestReceived,
		events.RequestReceivedPayload{RequestID: reqID, Route: "generate-code"})

	p, err := prompt.Render(prompt.Generate, map[string]string{"userPrompt": userPrompt})
	if err != nil {
		o.fail(ctx, reqID, "render", err)
		return nil, &GenerationError{Err: err}
	}

	raw, err := o.structured.Complete(ctx, p, generateOptions)
	if err != nil {
		o.fail(ctx, reqID, "generate", err)
		return nil, &GenerationError{Err: err}
	}

	art, err := artifact.Parse(raw, artifact.Artifact{})
	if err != nil {
		o.fail(ctx, reqID, "parse", err)
		return nil, &GenerationError{Err: err}
	}

	o.step(ctx, reqID, "responded", events.CodeGenerated, events.CodeGeneratedPayload{
		RequestID: reqID,
		HTMLBytes: len(art.HTML), CSSBytes: len(art.CSS), JSBytes: len(art.JS),
	})
	return &CodeResult{Artifact: art, Raw: raw}, nil
}

// Chat drives one turn of the chat state machine. It always produces a
// result: provider failures degrade to readable text replies, and a failed
// modification leaves the caller's prior artifact untouched.
func (o *Orchestrator) Chat(ctx context.Context, message string, prior artifact.Artifact) Result {
	reqID := uuid.New().String()
	o.step(ctx, reqID, "received", events.RequestReceived,
		events.RequestReceivedPayload{RequestID: reqID, Route: "chat"})

	label, err := o.classifier.Classify(ctx, message)
	if err != nil {
		o.fail(ctx, reqID, "classify", err)
		return Result{Text: &TextResult{Reply: unavailableReply, IsChat: true}}
	}
	o.step(ctx, reqID, "classified", events.IntentClassified,
		events.IntentClassifiedPayload{RequestID: reqID, Label: string(label)})

	switch label {
	case intent.CodeUpdate:
		return o.modify(ctx, reqID, message, prior)
	default:
		return o.converse(ctx, reqID, label, message)
	}
}

func (o *Orchestrator) modify(ctx context.Context, reqID, message string, prior artifact.Artifact) Result {
	p, err := prompt.Render(prompt.Modify, map[string]string{
		"htmlCode": prior.HTML,
		"cssCode":  prior.CSS,
		"jsCode":   prior.JS,
		"message":  message,
	})
	if err != nil {
		o.fail(ctx, reqID, "render", err)
		return Result{Text: &TextResult{Reply: modifyFailureReply}}
	}

	raw, err := o.structured.Complete(ctx, p, modifyOptions)
	if err != nil {
		o.fail(ctx, reqID, "modify", err)
		return Result{Text: &TextResult{Reply: modifyFailureReply}}
	}

	// Per-field defaults come from the prior artifact, so a field the model
	// dropped keeps its previous value instead of being wiped.
	art, err := artifact.Parse(raw, prior)
	if err != nil {
		o.fail(ctx, reqID, "parse", err)
		return Result{Text: &TextResult{Reply: modifyFailureReply}}
	}

	o.step(ctx, reqID, "responded", events.CodeModified, events.CodeModifiedPayload{
		RequestID: reqID,
		HTMLBytes: len(art.HTML), CSSBytes: len(art.CSS), JSBytes: len(art.JS),
	})
	return Result{Code: &CodeResult{Artifact: art, Raw: raw}}
}

func (o *Orchestrator) converse(ctx context.Context, reqID string, label intent.Label, message string) Result {
	reply, err := o.conversational.Complete(ctx, message, llm.Options{})
	if err != nil {
		o.fail(ctx, reqID, "chat", err)
		reply = unavailableReply
	}

	o.step(ctx, reqID, "responded", events.ChatReplied, events.ChatRepliedPayload{
		RequestID: reqID, Label: string(label), Chars: len(reply),
	})
	return Result{Text: &TextResult{Reply: reply, IsChat: true}}
}

func (o *Orchestrator) step(ctx context.Context, reqID, state, routingKey string, payload any) {
	log.Info().Str("request", reqID).Str("state", state).Str("event", routingKey).Msg("request step")
	if o.emit != nil {
		o.emit.Emit(ctx, routingKey, payload)
	}
}

func (o *Orchestrator) fail(ctx context.Context, reqID, stage string, err error) {
	log.Error().Err(err).Str("request", reqID).Str("stage", stage).Msg("pipeline error")
	if o.emit != nil {
		o.emit.Emit(ctx, events.RequestFailed, events.RequestFailedPayload{
			RequestID: reqID, Stage: stage, Error: err.Error(),
		})
	}
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const geminiURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini is the conversational provider used for free-text replies.
type Gemini struct {
	apiKey string
	model  string
	url    string
	client *http.Client
	retry  retryPolicy
}

// NewGemini creates a Gemini generateContent client with the same call
// bounds as the structured provider.
func NewGemini(apiKey, model string, timeout time.Duration, attempts int) *Gemini {
	return &Gemini{
		apiKey: apiKey,
		model:  model,
		url:    geminiURL,
		client: &http.Client{Timeout: timeout},
		retry:  retryPolicy{attempts: attempts, backoff: time.Second},
	}
}

func (p *Gemini) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	return p.retry.do(ctx, "gemini", func() (string, error) {
		return p.complete(ctx, prompt, opts)
	})
}

func (p *Gemini) complete(ctx context.Context, prompt string, opts Options) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	genCfg := map[string]any{}
	if opts.MaxTokens > 0 {
		genCfg["maxOutputTokens"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		genCfg["temperature"] = opts.Temperature
	}
	if len(genCfg) > 0 {
		payload["generationConfig"] = genCfg
	}
	body, _ := json.Marshal(payload)

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", p.url, p.model, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &TransportError{Provider: "gemini", Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{
			Provider: "gemini",
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s", bytes.TrimSpace(raw)),
		}
	}

	var gr struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", &TransportError{Provider: "gemini", Err: fmt.Errorf("decode: %w", err)}
	}
	if gr.Error != nil {
		return "", fmt.Errorf("gemini: %s", gr.Error.Message)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}

	return strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text), nil
}

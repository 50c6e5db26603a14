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

const openaiURL = "https://api.openai.com/v1/chat/completions"

// OpenAI is the structured provider: the model the prompts can push into
// emitting JSON-only replies.
type OpenAI struct {
	apiKey string
	model  string
	url    string
	client *http.Client
	retry  retryPolicy
}

// NewOpenAI creates an OpenAI chat-completions client. Every call is bounded
// by timeout and retried up to attempts times on transport failures.
func NewOpenAI(apiKey, model string, timeout time.Duration, attempts int) *OpenAI {
	return &OpenAI{
		apiKey: apiKey,
		model:  model,
		url:    openaiURL,
		client: &http.Client{Timeout: timeout},
		retry:  retryPolicy{attempts: attempts, backoff: time.Second},
	}
}

func (p *OpenAI) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	return p.retry.do(ctx, "openai", func() (string, error) {
		return p.complete(ctx, prompt, opts)
	})
}

func (p *OpenAI) complete(ctx context.Context, prompt string, opts Options) (string, error) {
	payload := map[string]any{
		"model":    p.model,
		"messages": []map[string]string{{"role": "user", "content": prompt}},
	}
	if opts.MaxTokens > 0 {
		payload["max_tokens"] = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		payload["temperature"] = opts.Temperature
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, "POST", p.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &TransportError{Provider: "openai", Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{
			Provider: "openai",
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("%s", bytes.TrimSpace(raw)),
		}
	}

	var cr struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &cr); err != nil {
		return "", &TransportError{Provider: "openai", Err: fmt.Errorf("decode: %w", err)}
	}
	if cr.Error != nil {
		return "", fmt.Errorf("openai: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}

	return strings.TrimSpace(cr.Choices[0].Message.Content), nil
}

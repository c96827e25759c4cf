// Package narrative asks an OpenAI-compatible chat-completions API for
// a free-text efficiency analysis. Failures are never fatal: the report
// is generated without the narrative section.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mbellini/effwatch/internal/domain"
)

const systemPrompt = `You are a personal efficiency analyst. You review computer-usage ` +
	`telemetry and produce an objective, insightful productivity report.

Rules:
- Argue from the data; never invent or assume information that is not there
- Friendly but professional tone, like a coach who cares about the user
- Recommendations must be concrete and actionable, not generic
- Output well-structured Markdown`

// Config holds narrative-service settings. Environment variables
// OPENAI_BASE_URL and OPENAI_API_KEY take precedence over the file
// values, matching common OpenAI client conventions.
type Config struct {
	APIBase     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Client calls the chat-completions endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a narrative client.
func NewClient(cfg Config) *Client {
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		cfg.APIBase = base
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

// Analyze sends the prompt and returns the generated analysis text.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", &domain.NarrativeError{Op: "encode request", Err: err}
	}

	url := strings.TrimRight(c.cfg.APIBase, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &domain.NarrativeError{Op: "create request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.NarrativeError{Op: "call API", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &domain.NarrativeError{Op: "call API", Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &domain.NarrativeError{Op: "decode response", Err: err}
	}

	if len(parsed.Choices) == 0 {
		return "", &domain.NarrativeError{Op: "decode response", Err: fmt.Errorf("empty choices")}
	}

	// Tolerate the usual response-shape drift across providers:
	// standard content, reasoning-model reasoning_content, bare text.
	choice := parsed.Choices[0]
	switch {
	case choice.Message.Content != "":
		return choice.Message.Content, nil
	case choice.Message.ReasoningContent != "":
		return choice.Message.ReasoningContent, nil
	case choice.Text != "":
		return choice.Text, nil
	}
	return "", &domain.NarrativeError{Op: "decode response", Err: fmt.Errorf("no content in response")}
}

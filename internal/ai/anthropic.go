package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/go-resty/resty/v2"
)

const (
	anthropicVersion = "2023-06-01"
	messagesPath     = "/v1/messages"
)

// Message is one turn of a conversation sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest describes a single model call.
type CompletionRequest struct {
	System    string
	Messages  []Message
	MaxTokens int
}

// Completion is the text reply plus token usage.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Completer is the remote strategy the policy consults first.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []Message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// AnthropicClient calls the Messages API.
type AnthropicClient struct {
	http      *resty.Client
	model     string
	maxTokens int
}

// NewAnthropicClient returns nil when no API key is configured so callers fall
// straight through to the heuristic strategy.
func NewAnthropicClient(cfg config.AnthropicConfig) *AnthropicClient {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("Content-Type", "application/json")
	return &AnthropicClient{http: client, model: cfg.Model, maxTokens: maxTokens}
}

func (c *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*Completion, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 || maxTokens > c.maxTokens {
		maxTokens = c.maxTokens
	}
	var out messagesResponse
	var failure apiError
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(messagesRequest{
			Model:     c.model,
			MaxTokens: maxTokens,
			System:    req.System,
			Messages:  req.Messages,
		}).
		SetResult(&out).
		SetError(&failure).
		Post(messagesPath)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("anthropic status %d: %s", resp.StatusCode(), failure.Error.Message)
	}

	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("anthropic reply had no text content")
	}
	return &Completion{
		Text:         text.String(),
		InputTokens:  out.Usage.InputTokens,
		OutputTokens: out.Usage.OutputTokens,
	}, nil
}

package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

// ErrRemoteUnavailable reports that no remote strategy is configured.
var ErrRemoteUnavailable = errors.New("ai: remote strategy not configured")

// Policy picks between the remote model and the local heuristics. Callers try
// the remote path and fall back on any error; nothing is retried.
type Policy struct {
	remote Completer
	logg   *logger.Logger
}

// NewPolicy wires the remote strategy; a nil completer means heuristics only.
func NewPolicy(remote Completer, logg *logger.Logger) *Policy {
	p := &Policy{logg: logg}
	// a typed nil *AnthropicClient must not count as configured
	if c, ok := remote.(*AnthropicClient); ok && c == nil {
		return p
	}
	p.remote = remote
	return p
}

// Enabled reports whether the remote strategy is available.
func (p *Policy) Enabled() bool {
	return p != nil && p.remote != nil
}

// CompleteJSON asks the model for a JSON reply and decodes it into dst. It
// returns the tokens used and false when the caller should fall back.
func (p *Policy) CompleteJSON(ctx context.Context, op, prompt string, maxTokens int, dst any) (int, bool) {
	completion, err := p.complete(ctx, op, CompletionRequest{
		Messages:  []Message{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return 0, false
	}
	if err := DecodeReply(completion.Text, dst); err != nil {
		p.warn(ctx, op, "ai.reply_unparseable", err)
		return 0, false
	}
	return completion.InputTokens + completion.OutputTokens, true
}

// CompleteText returns the raw model reply, or false when the caller should fall back.
func (p *Policy) CompleteText(ctx context.Context, op string, req CompletionRequest) (string, bool) {
	completion, err := p.complete(ctx, op, req)
	if err != nil {
		return "", false
	}
	text := strings.TrimSpace(completion.Text)
	return text, text != ""
}

func (p *Policy) complete(ctx context.Context, op string, req CompletionRequest) (*Completion, error) {
	if !p.Enabled() {
		return nil, ErrRemoteUnavailable
	}
	completion, err := p.remote.Complete(ctx, req)
	if err != nil {
		p.warn(ctx, op, "ai.remote_failed", err)
		return nil, err
	}
	return completion, nil
}

func (p *Policy) warn(ctx context.Context, op, msg string, err error) {
	if p.logg == nil {
		return
	}
	p.logg.WarnErr(p.logg.WithField(ctx, "operation", op), msg, err)
}

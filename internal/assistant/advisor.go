// Package assistant generates short advisory commentary on the player's
// decisions using the Anthropic API. Advice is cosmetic: any failure falls
// back to a canned line and never disturbs the game.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/farmnav/farm-navigators/internal/game/session"
)

// FallbackAdvice is returned whenever the model is unavailable or replies
// with nothing usable.
const FallbackAdvice = "Keep your four pillars in balance, and remember that sustainability losses compound faster than gains."

const systemPrompt = "You are a seasoned agricultural policy advisor in a farm management game. " +
	"The player balances four pillars (economy, sustainability, technology, people) scored from -10 to 10, " +
	"and an earth index from 1.0 (best) to 5.0 (worst). " +
	"Comment on their latest decision in at most two short sentences. Be concrete and a little wry. " +
	"Never mention that this is a game or that you are an AI."

// Completer is the narrow model-call surface, so tests can substitute a
// fake for the real API client.
type Completer interface {
	// Complete sends one user prompt under the given system prompt and
	// returns the model's text reply.
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// anthropicCompleter calls the Anthropic Messages API.
type anthropicCompleter struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicCompleter creates a Completer backed by the Anthropic API.
//
// Precondition: apiKey and model must be non-empty; maxTokens > 0.
func NewAnthropicCompleter(apiKey, model string, maxTokens int64) Completer {
	return &anthropicCompleter{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
	}
}

func (c *anthropicCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("calling model: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// Advisor turns decision events into one-line commentary.
type Advisor struct {
	completer Completer
	timeout   time.Duration
	log       *zap.Logger
}

// New creates an Advisor.
//
// Precondition: completer and log are non-nil; timeout > 0.
func New(completer Completer, timeout time.Duration, log *zap.Logger) *Advisor {
	return &Advisor{completer: completer, timeout: timeout, log: log}
}

// Advise returns commentary for ev. The model call is bounded by the
// advisor's timeout; on any failure the canned FallbackAdvice is returned.
func (a *Advisor) Advise(ctx context.Context, ev session.Event) string {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.completer.Complete(ctx, systemPrompt, buildPrompt(ev))
	if err != nil {
		a.log.Warn("advisor model call failed", zap.String("card", ev.Card.ID), zap.Error(err))
		return FallbackAdvice
	}
	text = strings.TrimSpace(text)
	if text == "" {
		a.log.Warn("advisor model returned empty reply", zap.String("card", ev.Card.ID))
		return FallbackAdvice
	}
	return text
}

// Watch consumes decision events and passes advice to deliver, returning
// when events is closed. Run it on its own goroutine.
func (a *Advisor) Watch(events <-chan session.Event, deliver func(string)) {
	for ev := range events {
		deliver(a.Advise(context.Background(), ev))
	}
}

// buildPrompt renders a decision event as a compact situation report.
func buildPrompt(ev session.Event) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scenario: %s\n", ev.Card.Title)
	if opt, err := ev.Card.Option(ev.Decision); err == nil {
		fmt.Fprintf(&sb, "The player chose: %s\n", opt.Label)
	}
	p := ev.State.Pillars
	fmt.Fprintf(&sb, "Turn %d. Pillars now: economy %d, sustainability %d, technology %d, people %d.\n",
		ev.State.Turn, p.Economy, p.Sustainability, p.Technology, p.People)
	fmt.Fprintf(&sb, "Earth index: %.2f.\n", ev.State.EarthIndex)
	if ev.State.GameOver {
		fmt.Fprintf(&sb, "The game just ended with a %s.\n", ev.State.GameResult)
	}
	return sb.String()
}

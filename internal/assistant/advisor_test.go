package assistant_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farmnav/farm-navigators/internal/assistant"
	"github.com/farmnav/farm-navigators/internal/game/card"
	"github.com/farmnav/farm-navigators/internal/game/session"
	"github.com/farmnav/farm-navigators/internal/game/state"
)

// fakeCompleter records the last prompt and returns a scripted reply.
type fakeCompleter struct {
	reply      string
	err        error
	lastSystem string
	lastPrompt string
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string) (string, error) {
	f.lastSystem = system
	f.lastPrompt = prompt
	return f.reply, f.err
}

func testEvent() session.Event {
	gs := state.New()
	gs.Turn = 4
	gs.Pillars = state.Pillars{Economy: 2, Sustainability: -3, Technology: 1, People: 0}
	gs.EarthIndex = 1.9
	return session.Event{
		Card: &card.Card{
			ID:    "card-002",
			Title: "Irrigation Upgrade",
			Options: card.Options{
				Left:  &card.Option{ID: "l", Label: "Keep flood irrigation"},
				Right: &card.Option{ID: "r", Label: "Install drip lines"},
			},
		},
		Decision: card.SideRight,
		State:    gs,
	}
}

func TestAdvisor_Advise(t *testing.T) {
	completer := &fakeCompleter{reply: "  Drip lines pay for themselves; watch the sustainability slide.  "}
	a := assistant.New(completer, time.Second, zap.NewNop())

	got := a.Advise(context.Background(), testEvent())

	assert.Equal(t, "Drip lines pay for themselves; watch the sustainability slide.", got)
	assert.Contains(t, completer.lastPrompt, "Irrigation Upgrade")
	assert.Contains(t, completer.lastPrompt, "Install drip lines")
	assert.Contains(t, completer.lastPrompt, "sustainability -3")
	assert.Contains(t, completer.lastPrompt, "1.90")
	assert.NotEmpty(t, completer.lastSystem)
}

func TestAdvisor_FallbackOnError(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("api unreachable")}
	a := assistant.New(completer, time.Second, zap.NewNop())

	assert.Equal(t, assistant.FallbackAdvice, a.Advise(context.Background(), testEvent()))
}

func TestAdvisor_FallbackOnEmptyReply(t *testing.T) {
	completer := &fakeCompleter{reply: "   "}
	a := assistant.New(completer, time.Second, zap.NewNop())

	assert.Equal(t, assistant.FallbackAdvice, a.Advise(context.Background(), testEvent()))
}

func TestAdvisor_PromptMentionsGameEnd(t *testing.T) {
	completer := &fakeCompleter{reply: "A hard-won victory."}
	a := assistant.New(completer, time.Second, zap.NewNop())

	ev := testEvent()
	ev.State.GameOver = true
	ev.State.GameResult = state.OutcomeWin
	a.Advise(context.Background(), ev)

	assert.Contains(t, completer.lastPrompt, "ended with a win")
}

func TestAdvisor_WatchForwardsAdvice(t *testing.T) {
	completer := &fakeCompleter{reply: "Steady hand on the tiller."}
	a := assistant.New(completer, time.Second, zap.NewNop())

	events := make(chan session.Event, 1)
	delivered := make(chan string, 1)
	go a.Watch(events, func(advice string) { delivered <- advice })

	events <- testEvent()
	close(events)

	select {
	case got := <-delivered:
		assert.Equal(t, "Steady hand on the tiller.", got)
	case <-time.After(time.Second):
		t.Fatal("expected advice to be delivered")
	}
	require.NotEmpty(t, completer.lastPrompt)
}

package turn_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/farmnav/farm-navigators/internal/game/card"
	"github.com/farmnav/farm-navigators/internal/game/state"
	"github.com/farmnav/farm-navigators/internal/game/turn"
)

var decisionTime = time.Date(2025, 10, 4, 12, 0, 0, 0, time.UTC)

func testCard(left, right card.Impact) *card.Card {
	return &card.Card{
		ID:       "card-test",
		Title:    "Test Scenario",
		Question: "Choose?",
		Options: card.Options{
			Left:  &card.Option{ID: "l", Label: "Left", ResultText: "went left"},
			Right: &card.Option{ID: "r", Label: "Right", ResultText: "went right"},
		},
		Impacts: card.Impacts{Left: left, Right: right},
	}
}

func TestProcess_AppliesImpactAndAdvancesTurn(t *testing.T) {
	s := state.New()
	c := testCard(
		card.Impact{Economy: -1, Sustainability: 2, People: -1},
		card.Impact{Economy: 1, Sustainability: -2, People: 1},
	)

	next, err := turn.Process(s, c, card.SideLeft, decisionTime)
	require.NoError(t, err)

	assert.Equal(t, 2, next.Turn)
	assert.Equal(t, state.Pillars{Economy: -1, Sustainability: 2, Technology: 0, People: -1}, next.Pillars)
	assert.False(t, next.GameOver)

	require.Len(t, next.History, 1)
	entry := next.History[0]
	assert.Equal(t, 1, entry.Turn, "history records the pre-transition turn")
	assert.Equal(t, "card-test", entry.CardID)
	assert.Equal(t, card.SideLeft, entry.Decision)
	assert.Equal(t, card.Impact{Economy: -1, Sustainability: 2, People: -1}, entry.Impacts)
	assert.Equal(t, decisionTime.UnixMilli(), entry.Timestamp)
}

func TestProcess_DoesNotMutateInput(t *testing.T) {
	s := state.New()
	s.History = []state.TurnRecord{}
	c := testCard(card.Impact{Economy: 1}, card.Impact{})

	_, err := turn.Process(s, c, card.SideLeft, decisionTime)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Turn)
	assert.Equal(t, state.Pillars{}, s.Pillars)
	assert.Empty(t, s.History)
}

func TestProcess_MissingOptionFailsExplicitly(t *testing.T) {
	s := state.New()
	c := testCard(card.Impact{Economy: -1}, card.Impact{Economy: 2})
	c.Options.Right = nil

	_, err := turn.Process(s, c, card.SideRight, decisionTime)
	require.Error(t, err)
	assert.ErrorIs(t, err, card.ErrMissingOption,
		"a missing option must fail the decision, not default to zero impact")
}

func TestProcess_TerminalStateRejected(t *testing.T) {
	s := state.New()
	s.GameOver = true
	s.GameResult = state.OutcomeLose

	_, err := turn.Process(s, testCard(card.Impact{}, card.Impact{}), card.SideLeft, decisionTime)
	assert.Error(t, err)
}

func TestProcess_NilCard(t *testing.T) {
	_, err := turn.Process(state.New(), nil, card.SideLeft, decisionTime)
	assert.Error(t, err)
}

func TestProcess_LoseOnCriticalPillar(t *testing.T) {
	s := state.New()
	s.Pillars = state.Pillars{Economy: -9, Sustainability: 8, Technology: 8, People: 8}
	c := testCard(card.Impact{Economy: -2}, card.Impact{})

	next, err := turn.Process(s, c, card.SideLeft, decisionTime)
	require.NoError(t, err)

	assert.True(t, next.GameOver, "a pillar at the lower bound ends the game immediately")
	assert.Equal(t, state.OutcomeLose, next.GameResult,
		"critical-low outranks high values on other pillars")
	assert.Equal(t, state.PillarMin, next.Pillars.Economy)
}

func TestProcess_WinByTurnLimit(t *testing.T) {
	s := state.New()
	s.Turn = 19
	s.Pillars = state.Pillars{Economy: 1, Sustainability: 1, Technology: 1, People: 1}
	c := testCard(card.Impact{}, card.Impact{})

	next, err := turn.Process(s, c, card.SideLeft, decisionTime)
	require.NoError(t, err)

	assert.Equal(t, 20, next.Turn)
	assert.True(t, next.GameOver)
	assert.Equal(t, state.OutcomeWin, next.GameResult,
		"reaching the turn limit with all pillars positive is a win")
}

func TestProcess_LoseByTurnLimitWithNonPositivePillar(t *testing.T) {
	s := state.New()
	s.Turn = 19
	s.Pillars = state.Pillars{Economy: 5, Sustainability: 0, Technology: 5, People: 5}
	c := testCard(card.Impact{}, card.Impact{})

	next, err := turn.Process(s, c, card.SideLeft, decisionTime)
	require.NoError(t, err)

	assert.True(t, next.GameOver)
	assert.Equal(t, state.OutcomeLose, next.GameResult,
		"a zero pillar at the turn limit loses")
}

func TestProcess_WinByThreshold(t *testing.T) {
	s := state.New()
	s.Turn = 5
	s.Pillars = state.Pillars{Economy: 10, Sustainability: 10, Technology: 10, People: 8}
	c := testCard(card.Impact{People: 2}, card.Impact{})

	next, err := turn.Process(s, c, card.SideLeft, decisionTime)
	require.NoError(t, err)

	assert.True(t, next.GameOver)
	assert.Equal(t, state.OutcomeWin, next.GameResult,
		"all pillars at the upper bound is an early win")
}

func TestEvaluate_PriorityOrder(t *testing.T) {
	// Critical-low wins the priority race even at the turn limit with a
	// would-be win elsewhere.
	r := turn.Evaluate(state.Pillars{Economy: -10, Sustainability: 10, Technology: 10, People: 10}, state.MaxTurns)
	assert.True(t, r.Over)
	assert.Equal(t, state.OutcomeLose, r.Outcome)

	// Turn limit outranks the all-at-max win check (same verdict here).
	r = turn.Evaluate(state.Pillars{Economy: 10, Sustainability: 10, Technology: 10, People: 10}, state.MaxTurns)
	assert.True(t, r.Over)
	assert.Equal(t, state.OutcomeWin, r.Outcome)

	r = turn.Evaluate(state.Pillars{Economy: 1, Sustainability: 1, Technology: 1, People: 1}, 5)
	assert.False(t, r.Over)
	assert.Empty(t, r.Outcome)
}

// TestProcess_Property_TurnMonotonic verifies that the turn counter advances
// by exactly one per processed decision and every resulting pillar stays in
// bounds, for arbitrary impacts.
func TestProcess_Property_TurnMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := state.New()
		s.Turn = rapid.IntRange(1, state.MaxTurns-1).Draw(rt, "turn")
		s.Pillars = state.Pillars{
			Economy:        rapid.IntRange(state.PillarMin+1, state.PillarMax).Draw(rt, "economy"),
			Sustainability: rapid.IntRange(state.PillarMin+1, state.PillarMax).Draw(rt, "sustainability"),
			Technology:     rapid.IntRange(state.PillarMin+1, state.PillarMax).Draw(rt, "technology"),
			People:         rapid.IntRange(state.PillarMin+1, state.PillarMax).Draw(rt, "people"),
		}
		impact := card.Impact{
			Economy:        rapid.IntRange(-3, 3).Draw(rt, "dEconomy"),
			Sustainability: rapid.IntRange(-3, 3).Draw(rt, "dSustainability"),
			Technology:     rapid.IntRange(-3, 3).Draw(rt, "dTechnology"),
			People:         rapid.IntRange(-3, 3).Draw(rt, "dPeople"),
		}
		side := rapid.SampledFrom([]card.Side{card.SideLeft, card.SideRight}).Draw(rt, "side")

		c := testCard(impact, impact)
		next, err := turn.Process(s, c, side, decisionTime)
		require.NoError(rt, err)

		assert.Equal(rt, s.Turn+1, next.Turn, "turn counter advances by exactly 1")
		assert.Len(rt, next.History, len(s.History)+1, "exactly one history entry appended")
		for _, v := range next.Pillars.Values() {
			assert.GreaterOrEqual(rt, v, state.PillarMin)
			assert.LessOrEqual(rt, v, state.PillarMax)
		}
		if next.GameOver {
			assert.NotEmpty(rt, next.GameResult, "terminal states always carry an outcome")
		}
	})
}

// Package turn implements the pure turn-processing transition for Farm
// Navigators: impact application, clamping, history, and the termination
// state machine.
package turn

import (
	"fmt"
	"time"

	"github.com/farmnav/farm-navigators/internal/game/card"
	"github.com/farmnav/farm-navigators/internal/game/state"
)

// Result describes the termination evaluation for a candidate state.
type Result struct {
	Over    bool
	Outcome state.Outcome
}

// Evaluate runs the termination checks against a candidate state, in
// priority order:
//
//  1. any pillar at or below the lower clamp bound → lose
//  2. turn limit reached → win iff every pillar is positive, else lose
//  3. every pillar at the upper clamp bound → win
//  4. otherwise the game continues
//
// Postcondition: Result.Outcome is set iff Result.Over is true.
func Evaluate(p state.Pillars, turnCount int) Result {
	if p.AnyAtOrBelow(state.PillarMin) {
		return Result{Over: true, Outcome: state.OutcomeLose}
	}

	if turnCount >= state.MaxTurns {
		if p.AllAbove(0) {
			return Result{Over: true, Outcome: state.OutcomeWin}
		}
		return Result{Over: true, Outcome: state.OutcomeLose}
	}

	if p.AllAtOrAbove(state.PillarMax) {
		return Result{Over: true, Outcome: state.OutcomeWin}
	}

	return Result{}
}

// Process computes the next game state for a decision. It is a pure
// transition: the input state is not mutated.
//
// The chosen side's impact is applied with per-component clamping, a history
// entry is appended recording the pre-transition turn, and the termination
// machine is evaluated against the candidate state.
//
// Precondition: c must be non-nil; s must not already be terminal.
// Postcondition: On success the returned state has Turn == s.Turn+1 and one
// more history entry than s. Returns card.ErrMissingOption (wrapped) if the
// card has no authored option for side; the input state is unchanged either
// way.
func Process(s state.GameState, c *card.Card, side card.Side, now time.Time) (state.GameState, error) {
	if c == nil {
		return state.GameState{}, fmt.Errorf("turn: nil card")
	}
	if s.GameOver {
		return state.GameState{}, fmt.Errorf("turn: game already over")
	}

	impact, err := c.Impact(side)
	if err != nil {
		return state.GameState{}, fmt.Errorf("turn %d: %w", s.Turn, err)
	}

	next := s.Clone()
	next.Turn = s.Turn + 1
	next.Pillars = s.Pillars.Apply(impact)
	next.History = append(next.History, state.TurnRecord{
		Turn:      s.Turn,
		CardID:    c.ID,
		Decision:  side,
		Impacts:   impact,
		Timestamp: now.UnixMilli(),
	})

	if r := Evaluate(next.Pillars, next.Turn); r.Over {
		next.GameOver = true
		next.GameResult = r.Outcome
	}

	return next, nil
}

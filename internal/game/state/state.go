// Package state defines the game-state model for Farm Navigators: the four
// pillar scores, the turn history, the earth index, and the scoreboard.
package state

import (
	"github.com/farmnav/farm-navigators/internal/game/card"
)

// Pillar clamp bounds. Every pillar mutation clamps each component
// individually into [PillarMin, PillarMax].
const (
	PillarMin = -10
	PillarMax = 10
)

// MaxTurns is the turn limit after which the game ends.
const MaxTurns = 20

// Earth index bounds and baseline. The index models resource overshoot:
// 1.0 means one Earth sustains the farm's consumption.
const (
	EarthIndexBaseline = 1.75
	EarthIndexMin      = 1.0
	EarthIndexMax      = 5.0
)

// Per-decision earth index rates. Sustainability-harming choices worsen
// consumption three times faster than sustainability-helping choices improve
// it.
const (
	earthIndexPenaltyRate = 0.03
	earthIndexRewardRate  = 0.01
)

// Outcome is the terminal result of a finished game.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
)

// Pillars holds the four pillar scores. JSON field names match the persisted
// save shape and must not change.
type Pillars struct {
	Economy        int `json:"economy"`
	Sustainability int `json:"sustainability"`
	Technology     int `json:"technology"`
	People         int `json:"people"`
}

// Values returns the pillar components in declaration order.
func (p Pillars) Values() [4]int {
	return [4]int{p.Economy, p.Sustainability, p.Technology, p.People}
}

// Apply returns a new Pillars with the impact vector added and every
// component clamped.
//
// Postcondition: every component of the result is in [PillarMin, PillarMax].
func (p Pillars) Apply(impact card.Impact) Pillars {
	return Pillars{
		Economy:        Clamp(p.Economy + impact.Economy),
		Sustainability: Clamp(p.Sustainability + impact.Sustainability),
		Technology:     Clamp(p.Technology + impact.Technology),
		People:         Clamp(p.People + impact.People),
	}
}

// AnyAtOrBelow reports whether any pillar is at or below threshold.
func (p Pillars) AnyAtOrBelow(threshold int) bool {
	for _, v := range p.Values() {
		if v <= threshold {
			return true
		}
	}
	return false
}

// AllAbove reports whether every pillar is strictly above threshold.
func (p Pillars) AllAbove(threshold int) bool {
	for _, v := range p.Values() {
		if v <= threshold {
			return false
		}
	}
	return true
}

// AllAtOrAbove reports whether every pillar is at or above threshold.
func (p Pillars) AllAtOrAbove(threshold int) bool {
	for _, v := range p.Values() {
		if v < threshold {
			return false
		}
	}
	return true
}

// Sum returns the total of all four pillar values.
func (p Pillars) Sum() int {
	total := 0
	for _, v := range p.Values() {
		total += v
	}
	return total
}

// Clamp bounds a single pillar value into [PillarMin, PillarMax].
//
// Postcondition: PillarMin <= result <= PillarMax.
func Clamp(v int) int {
	if v < PillarMin {
		return PillarMin
	}
	if v > PillarMax {
		return PillarMax
	}
	return v
}

// TurnRecord is one immutable history entry, appended once per decision.
// JSON field names match the persisted save shape.
type TurnRecord struct {
	// Turn is the turn counter at the time the decision was made
	// (pre-transition).
	Turn int `json:"turn"`
	// CardID identifies the scenario card decided on.
	CardID string `json:"cardId"`
	// Decision is the chosen side.
	Decision card.Side `json:"decision"`
	// Impacts is the impact vector that was applied.
	Impacts card.Impact `json:"impacts"`
	// Timestamp is the decision time in epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// ScoreboardEntry is one saved score. Entries are append-only and survive
// game resets.
type ScoreboardEntry struct {
	Name       string  `json:"name"`
	NationFlag string  `json:"nationFlag"`
	Score      int     `json:"score"`
	EarthIndex float64 `json:"earthIndex"`
	Date       string  `json:"date"`
}

// GameState is the aggregate game state. The JSON shape is the persistence
// contract (see the savefile package) and must stay stable.
type GameState struct {
	Turn       int               `json:"turn"`
	Pillars    Pillars           `json:"pillars"`
	History    []TurnRecord      `json:"history"`
	GameOver   bool              `json:"gameOver"`
	GameResult Outcome           `json:"gameResult,omitempty"`
	EarthIndex float64           `json:"earthIndex"`
	Scoreboard []ScoreboardEntry `json:"scoreboard"`
}

// New returns the initial game state: turn 1, all pillars zero, empty
// history, earth index at baseline, empty scoreboard.
func New() GameState {
	return GameState{
		Turn:       1,
		History:    []TurnRecord{},
		EarthIndex: EarthIndexBaseline,
		Scoreboard: []ScoreboardEntry{},
	}
}

// Clone returns a deep copy of the state. History and scoreboard slices are
// copied so the clone can be mutated independently.
func (s GameState) Clone() GameState {
	out := s
	if s.History != nil {
		out.History = make([]TurnRecord, len(s.History))
		copy(out.History, s.History)
	}
	if s.Scoreboard != nil {
		out.Scoreboard = make([]ScoreboardEntry, len(s.Scoreboard))
		copy(out.Scoreboard, s.Scoreboard)
	}
	return out
}

// AdjustEarthIndex applies the per-decision consumption adjustment for the
// chosen impact's sustainability delta and clamps the result.
//
// Postcondition: EarthIndexMin <= result <= EarthIndexMax.
func AdjustEarthIndex(current float64, sustainabilityDelta int) float64 {
	next := current
	if sustainabilityDelta < 0 {
		next += float64(-sustainabilityDelta) * earthIndexPenaltyRate
	} else {
		next -= float64(sustainabilityDelta) * earthIndexRewardRate
	}
	if next < EarthIndexMin {
		return EarthIndexMin
	}
	if next > EarthIndexMax {
		return EarthIndexMax
	}
	return next
}

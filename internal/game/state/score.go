package state

import (
	"fmt"
	"math"
)

// WinBonus is added to the final score for a won game.
const WinBonus = 1000

// FinalScore computes the display score for a finished game:
// turns survived, pillar totals, a bonus for keeping pillars balanced, the
// win bonus, minus a penalty for consumption above one Earth.
//
// Postcondition: deterministic for a given state; may be negative.
func FinalScore(s GameState) int {
	minAbs := math.MaxInt
	for _, v := range s.Pillars.Values() {
		abs := v
		if abs < 0 {
			abs = -abs
		}
		if abs < minAbs {
			minAbs = abs
		}
	}

	winBonus := 0
	if s.GameResult == OutcomeWin {
		winBonus = WinBonus
	}

	penalty := (s.EarthIndex - EarthIndexMin) * 500
	if penalty < 0 {
		penalty = 0
	}

	raw := float64(s.Turn*100+s.Pillars.Sum()*50+minAbs*100+winBonus) - penalty
	return int(math.Round(raw))
}

// OvershootDay converts an earth index into the day-of-year on which the
// year's resource budget would be exhausted.
//
// Precondition: earthIndex must be >= EarthIndexMin.
// Postcondition: Returns a day in [1, 365].
func OvershootDay(earthIndex float64) int {
	if earthIndex < EarthIndexMin {
		earthIndex = EarthIndexMin
	}
	day := int(math.Floor(365 / earthIndex))
	if day < 1 {
		day = 1
	}
	if day > 365 {
		day = 365
	}
	return day
}

// PillarStatus is a coarse display band for a single pillar value.
type PillarStatus string

const (
	StatusCritical  PillarStatus = "critical"
	StatusLow       PillarStatus = "low"
	StatusMedium    PillarStatus = "medium"
	StatusGood      PillarStatus = "good"
	StatusExcellent PillarStatus = "excellent"
)

// StatusFor bands a pillar value for display.
func StatusFor(value int) PillarStatus {
	switch {
	case value <= -8:
		return StatusCritical
	case value <= -4:
		return StatusLow
	case value <= 4:
		return StatusMedium
	case value <= 8:
		return StatusGood
	default:
		return StatusExcellent
	}
}

// OverallStatus is a coarse display band for the whole farm.
type OverallStatus string

const (
	OverallCritical   OverallStatus = "critical"
	OverallStruggling OverallStatus = "struggling"
	OverallStable     OverallStatus = "stable"
	OverallThriving   OverallStatus = "thriving"
)

// OverallFor bands the pillar set for display: any pillar near collapse is
// critical, otherwise the average decides.
func OverallFor(p Pillars) OverallStatus {
	for _, v := range p.Values() {
		if v <= -8 {
			return OverallCritical
		}
	}
	avg := float64(p.Sum()) / 4
	switch {
	case avg < -2:
		return OverallStruggling
	case avg < 5:
		return OverallStable
	default:
		return OverallThriving
	}
}

// Percent converts a pillar value to a 0-100 display percentage.
//
// Precondition: value should be in [PillarMin, PillarMax].
func Percent(value int) float64 {
	return float64(value-PillarMin) / float64(PillarMax-PillarMin) * 100
}

// FormatSigned renders an impact delta with an explicit sign, e.g. "+2".
func FormatSigned(value int) string {
	if value == 0 {
		return "0"
	}
	return fmt.Sprintf("%+d", value)
}

package handlers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/farmnav/farm-navigators/internal/frontend/telnet"
	"github.com/farmnav/farm-navigators/internal/game/card"
	"github.com/farmnav/farm-navigators/internal/game/state"
	"github.com/farmnav/farm-navigators/internal/storage/postgres"
)

// pillarBarWidth is the character width of a rendered pillar bar.
const pillarBarWidth = 20

// scoreboardLimit caps how many entries a score table shows.
const scoreboardLimit = 10

// statusColor maps a pillar status band to an ANSI color.
func statusColor(s state.PillarStatus) string {
	switch s {
	case state.StatusCritical:
		return telnet.BrightRed
	case state.StatusLow:
		return telnet.Red
	case state.StatusMedium:
		return telnet.Yellow
	case state.StatusGood:
		return telnet.Green
	default:
		return telnet.BrightGreen
	}
}

// renderBar draws a fixed-width bar filled proportionally to the pillar
// value's position in [PillarMin, PillarMax].
func renderBar(value int) string {
	filled := int(state.Percent(value) / 100 * pillarBarWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > pillarBarWidth {
		filled = pillarBarWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", pillarBarWidth-filled)
}

// RenderPillars formats the four pillar gauges with the earth index line.
func RenderPillars(gs state.GameState) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "=== Farm Status ==="))
	b.WriteString("\r\n")
	for _, row := range []struct {
		label string
		value int
	}{
		{"Economy", gs.Pillars.Economy},
		{"Sustainability", gs.Pillars.Sustainability},
		{"Technology", gs.Pillars.Technology},
		{"People", gs.Pillars.People},
	} {
		color := statusColor(state.StatusFor(row.value))
		b.WriteString(fmt.Sprintf("  %-14s %s%s%s %s\r\n",
			row.label, color, renderBar(row.value), telnet.Reset,
			state.FormatSigned(row.value)))
	}
	b.WriteString(fmt.Sprintf("  %-14s %.2f  (overshoot day %d of 365)\r\n",
		"Earth index", gs.EarthIndex, state.OvershootDay(gs.EarthIndex)))
	b.WriteString(telnet.Colorf(telnet.Dim, "  Overall: %s", string(state.OverallFor(gs.Pillars))))
	b.WriteString("\r\n")
	return b.String()
}

// RenderCard formats a scenario card with its decision options.
func RenderCard(c *card.Card, turn, remaining int) string {
	var b strings.Builder
	b.WriteString("\r\n")
	b.WriteString(telnet.Colorf(telnet.BrightYellow, "── Season %d ── %s", turn, c.Title))
	b.WriteString("\r\n")
	if c.Description != "" {
		b.WriteString(telnet.Colorize(telnet.White, c.Description))
		b.WriteString("\r\n")
	}
	if c.DataSource != "" {
		b.WriteString(telnet.Colorf(telnet.Dim, "Satellite data: %s", c.DataSource))
		b.WriteString("\r\n")
	}
	b.WriteString(telnet.Colorize(telnet.BrightWhite, c.Question))
	b.WriteString("\r\n")
	if c.Options.Left != nil {
		b.WriteString(telnet.Colorf(telnet.Cyan, "  (L)eft:  %s", c.Options.Left.Label))
		b.WriteString("\r\n")
	}
	if c.Options.Right != nil {
		b.WriteString(telnet.Colorf(telnet.Cyan, "  (R)ight: %s", c.Options.Right.Label))
		b.WriteString("\r\n")
	}
	b.WriteString(telnet.Colorf(telnet.Dim, "Cards remaining: %d", remaining))
	b.WriteString("\r\n")
	return b.String()
}

// RenderDecisionResult formats the outcome text of a processed decision.
func RenderDecisionResult(c *card.Card, side card.Side) string {
	var b strings.Builder
	if opt, err := c.Option(side); err == nil && opt.ResultText != "" {
		b.WriteString(telnet.Colorize(telnet.White, opt.ResultText))
		b.WriteString("\r\n")
	}
	if c.Education != "" {
		b.WriteString(telnet.Colorf(telnet.BrightBlue, "Did you know? %s", c.Education))
		b.WriteString("\r\n")
	}
	return b.String()
}

// RenderGameOver formats the end-of-game summary with the final score.
func RenderGameOver(gs state.GameState) string {
	var b strings.Builder
	b.WriteString("\r\n")
	if gs.GameResult == state.OutcomeWin {
		b.WriteString(telnet.Colorize(telnet.Bold+telnet.BrightGreen, "=== YOUR FARM THRIVED ==="))
	} else {
		b.WriteString(telnet.Colorize(telnet.Bold+telnet.BrightRed, "=== YOUR FARM COLLAPSED ==="))
	}
	b.WriteString("\r\n")
	b.WriteString(fmt.Sprintf("  Seasons survived: %d\r\n", gs.Turn))
	b.WriteString(fmt.Sprintf("  Final score:      %s\r\n",
		telnet.Colorf(telnet.BrightYellow, "%d", state.FinalScore(gs))))
	b.WriteString(fmt.Sprintf("  Earth index:      %.2f (overshoot day %d)\r\n",
		gs.EarthIndex, state.OvershootDay(gs.EarthIndex)))
	return b.String()
}

// RenderScoreboard formats scoreboard entries best-first, capped at the
// top ten.
func RenderScoreboard(entries []state.ScoreboardEntry) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "=== Scoreboard ==="))
	b.WriteString("\r\n")
	if len(entries) == 0 {
		b.WriteString(telnet.Colorize(telnet.Dim, "  No scores yet. Finish a game to claim the top spot."))
		b.WriteString("\r\n")
		return b.String()
	}
	sorted := make([]state.ScoreboardEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if len(sorted) > scoreboardLimit {
		sorted = sorted[:scoreboardLimit]
	}
	for i, e := range sorted {
		flag := e.NationFlag
		if flag == "" {
			flag = "  "
		}
		b.WriteString(fmt.Sprintf("  %2d. %s %-20s %s  (earth index %.2f, %s)\r\n",
			i+1, flag, e.Name,
			telnet.Colorf(telnet.BrightYellow, "%6d", e.Score),
			e.EarthIndex, e.Date))
	}
	return b.String()
}

// RenderLeaderboard formats shared leaderboard rows. Rows arrive already
// ordered best-first from the store.
func RenderLeaderboard(scores []postgres.GlobalScore) string {
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "=== Shared Leaderboard ==="))
	b.WriteString("\r\n")
	if len(scores) == 0 {
		b.WriteString(telnet.Colorize(telnet.Dim, "  No scores yet. Finish a game to claim the top spot."))
		b.WriteString("\r\n")
		return b.String()
	}
	if len(scores) > scoreboardLimit {
		scores = scores[:scoreboardLimit]
	}
	for i, s := range scores {
		flag := s.NationFlag
		if flag == "" {
			flag = "  "
		}
		b.WriteString(fmt.Sprintf("  %2d. %s %-20s %s  (earth index %.2f, %s)\r\n",
			i+1, flag, s.Name,
			telnet.Colorf(telnet.BrightYellow, "%6d", s.Score),
			s.EarthIndex, s.PlayedOn))
	}
	return b.String()
}

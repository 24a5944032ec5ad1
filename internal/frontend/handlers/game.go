package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/farmnav/farm-navigators/internal/assistant"
	"github.com/farmnav/farm-navigators/internal/frontend/telnet"
	"github.com/farmnav/farm-navigators/internal/game/card"
	"github.com/farmnav/farm-navigators/internal/game/rng"
	"github.com/farmnav/farm-navigators/internal/game/session"
	"github.com/farmnav/farm-navigators/internal/game/state"
	"github.com/farmnav/farm-navigators/internal/storage/postgres"
)

// Leaderboard reads the shared cross-account score table.
type Leaderboard interface {
	// TopN returns the highest scores in descending order.
	TopN(ctx context.Context, limit int) ([]postgres.GlobalScore, error)
}

// GameHandler runs the decision-card play loop for logged-in players. One
// GameHandler serves all connections; a fresh game session is created per
// login, keyed to the account's save slot.
type GameHandler struct {
	catalog   *card.Catalog
	newSource func() rng.Source
	saves     session.Saver
	sink      session.ScoreSink
	board     Leaderboard
	advisor   *assistant.Advisor
	drawDelay time.Duration
	logger    *zap.Logger
}

// NewGameHandler creates a GameHandler.
//
// Precondition: catalog, newSource, saves, and logger must be non-nil.
// sink, board, and advisor may be nil when those services are not
// configured.
func NewGameHandler(
	catalog *card.Catalog,
	newSource func() rng.Source,
	saves session.Saver,
	sink session.ScoreSink,
	board Leaderboard,
	advisor *assistant.Advisor,
	drawDelay time.Duration,
	logger *zap.Logger,
) *GameHandler {
	return &GameHandler{
		catalog:   catalog,
		newSource: newSource,
		saves:     saves,
		sink:      sink,
		board:     board,
		advisor:   advisor,
		drawDelay: drawDelay,
		logger:    logger,
	}
}

// Play runs the game loop for one logged-in player until they quit or the
// connection drops.
//
// Postcondition: Returns nil on clean quit, or the I/O error that ended
// the session.
func (h *GameHandler) Play(ctx context.Context, conn *telnet.Conn, acct postgres.Account) error {
	sess := session.New(h.catalog, h.newSource(), h.saves, acct.SaveSlot, acct.Username, h.sink, h.logger)

	if h.advisor != nil {
		events := make(chan session.Event, 8)
		sess.Subscribe(events)
		defer func() {
			sess.Unsubscribe(events)
			close(events)
		}()
		go h.advisor.Watch(events, func(advice string) {
			_ = conn.WriteLine(telnet.Colorf(telnet.Magenta, "[Advisor] %s", advice))
		})
	}

	if err := h.startOrResume(conn, sess); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Your game is saved."))
			return ctx.Err()
		default:
		}

		if sess.State().GameOver {
			quit, err := h.gameOverFlow(conn, sess)
			if err != nil || quit {
				return err
			}
			continue
		}

		c := sess.CurrentCard()
		if c == nil {
			// Should not happen outside terminal states, but never strand
			// the player without a prompt.
			sess.StartNewGame()
			continue
		}
		_ = conn.Write([]byte(RenderCard(c, sess.State().Turn, sess.RemainingCards())))

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "decision> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "l", "left":
			if err := h.decide(conn, sess, c, card.SideLeft); err != nil {
				return err
			}
		case "r", "right":
			if err := h.decide(conn, sess, c, card.SideRight); err != nil {
				return err
			}
		case "status":
			_ = conn.Write([]byte(RenderPillars(sess.State())))
		case "scores":
			_ = conn.Write([]byte(RenderScoreboard(sess.State().Scoreboard)))
		case "top":
			h.showLeaderboard(ctx, conn)
		case "reset":
			sess.ResetGame()
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Game reset. A fresh season begins."))
		case "help":
			h.showHelp(conn)
		case "quit", "exit":
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Your game is saved. Goodbye!"))
			return nil
		default:
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Choose 'left' or 'right', or type 'help'."))
		}
	}
}

// startOrResume offers to continue a saved game, falling back to a new one.
func (h *GameHandler) startOrResume(conn *telnet.Conn, sess *session.Session) error {
	if !sess.HasSave() {
		sess.StartNewGame()
		return nil
	}

	if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite,
		"A saved game exists. (C)ontinue or start (N)ew? ")); err != nil {
		return fmt.Errorf("writing prompt: %w", err)
	}
	line, err := conn.ReadLine()
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if s := strings.ToLower(strings.TrimSpace(line)); s == "n" || s == "new" {
		sess.ResetGame()
		return nil
	}
	if !sess.LoadGame() {
		_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "The save could not be read. Starting fresh."))
		sess.StartNewGame()
		return nil
	}
	_ = conn.WriteLine(telnet.Colorf(telnet.BrightGreen, "Resuming at season %d.", sess.State().Turn))
	return nil
}

// decide applies one decision and renders its result.
func (h *GameHandler) decide(conn *telnet.Conn, sess *session.Session, c *card.Card, side card.Side) error {
	if err := sess.MakeDecision(side); err != nil {
		switch {
		case errors.Is(err, card.ErrMissingOption):
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "That choice is not available on this card."))
		case errors.Is(err, session.ErrNoActiveCard):
			// Stale input after the game ended; the loop re-renders.
		default:
			h.logger.Error("decision failed", zap.String("card", c.ID), zap.Error(err))
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Something went wrong processing that decision."))
		}
		return nil
	}

	_ = conn.Write([]byte(RenderDecisionResult(c, side)))
	_ = conn.Write([]byte(RenderPillars(sess.State())))

	// A short beat before the next card, so the result text is readable.
	if h.drawDelay > 0 && !sess.State().GameOver {
		time.Sleep(h.drawDelay)
	}
	return nil
}

// gameOverFlow shows the summary, offers a scoreboard entry, and asks
// whether to play again. Returns true when the player wants to quit.
func (h *GameHandler) gameOverFlow(conn *telnet.Conn, sess *session.Session) (bool, error) {
	gs := sess.State()
	_ = conn.Write([]byte(RenderGameOver(gs)))

	if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite,
		"Enter a name for the scoreboard (blank to skip): ")); err != nil {
		return false, fmt.Errorf("writing prompt: %w", err)
	}
	name, err := conn.ReadLine()
	if err != nil {
		return false, fmt.Errorf("reading input: %w", err)
	}
	if name = strings.TrimSpace(name); name != "" {
		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite,
			"Nation flag (emoji or code, blank for none): ")); err != nil {
			return false, fmt.Errorf("writing prompt: %w", err)
		}
		flag, err := conn.ReadLine()
		if err != nil {
			return false, fmt.Errorf("reading input: %w", err)
		}
		sess.SaveScore(state.ScoreboardEntry{
			Name:       name,
			NationFlag: strings.TrimSpace(flag),
			Score:      state.FinalScore(gs),
			EarthIndex: gs.EarthIndex,
			Date:       time.Now().Format("2006-01-02"),
		})
		_ = conn.Write([]byte(RenderScoreboard(sess.State().Scoreboard)))
	}

	if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite,
		"Play again? (Y)es or (Q)uit: ")); err != nil {
		return false, fmt.Errorf("writing prompt: %w", err)
	}
	answer, err := conn.ReadLine()
	if err != nil {
		return false, fmt.Errorf("reading input: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "q", "quit", "n", "no":
		_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Thanks for playing. Goodbye!"))
		return true, nil
	default:
		sess.ResetGame()
		return false, nil
	}
}

// showLeaderboard renders the shared leaderboard, if one is configured.
func (h *GameHandler) showLeaderboard(ctx context.Context, conn *telnet.Conn) {
	if h.board == nil {
		_ = conn.WriteLine(telnet.Colorize(telnet.Dim, "No shared leaderboard is configured on this server."))
		return
	}
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	scores, err := h.board.TopN(queryCtx, scoreboardLimit)
	if err != nil {
		h.logger.Error("leaderboard query failed", zap.Error(err))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "The leaderboard is unavailable right now."))
		return
	}
	_ = conn.Write([]byte(RenderLeaderboard(scores)))
}

func (h *GameHandler) showHelp(conn *telnet.Conn) {
	help := telnet.Colorize(telnet.BrightWhite, "Game commands:") + "\r\n" +
		telnet.Colorize(telnet.Green, "  left / l") + "   — Take the left option\r\n" +
		telnet.Colorize(telnet.Green, "  right / r") + "  — Take the right option\r\n" +
		telnet.Colorize(telnet.Green, "  status") + "     — Show the four pillars and earth index\r\n" +
		telnet.Colorize(telnet.Green, "  scores") + "     — Show this farm's scoreboard\r\n" +
		telnet.Colorize(telnet.Green, "  top") + "        — Show the shared leaderboard\r\n" +
		telnet.Colorize(telnet.Green, "  reset") + "      — Abandon this game and start over\r\n" +
		telnet.Colorize(telnet.Green, "  quit") + "       — Save and disconnect\r\n"
	_ = conn.Write([]byte(help))
}

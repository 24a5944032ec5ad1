// Package session orchestrates a single player's game: it owns the live
// game state and the current card, and coordinates the deck, the turn
// processor, and persistence on every decision.
package session

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/farmnav/farm-navigators/internal/game/card"
	"github.com/farmnav/farm-navigators/internal/game/deck"
	"github.com/farmnav/farm-navigators/internal/game/rng"
	"github.com/farmnav/farm-navigators/internal/game/state"
	"github.com/farmnav/farm-navigators/internal/game/turn"
)

// ErrNoActiveCard is returned by MakeDecision when there is no card to
// decide on, either because no game is running or the game has ended.
var ErrNoActiveCard = errors.New("session: no active card")

// Event describes one completed decision, published to subscribers after
// the state has been persisted.
type Event struct {
	// Card is the card the decision was made on.
	Card *card.Card
	// Decision is the side the player chose.
	Decision card.Side
	// State is a snapshot of the game state after the decision.
	State state.GameState
}

// Saver is the persistence surface the session depends on. Implementations
// absorb storage failures internally.
type Saver interface {
	Save(slot string, gs state.GameState)
	Load(slot string) (state.GameState, bool)
	HasSave(slot string) bool
	ClearSave(slot string)
}

// ScoreSink receives scoreboard entries for publication beyond the local
// save, such as a shared leaderboard. Failures must be absorbed by the
// implementation.
type ScoreSink interface {
	Publish(playerName string, entry state.ScoreboardEntry)
}

// Session drives one player's game. All methods are safe for concurrent
// use.
//
// Invariant: Outside of method calls, the current card is non-nil exactly
// when a game is running and not terminal, except when the deck has been
// fully exhausted.
type Session struct {
	log        *zap.Logger
	store      Saver
	slot       string
	playerName string
	deck       *deck.Deck
	scoreSink  ScoreSink
	now        func() time.Time

	mu          sync.Mutex
	state       state.GameState
	current     *card.Card
	subscribers map[chan<- Event]struct{}
}

// New creates a Session for one player over the given catalog.
//
// Precondition: catalog, source, store, and log are non-nil; slot
// identifies this player's save. sink may be nil when no shared
// leaderboard is configured.
func New(catalog *card.Catalog, source rng.Source, store Saver, slot, playerName string, sink ScoreSink, log *zap.Logger) *Session {
	return &Session{
		log:         log,
		store:       store,
		slot:        slot,
		playerName:  playerName,
		deck:        deck.New(catalog.Cards(), source),
		scoreSink:   sink,
		now:         time.Now,
		state:       state.New(),
		subscribers: make(map[chan<- Event]struct{}),
	}
}

// Subscribe registers ch to receive an Event after each processed
// decision. If ch is full the event is dropped for that subscriber.
//
// Precondition: ch must not be nil.
func (s *Session) Subscribe(ch chan<- Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[ch] = struct{}{}
}

// Unsubscribe removes ch from the subscriber list.
func (s *Session) Unsubscribe(ch chan<- Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, ch)
}

// StartNewGame resets the deck and the game state and draws the first
// card. The scoreboard carries over; everything else returns to initial
// values.
func (s *Session) StartNewGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
	s.log.Info("new game started",
		zap.String("player", s.playerName),
		zap.Int("cardsRemaining", s.deck.RemainingCount()))
}

// LoadGame restores the last saved state for this player's slot and
// reports whether a save was found. On success a card is drawn so play
// can resume; a save that was already terminal resumes with no card.
func (s *Session) LoadGame() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, ok := s.store.Load(s.slot)
	if !ok {
		return false
	}
	s.state = saved
	// The deck is not persisted. Rebuild it fresh; already-played cards may
	// recur, which matches a resumed sitting closely enough.
	s.deck.Reset()
	s.current = nil
	if !s.state.GameOver {
		s.current = s.deck.Draw()
	}
	s.log.Info("game resumed from save",
		zap.String("player", s.playerName),
		zap.Int("turn", s.state.Turn))
	return true
}

// MakeDecision applies the player's choice on the current card.
//
// Returns ErrNoActiveCard when no card is held or the game is already
// over. A card whose chosen side is missing fails with
// card.ErrMissingOption and leaves the session unchanged, so the player
// can still take the other side.
//
// Postcondition: On success the new state has been persisted and either a
// next card is held (game still running) or the current card is cleared
// (terminal). Full deck exhaustion ends the game with a win.
func (s *Session) MakeDecision(side card.Side) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.state.GameOver {
		return ErrNoActiveCard
	}

	next, err := turn.Process(s.state, s.current, side, s.now())
	if err != nil {
		s.log.Error("decision rejected",
			zap.String("player", s.playerName),
			zap.String("card", s.current.ID),
			zap.String("side", string(side)),
			zap.Error(err))
		return err
	}

	impact, _ := s.current.Impact(side)
	next.EarthIndex = state.AdjustEarthIndex(next.EarthIndex, impact.Sustainability)

	played := s.current
	s.deck.Discard(played)
	s.state = next
	s.store.Save(s.slot, s.state)

	if s.state.GameOver {
		s.current = nil
	} else {
		s.current = s.deck.Draw()
		if s.current == nil {
			// Every card has been played. Surviving the whole catalog is a
			// win in its own right.
			s.state.GameOver = true
			s.state.GameResult = state.OutcomeWin
			s.store.Save(s.slot, s.state)
		}
	}

	s.log.Info("decision processed",
		zap.String("player", s.playerName),
		zap.String("card", played.ID),
		zap.String("side", string(side)),
		zap.Int("turn", s.state.Turn),
		zap.Bool("gameOver", s.state.GameOver))

	s.publishLocked(Event{Card: played, Decision: side, State: s.state.Clone()})
	return nil
}

// ResetGame clears the persisted save and starts a fresh game. The
// scoreboard survives the reset.
func (s *Session) ResetGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.ClearSave(s.slot)
	s.resetLocked()
	s.log.Info("game reset", zap.String("player", s.playerName))
}

// SaveScore appends entry to the scoreboard and persists immediately. The
// entry is also forwarded to the shared leaderboard when one is
// configured.
func (s *Session) SaveScore(entry state.ScoreboardEntry) {
	s.mu.Lock()
	s.state.Scoreboard = append(s.state.Scoreboard, entry)
	s.store.Save(s.slot, s.state)
	sink := s.scoreSink
	s.mu.Unlock()

	if sink != nil {
		sink.Publish(s.playerName, entry)
	}
}

// State returns a deep copy of the current game state.
func (s *Session) State() state.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// CurrentCard returns the card awaiting a decision, or nil when none is
// held.
func (s *Session) CurrentCard() *card.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// RemainingCards reports the current draw-pile size.
func (s *Session) RemainingCards() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.RemainingCount()
}

// HasSave reports whether a save exists for this player's slot.
func (s *Session) HasSave() bool {
	return s.store.HasSave(s.slot)
}

// resetLocked rebuilds deck and state, keeping the scoreboard, and draws
// the first card. Caller holds s.mu.
func (s *Session) resetLocked() {
	scoreboard := s.state.Scoreboard
	s.state = state.New()
	s.state.Scoreboard = scoreboard
	s.deck.Reset()
	s.current = s.deck.Draw()
	s.store.Save(s.slot, s.state)
}

// publishLocked fans ev out to all subscribers without blocking. Caller
// holds s.mu.
func (s *Session) publishLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

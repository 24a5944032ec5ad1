// Package deck manages the ordered draw pile and discard pile of scenario
// cards for a single game session.
package deck

import (
	"github.com/farmnav/farm-navigators/internal/game/card"
	"github.com/farmnav/farm-navigators/internal/game/rng"
)

// Deck holds a draw pile and a discard pile of scenario cards.
//
// Invariant: Every card handed to New appears in exactly one of the two
// piles at all times, except while the caller holds a drawn card that has
// not yet been discarded.
//
// Deck is not safe for concurrent use; the owning session serializes access.
type Deck struct {
	source  rng.Source
	initial []*card.Card
	draw    []*card.Card
	discard []*card.Card
}

// New creates a Deck containing the given cards, shuffled with source.
//
// Precondition: source is non-nil.
// Postcondition: RemainingCount() == len(cards) and the discard pile is
// empty.
func New(cards []*card.Card, source rng.Source) *Deck {
	d := &Deck{
		source:  source,
		initial: append([]*card.Card(nil), cards...),
	}
	d.Reset()
	return d
}

// Draw removes and returns the top card of the draw pile.
//
// When the draw pile is empty the discard pile is shuffled back in first.
// Returns nil only when both piles are empty, which the caller treats as
// full deck exhaustion.
func (d *Deck) Draw() *card.Card {
	if len(d.draw) == 0 {
		if len(d.discard) == 0 {
			return nil
		}
		d.draw = d.discard
		d.discard = nil
		d.shuffle()
	}
	top := d.draw[len(d.draw)-1]
	d.draw = d.draw[:len(d.draw)-1]
	return top
}

// Discard places a previously drawn card on the discard pile.
//
// Postcondition: The discard pile preserves insertion order until the next
// reshuffle.
func (d *Deck) Discard(c *card.Card) {
	if c == nil {
		return
	}
	d.discard = append(d.discard, c)
}

// RemainingCount reports the number of cards left in the draw pile. Cards
// in the discard pile are not counted.
func (d *Deck) RemainingCount() int {
	return len(d.draw)
}

// Reset restores the deck to its full initial contents and reshuffles.
//
// Postcondition: RemainingCount() equals the size of the initial card set
// and the discard pile is empty.
func (d *Deck) Reset() {
	d.draw = append([]*card.Card(nil), d.initial...)
	d.discard = nil
	d.shuffle()
}

// shuffle performs a Fisher-Yates shuffle of the draw pile in place.
func (d *Deck) shuffle() {
	for i := len(d.draw) - 1; i > 0; i-- {
		j := d.source.Intn(i + 1)
		d.draw[i], d.draw[j] = d.draw[j], d.draw[i]
	}
}

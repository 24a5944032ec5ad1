package deck_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/farmnav/farm-navigators/internal/game/card"
	"github.com/farmnav/farm-navigators/internal/game/deck"
	"github.com/farmnav/farm-navigators/internal/game/rng"
)

func makeCards(n int) []*card.Card {
	cards := make([]*card.Card, n)
	for i := range cards {
		cards[i] = &card.Card{
			ID:    fmt.Sprintf("card-%03d", i+1),
			Title: fmt.Sprintf("Scenario %d", i+1),
			Options: card.Options{
				Left:  &card.Option{ID: "l", Label: "Left"},
				Right: &card.Option{ID: "r", Label: "Right"},
			},
		}
	}
	return cards
}

func TestDeck_DrawEmptiesThePile(t *testing.T) {
	d := deck.New(makeCards(5), rng.NewSeededSource(1))
	require.Equal(t, 5, d.RemainingCount())

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		c := d.Draw()
		require.NotNil(t, c)
		assert.False(t, seen[c.ID], "each card is drawn at most once per pass")
		seen[c.ID] = true
	}
	assert.Equal(t, 0, d.RemainingCount())
	assert.Nil(t, d.Draw(), "an exhausted deck with an empty discard pile yields nil")
}

func TestDeck_ReshufflesDiscardOnExhaustion(t *testing.T) {
	d := deck.New(makeCards(3), rng.NewSeededSource(7))

	var discarded []string
	for i := 0; i < 3; i++ {
		c := d.Draw()
		require.NotNil(t, c)
		discarded = append(discarded, c.ID)
		d.Discard(c)
	}
	require.Equal(t, 0, d.RemainingCount())

	c := d.Draw()
	require.NotNil(t, c, "the discard pile is recycled when the draw pile empties")
	assert.Contains(t, discarded, c.ID)
	assert.Equal(t, 2, d.RemainingCount())
}

func TestDeck_UndiscardedCardsStayOut(t *testing.T) {
	d := deck.New(makeCards(2), rng.NewSeededSource(3))

	first := d.Draw()
	second := d.Draw()
	require.NotNil(t, first)
	require.NotNil(t, second)

	// Only the first card goes back. The second is still held by the caller,
	// so a reshuffle must not resurrect it.
	d.Discard(first)
	c := d.Draw()
	require.NotNil(t, c)
	assert.Equal(t, first.ID, c.ID)
	assert.Nil(t, d.Draw())
}

func TestDeck_ShuffleIsDeterministicForSeed(t *testing.T) {
	order := func(seed int64) []string {
		d := deck.New(makeCards(8), rng.NewSeededSource(seed))
		var ids []string
		for c := d.Draw(); c != nil; c = d.Draw() {
			ids = append(ids, c.ID)
		}
		return ids
	}

	assert.Equal(t, order(42), order(42), "the same seed produces the same draw order")
	assert.NotEqual(t, order(42), order(43), "different seeds produce different draw orders")
}

func TestDeck_ResetRestoresFullDeck(t *testing.T) {
	d := deck.New(makeCards(4), rng.NewSeededSource(5))

	d.Discard(d.Draw())
	d.Draw()
	require.Equal(t, 2, d.RemainingCount())

	d.Reset()
	assert.Equal(t, 4, d.RemainingCount(), "reset restores every card including held ones")

	seen := map[string]int{}
	for c := d.Draw(); c != nil; c = d.Draw() {
		seen[c.ID]++
	}
	assert.Len(t, seen, 4)
	for id, n := range seen {
		assert.Equal(t, 1, n, "card %s appears exactly once after reset", id)
	}
}

func TestDeck_DiscardNilIsIgnored(t *testing.T) {
	d := deck.New(makeCards(1), rng.NewSeededSource(1))
	d.Draw()
	d.Discard(nil)
	assert.Nil(t, d.Draw())
}

// TestDeck_Property_ShuffleIsPermutation verifies that shuffling never
// duplicates or loses cards regardless of deck size and seed.
func TestDeck_Property_ShuffleIsPermutation(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 30).Draw(rt, "size")
		seed := rapid.Int64().Draw(rt, "seed")

		d := deck.New(makeCards(n), rng.NewSeededSource(seed))
		require.Equal(rt, n, d.RemainingCount())

		seen := map[string]bool{}
		for c := d.Draw(); c != nil; c = d.Draw() {
			require.False(rt, seen[c.ID], "no card drawn twice")
			seen[c.ID] = true
		}
		require.Len(rt, seen, n, "every card drawn exactly once")
	})
}

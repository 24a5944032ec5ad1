// Package card defines the scenario card catalog for Farm Navigators.
//
// Cards are immutable authored content: each presents a farming scenario
// backed by a satellite data source and offers two decision options, each
// with its own pillar impact vector.
package card

import (
	"errors"
	"fmt"
)

// Side identifies one of a card's two decision options.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Valid reports whether s is a recognised decision side.
func (s Side) Valid() bool {
	return s == SideLeft || s == SideRight
}

// ErrMissingOption is returned when a card lacks an authored option for the
// requested decision side. This is a data-integrity error: the engine must
// not substitute a default impact for an option the author never wrote.
var ErrMissingOption = errors.New("card has no option for requested side")

// Impact is a per-option pillar impact vector. Components are small signed
// integers in authored content, but no static range is assumed.
type Impact struct {
	Economy        int `yaml:"economy" json:"economy"`
	Sustainability int `yaml:"sustainability" json:"sustainability"`
	Technology     int `yaml:"technology" json:"technology"`
	People         int `yaml:"people" json:"people"`
}

// Option is one of a card's two decision choices.
type Option struct {
	ID         string `yaml:"id"`
	Label      string `yaml:"label"`
	ResultText string `yaml:"result_text"`
}

// Options holds a card's two option slots keyed by side. A nil slot is a
// detectable authoring gap, not an out-of-bounds access.
type Options struct {
	Left  *Option `yaml:"left"`
	Right *Option `yaml:"right"`
}

// Impacts holds the per-side impact vectors.
type Impacts struct {
	Left  Impact `yaml:"left"`
	Right Impact `yaml:"right"`
}

// Metadata carries descriptive card attributes. The engine does not consume
// these; they are informational for display and content tooling.
type Metadata struct {
	// Probability is the authored appearance weight in [0, 1].
	Probability float64 `yaml:"probability"`
	// Region is the geographic context tag for the scenario.
	Region string `yaml:"region"`
}

// Card is one immutable scenario record.
type Card struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	DataSource  string   `yaml:"data_source"`
	Question    string   `yaml:"question"`
	Options     Options  `yaml:"options"`
	Impacts     Impacts  `yaml:"impacts"`
	Education   string   `yaml:"education"`
	Metadata    Metadata `yaml:"metadata"`
}

// Option returns the authored option for the given side.
//
// Postcondition: Returns ErrMissingOption if the side has no authored
// option, or an invalid-side error for an unrecognised side.
func (c *Card) Option(side Side) (Option, error) {
	var opt *Option
	switch side {
	case SideLeft:
		opt = c.Options.Left
	case SideRight:
		opt = c.Options.Right
	default:
		return Option{}, fmt.Errorf("card %s: invalid side %q", c.ID, side)
	}
	if opt == nil {
		return Option{}, fmt.Errorf("card %s, side %s: %w", c.ID, side, ErrMissingOption)
	}
	return *opt, nil
}

// Impact returns the impact vector for the given side. It fails with
// ErrMissingOption when the side has no authored option, so an impact is
// never applied for a choice the player could not legitimately make.
//
// Postcondition: Returns the side's Impact iff the side's option exists.
func (c *Card) Impact(side Side) (Impact, error) {
	if _, err := c.Option(side); err != nil {
		return Impact{}, err
	}
	if side == SideLeft {
		return c.Impacts.Left, nil
	}
	return c.Impacts.Right, nil
}

// Validate checks the card's structural invariants. A missing option side is
// NOT a validation failure here: the original content ships at least one
// such card, and the absence is surfaced at decision time instead.
//
// Postcondition: Returns nil if the card is structurally sound.
func (c *Card) Validate() error {
	var errs []string
	if c.ID == "" {
		errs = append(errs, "id must not be empty")
	}
	if c.Title == "" {
		errs = append(errs, "title must not be empty")
	}
	if c.Question == "" {
		errs = append(errs, "question must not be empty")
	}
	if c.Options.Left == nil && c.Options.Right == nil {
		errs = append(errs, "at least one option must be authored")
	}
	if c.Metadata.Probability < 0 || c.Metadata.Probability > 1 {
		errs = append(errs, fmt.Sprintf("metadata.probability must be in [0, 1], got %g", c.Metadata.Probability))
	}
	if len(errs) > 0 {
		return fmt.Errorf("card %q invalid: %s", c.ID, joinErrs(errs))
	}
	return nil
}

func joinErrs(errs []string) string {
	out := errs[0]
	for _, e := range errs[1:] {
		out += "; " + e
	}
	return out
}

// Catalog is an ordered, immutable collection of cards indexed by ID.
type Catalog struct {
	cards []*Card
	byID  map[string]*Card
}

// NewCatalog builds a Catalog from the given cards.
//
// Precondition: every card must pass Validate and IDs must be unique.
// Postcondition: Returns a Catalog preserving the input order, or an error.
func NewCatalog(cards []*Card) (*Catalog, error) {
	if len(cards) == 0 {
		return nil, errors.New("catalog must contain at least one card")
	}
	byID := make(map[string]*Card, len(cards))
	for _, c := range cards {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %q", c.ID)
		}
		byID[c.ID] = c
	}
	return &Catalog{cards: cards, byID: byID}, nil
}

// Cards returns the catalog's cards in authored order. The returned slice is
// a copy; the underlying cards are shared and must not be mutated.
func (cat *Catalog) Cards() []*Card {
	out := make([]*Card, len(cat.cards))
	copy(out, cat.cards)
	return out
}

// Get returns the card with the given ID.
//
// Postcondition: Returns (card, true) if found, or (nil, false) otherwise.
func (cat *Catalog) Get(id string) (*Card, bool) {
	c, ok := cat.byID[id]
	return c, ok
}

// Len returns the number of cards in the catalog.
func (cat *Catalog) Len() int {
	return len(cat.cards)
}

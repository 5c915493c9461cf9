package deck

import (
	"fmt"
	"math/rand/v2"

	"github.com/korjavin/catmoodbot/models"
)

// Deck is a session-scoped working copy of the catalog. A card drawn from a
// deck cannot come up again until Reset. Deck is not safe for concurrent use.
type Deck struct {
	catalog   []models.Card
	remaining []models.Card
	rng       *rand.Rand
}

// Option configures a Deck
type Option func(*Deck)

// WithRand sets the random source used by Draw
func WithRand(r *rand.Rand) Option {
	return func(d *Deck) {
		d.rng = r
	}
}

// NewDeck copies catalog into a fresh deck
func NewDeck(catalog []models.Card, opts ...Option) (*Deck, error) {
	if len(catalog) == 0 {
		return nil, &models.ConfigError{Source: "deck", Msg: "catalog is empty"}
	}
	seen := make(map[string]bool, len(catalog))
	for _, c := range catalog {
		if seen[c.Name] {
			return nil, &models.ConfigError{Source: "deck", Msg: fmt.Sprintf("duplicate card name %q", c.Name)}
		}
		seen[c.Name] = true
	}

	d := &Deck{
		catalog: append([]models.Card(nil), catalog...),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Reset()
	return d, nil
}

// Draw removes and returns a uniformly random card from the remaining set
func (d *Deck) Draw() (models.Card, error) {
	n := len(d.remaining)
	if n == 0 {
		return models.Card{}, models.ErrEmptyDeck
	}

	i := d.intN(n)
	card := d.remaining[i]
	d.remaining[i] = d.remaining[n-1]
	d.remaining = d.remaining[:n-1]
	return card, nil
}

// DrawN draws n distinct cards. If fewer than n remain nothing is drawn.
func (d *Deck) DrawN(n int) ([]models.Card, error) {
	if n > len(d.remaining) {
		return nil, fmt.Errorf("draw %d of %d: %w", n, len(d.remaining), models.ErrEmptyDeck)
	}
	cards := make([]models.Card, 0, n)
	for i := 0; i < n; i++ {
		c, err := d.Draw()
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// Reset restores the full catalog
func (d *Deck) Reset() {
	d.remaining = append(d.remaining[:0], d.catalog...)
}

// Remaining is the number of cards left to draw
func (d *Deck) Remaining() int {
	return len(d.remaining)
}

// Size is the number of cards in the full catalog
func (d *Deck) Size() int {
	return len(d.catalog)
}

func (d *Deck) intN(n int) int {
	if d.rng != nil {
		return d.rng.IntN(n)
	}
	return rand.IntN(n)
}

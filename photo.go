package arbor

import "math/rand/v2"

// PhotoCard is a user-supplied image mounted as a framed object among the
// particles. Like a particle it owns a tree and a scatter position; the
// focus layout is computed from the camera when the card is selected, not at
// creation.
type PhotoCard struct {
	Label         string
	TreeTarget    Vec3
	ScatterTarget Vec3
	Current       Vec3
}

// PhotoDeck is the session's append-only photo card list. Cards are created
// on image-load completion and never removed; at most one is the focus
// target at a time.
type PhotoDeck struct {
	cards      []*PhotoCard
	focus      int
	focusPoint Vec3
	shape      TreeShape
	shell      Range
	rng        *rand.Rand
}

// NewPhotoDeck creates an empty deck whose cards will sample tree positions
// from shape and scatter positions from the shell band.
func NewPhotoDeck(shape TreeShape, shell Range, rng *rand.Rand) *PhotoDeck {
	return &PhotoDeck{focus: -1, shape: shape, shell: shell, rng: rng}
}

// Add appends a card for a newly loaded image and returns it.
func (d *PhotoDeck) Add(label string) *PhotoCard {
	c := &PhotoCard{
		Label:         label,
		TreeTarget:    treePoint(d.rng, d.shape, 1),
		ScatterTarget: shellPoint(d.rng, d.shell),
	}
	c.Current = c.TreeTarget
	d.cards = append(d.cards, c)
	return c
}

// Count returns the number of cards in the deck.
func (d *PhotoDeck) Count() int { return len(d.cards) }

// Cards returns the deck's cards in insertion order.
func (d *PhotoDeck) Cards() []*PhotoCard { return d.cards }

// Select makes card i the focus target. Returns false for an out-of-range
// index, leaving the focus unchanged.
func (d *PhotoDeck) Select(i int) bool {
	if i < 0 || i >= len(d.cards) {
		return false
	}
	d.focus = i
	return true
}

// SelectRandom picks a uniformly random card as the focus target. Returns
// false when the deck is empty.
func (d *PhotoDeck) SelectRandom() (int, bool) {
	if len(d.cards) == 0 {
		return -1, false
	}
	d.focus = d.rng.IntN(len(d.cards))
	return d.focus, true
}

// ClearFocus drops the focus selection (leaving focus mode).
func (d *PhotoDeck) ClearFocus() { d.focus = -1 }

// FocusIndex returns the focused card's index, or -1.
func (d *PhotoDeck) FocusIndex() int { return d.focus }

// Focused returns the focused card, or nil.
func (d *PhotoDeck) Focused() *PhotoCard {
	if d.focus < 0 || d.focus >= len(d.cards) {
		return nil
	}
	return d.cards[d.focus]
}

// SetFocusPoint sets the world-space point the focused card eases toward in
// focus mode. The engine computes it in front of the camera on entry to
// focus, not per tick.
func (d *PhotoDeck) SetFocusPoint(p Vec3) { d.focusPoint = p }

// Update eases every card toward its target for the mode. In focus mode the
// selected card heads for the focus point while the rest keep their scatter
// positions.
func (d *PhotoDeck) Update(mode DisplayMode, easeRate float64) {
	for i, c := range d.cards {
		var target Vec3
		switch {
		case mode == ModeFocus && i == d.focus:
			target = d.focusPoint
		case mode == ModeTree:
			target = c.TreeTarget
		default:
			target = c.ScatterTarget
		}
		c.Current = c.Current.Add(target.Sub(c.Current).Scale(easeRate))
	}
}

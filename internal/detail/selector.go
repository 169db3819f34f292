// Package detail decides how the selected product is presented and turns a fetched
// product into the content both presentation surfaces render.
package detail

// Mode is the overlay state. The inline panel is not governed by it.
type Mode int

const (
	Closed Mode = iota
	Open
)

func (m Mode) String() string {
	if m == Open {
		return "open"
	}
	return "closed"
}

// Viewport is the width class of the display.
type Viewport int

const (
	Wide Viewport = iota
	Narrow
)

func (v Viewport) String() string {
	if v == Narrow {
		return "narrow"
	}
	return "wide"
}

// Classify puts width at or under threshold in the narrow class. An unknown width (<= 0)
// is narrow as well.
func Classify(width, threshold int) Viewport {
	if width <= threshold {
		return Narrow
	}
	return Wide
}

// Selector is the overlay state machine for one surface. It is open only while a product
// is selected, the viewport is narrow and the user has not dismissed it.
type Selector struct {
	id        int
	selected  bool
	dismissed bool
	viewport  Viewport
	mode      Mode
}

func NewSelector(v Viewport) *Selector {
	return &Selector{viewport: v}
}

// Select makes id the current selection. Any earlier dismissal is forgotten.
func (s *Selector) Select(id int) {
	s.id = id
	s.selected = true
	s.dismissed = false
	s.update()
}

func (s *Selector) Deselect() {
	s.id = 0
	s.selected = false
	s.dismissed = false
	s.update()
}

// Dismiss closes the overlay but keeps the selection, so the inline panel still shows it.
func (s *Selector) Dismiss() {
	if s.selected {
		s.dismissed = true
	}
	s.update()
}

// SetViewport closes the overlay on widening. Narrowing again reopens it unless the
// selection was dismissed.
func (s *Selector) SetViewport(v Viewport) {
	s.viewport = v
	s.update()
}

func (s *Selector) update() {
	if s.selected && !s.dismissed && s.viewport == Narrow {
		s.mode = Open
		return
	}
	s.mode = Closed
}

func (s *Selector) Mode() Mode {
	return s.mode
}

func (s *Selector) OverlayOpen() bool {
	return s.mode == Open
}

func (s *Selector) Selected() (int, bool) {
	return s.id, s.selected
}

func (s *Selector) Viewport() Viewport {
	return s.viewport
}

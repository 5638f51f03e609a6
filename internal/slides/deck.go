// Package slides steps through an ordered set of chart views on a single
// shared surface.
package slides

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"coffeeslides/internal/surface"
	"coffeeslides/internal/tooltip"
)

var (
	// ErrStaleRender is returned for hover events aimed at a render that has
	// since been replaced.
	ErrStaleRender = errors.New("stale render")
	// ErrOutOfRange is returned when jumping to a slide that does not exist.
	ErrOutOfRange = errors.New("slide index out of range")
)

// View is one slide: a name for the page and a renderer that draws it.
type View struct {
	Name   string
	Render func(*surface.Surface)
}

// Status describes the slide currently shown.
type Status struct {
	Index    int    `json:"index"`
	Count    int    `json:"count"`
	Name     string `json:"name"`
	RenderID string `json:"render_id"`
	Empty    bool   `json:"empty"`
}

// Frame is a slide's status together with the SVG drawn for it. Both come
// from the same render, so Frame.SVG always carries Status.RenderID.
type Frame struct {
	Status
	SVG []byte
}

// Deck owns the views, the current position, the surface and the tooltip.
// A mutex serialises navigation and hover so renders never interleave.
type Deck struct {
	mu      sync.Mutex
	views   []View
	index   int
	empty   bool
	surface *surface.Surface
	tip     *tooltip.Controller
	log     *zap.Logger
}

// Option configures a Deck.
type Option func(*Deck)

// WithEmptyData marks the deck's dataset as empty: views are never invoked
// and the surface stays cleared.
func WithEmptyData(empty bool) Option {
	return func(d *Deck) { d.empty = empty }
}

// WithLogger sets the deck's logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Deck) { d.log = l }
}

// New creates a deck over views drawing on s and sharing tip. Call Start to
// draw the first slide.
func New(views []View, s *surface.Surface, tip *tooltip.Controller, opts ...Option) (*Deck, error) {
	if len(views) == 0 {
		return nil, errors.New("deck needs at least one view")
	}
	d := &Deck{
		views:   views,
		surface: s,
		tip:     tip,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Start shows the first slide.
func (d *Deck) Start() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.show(0)
}

// Next advances one slide, wrapping from the last to the first.
func (d *Deck) Next() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.show((d.index + 1) % len(d.views))
}

// Prev goes back one slide, wrapping from the first to the last.
func (d *Deck) Prev() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.views)
	return d.show((d.index - 1 + n) % n)
}

// Show jumps to slide i.
func (d *Deck) Show(i int) (Status, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.views) {
		return d.status(), fmt.Errorf("show %d of %d: %w", i, len(d.views), ErrOutOfRange)
	}
	return d.show(i), nil
}

// Index returns the position of the current slide.
func (d *Deck) Index() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.index
}

// Len returns the number of slides.
func (d *Deck) Len() int {
	return len(d.views)
}

// Current describes the slide currently shown.
func (d *Deck) Current() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status()
}

// Names lists the slide names in order.
func (d *Deck) Names() []string {
	names := make([]string, len(d.views))
	for i, v := range d.views {
		names[i] = v.Name
	}
	return names
}

// Enter forwards a pointer-enter on a mark of the given render.
func (d *Deck) Enter(renderID, markID string, x, y float64) (tooltip.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if renderID != d.surface.RenderID() {
		return d.tip.State(), ErrStaleRender
	}
	if err := d.surface.Enter(markID, x, y); err != nil {
		return d.tip.State(), err
	}
	return d.tip.State(), nil
}

// Leave forwards a pointer-leave on a mark of the given render.
func (d *Deck) Leave(renderID, markID string) (tooltip.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if renderID != d.surface.RenderID() {
		return d.tip.State(), ErrStaleRender
	}
	if err := d.surface.Leave(markID); err != nil {
		return d.tip.State(), err
	}
	return d.tip.State(), nil
}

// Tooltip returns the current tooltip state.
func (d *Deck) Tooltip() tooltip.State {
	return d.tip.State()
}

// NextFrame advances like Next and returns the new slide's frame.
func (d *Deck) NextFrame() (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame(d.show((d.index + 1) % len(d.views)))
}

// PrevFrame goes back like Prev and returns the new slide's frame.
func (d *Deck) PrevFrame() (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.views)
	return d.frame(d.show((d.index - 1 + n) % n))
}

// ShowFrame jumps like Show and returns the new slide's frame.
func (d *Deck) ShowFrame(i int) (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.views) {
		return Frame{Status: d.status()}, fmt.Errorf("show %d of %d: %w", i, len(d.views), ErrOutOfRange)
	}
	return d.frame(d.show(i))
}

// CurrentFrame returns the frame of the slide currently shown.
func (d *Deck) CurrentFrame() (Frame, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frame(d.status())
}

// frame must be called with mu held.
func (d *Deck) frame(st Status) (Frame, error) {
	var buf bytes.Buffer
	if err := d.surface.WriteSVG(&buf); err != nil {
		return Frame{Status: st}, fmt.Errorf("draw slide %d: %w", st.Index, err)
	}
	return Frame{Status: st, SVG: buf.Bytes()}, nil
}

// show must be called with mu held.
func (d *Deck) show(i int) Status {
	d.index = i
	if d.empty {
		d.surface.Clear()
	} else {
		d.views[i].Render(d.surface)
	}
	st := d.status()
	d.log.Debug("slide rendered",
		zap.Int("index", st.Index),
		zap.String("name", st.Name),
		zap.String("render_id", st.RenderID),
		zap.Int("marks", len(d.surface.Marks())))
	return st
}

func (d *Deck) status() Status {
	return Status{
		Index:    d.index,
		Count:    len(d.views),
		Name:     d.views[d.index].Name,
		RenderID: d.surface.RenderID(),
		Empty:    d.empty,
	}
}

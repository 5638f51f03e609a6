// Package tooltip holds the single floating label shared by every chart.
package tooltip

import (
	"sync"
	"time"
)

// Fade durations and offsets from the pointer position.
const (
	ShowDuration = 200 * time.Millisecond
	HideDuration = 500 * time.Millisecond

	OffsetX = -40.0
	OffsetY = -60.0
)

// State is what the page needs to draw the tooltip. Opacity is the target
// of a transition lasting Duration.
type State struct {
	Content  string        `json:"content"`
	Left     float64       `json:"left"`
	Top      float64       `json:"top"`
	Opacity  float64       `json:"opacity"`
	Duration time.Duration `json:"-"`
	Visible  bool          `json:"visible"`

	DurationMS int64 `json:"duration_ms"`
}

// Controller owns the tooltip state. The last call wins.
type Controller struct {
	mu    sync.Mutex
	state State
}

// New returns a hidden tooltip.
func New() *Controller {
	return &Controller{}
}

// Show sets the content, positions the tooltip relative to the page point
// (x, y) and fades it in.
func (c *Controller) Show(content string, x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = State{
		Content:  content,
		Left:     x + OffsetX,
		Top:      y + OffsetY,
		Opacity:  1,
		Duration: ShowDuration,
		Visible:  true,
	}
}

// Hide fades the tooltip out. Content and position are left as they were.
func (c *Controller) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Opacity = 0
	c.state.Duration = HideDuration
	c.state.Visible = false
}

// State returns a snapshot of the tooltip.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.DurationMS = s.Duration.Milliseconds()
	return s
}

package tooltip

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInitiallyHidden(t *testing.T) {
	s := New().State()

	assert.False(t, s.Visible)
	assert.Equal(t, 0.0, s.Opacity)
	assert.Empty(t, s.Content)
}

func TestShowPositionsAndFadesIn(t *testing.T) {
	c := New()
	c.Show("Coffee: Latte\nTotal: $7.00", 300, 400)
	s := c.State()

	assert.True(t, s.Visible)
	assert.Equal(t, "Coffee: Latte\nTotal: $7.00", s.Content)
	assert.Equal(t, 260.0, s.Left)
	assert.Equal(t, 340.0, s.Top)
	assert.Equal(t, 1.0, s.Opacity)
	assert.Equal(t, 200*time.Millisecond, s.Duration)
	assert.Equal(t, int64(200), s.DurationMS)
}

func TestHideKeepsContent(t *testing.T) {
	c := New()
	c.Show("Cash Type: card\nTotal: $5.50", 100, 100)
	c.Hide()
	s := c.State()

	assert.False(t, s.Visible)
	assert.Equal(t, 0.0, s.Opacity)
	assert.Equal(t, HideDuration, s.Duration)
	assert.Equal(t, "Cash Type: card\nTotal: $5.50", s.Content)
	assert.Equal(t, 60.0, s.Left)
}

func TestLastCallWins(t *testing.T) {
	tests := []struct {
		name    string
		actions func(c *Controller)
		visible bool
		content string
	}{
		{
			name: "show then hide",
			actions: func(c *Controller) {
				c.Show("a", 0, 0)
				c.Hide()
			},
			visible: false,
			content: "a",
		},
		{
			name: "hide then show",
			actions: func(c *Controller) {
				c.Hide()
				c.Show("b", 0, 0)
			},
			visible: true,
			content: "b",
		},
		{
			name: "show replaces show",
			actions: func(c *Controller) {
				c.Show("a", 0, 0)
				c.Show("b", 10, 10)
			},
			visible: true,
			content: "b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			tt.actions(c)
			s := c.State()
			assert.Equal(t, tt.visible, s.Visible)
			assert.Equal(t, tt.content, s.Content)
		})
	}
}

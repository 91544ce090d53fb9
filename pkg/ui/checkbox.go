package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox is a simple UI widget for boolean values
type Checkbox struct {
	Label string
	Value bool
	X, Y  float64
	Size  float64
}

// NewCheckbox creates a new checkbox instance
func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{
		Label: label,
		Value: value,
		X:     x,
		Y:     y,
		Size:  16,
	}
}

func (c *Checkbox) contains(x, y float64) bool {
	return x >= c.X && x <= c.X+c.Size && y >= c.Y && y <= c.Y+c.Size
}

// Update toggles the value once per click.
func (c *Checkbox) Update() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if c.contains(float64(mx), float64(my)) {
		c.Value = !c.Value
	}
}

func (c *Checkbox) Draw(screen *ebiten.Image) {
	vector.StrokeRect(screen,
		float32(c.X), float32(c.Y),
		float32(c.Size), float32(c.Size),
		2,
		color.RGBA{R: 200, G: 200, B: 200, A: 255},
		true)

	if c.Value {
		vector.FillRect(screen,
			float32(c.X+2), float32(c.Y+2),
			float32(c.Size-4), float32(c.Size-4),
			color.RGBA{R: 100, G: 200, B: 100, A: 255},
			true)
	}
}

func (c *Checkbox) Height() float64 { return c.Size + 20 }

func (c *Checkbox) SetY(y float64) { c.Y = y }

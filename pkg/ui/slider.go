package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal bar mapping the cursor to a value in [Min, Max].
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	X, Y     float64
	W, H     float64
	Format   string // value label, "%.1f" by default

	dragging bool
}

// NewSlider creates a slider, clamping value into range.
func NewSlider(x, y, w float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label:  label,
		Min:    min,
		Max:    max,
		X:      x,
		Y:      y,
		W:      w,
		H:      12,
		Format: "%.1f",
	}
	s.Value = s.clamp(value)
	return s
}

func (s *Slider) clamp(v float64) float64 {
	return math.Min(math.Max(v, s.Min), s.Max)
}

func (s *Slider) contains(x, y float64) bool {
	return x >= s.X && x <= s.X+s.W && y >= s.Y && y <= s.Y+s.H
}

// valueAt maps a cursor x to a slider value.
func (s *Slider) valueAt(x float64) float64 {
	if s.W <= 0 {
		return s.Min
	}
	return s.clamp(s.Min + (x-s.X)/s.W*(s.Max-s.Min))
}

// Update follows a drag that started on the bar, even when the cursor leaves it.
func (s *Slider) Update() {
	mx, my := ebiten.CursorPosition()
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		s.dragging = false
		return
	}
	if !s.dragging && s.contains(float64(mx), float64(my)) {
		s.dragging = true
	}
	if s.dragging {
		s.Value = s.valueAt(float64(mx))
	}
}

func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf(s.Format, s.Value), int(s.X+s.W-40), int(s.Y-15))
}

func (s *Slider) Height() float64 { return s.H + 25 }

func (s *Slider) SetY(y float64) { s.Y = y }

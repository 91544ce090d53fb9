package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button is a clickable UI button
type Button struct {
	Label   string
	X, Y    float64
	Width   float64
	H       float64
	OnClick func()

	BGColor    color.RGBA
	HoverColor color.RGBA
}

// NewButton creates a new button instance
func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:      label,
		X:          x,
		Y:          y,
		Width:      width,
		H:          height,
		OnClick:    onClick,
		BGColor:    color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor: color.RGBA{R: 100, G: 150, B: 220, A: 255},
	}
}

func (b *Button) contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.H
}

// Click runs the callback, if any.
func (b *Button) Click() {
	if b.OnClick != nil {
		b.OnClick()
	}
}

// Update fires OnClick once per press over the button.
func (b *Button) Update() {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if b.contains(float64(mx), float64(my)) {
		b.Click()
	}
}

func (b *Button) Draw(screen *ebiten.Image) {
	mx, my := ebiten.CursorPosition()
	bg := b.BGColor
	if b.contains(float64(mx), float64(my)) {
		bg = b.HoverColor
	}

	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.H),
		bg, true)
	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.H),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, b.Label, int(b.X+6), int(b.Y+b.H/2-8))
}

func (b *Button) Height() float64 { return b.H + 8 }

func (b *Button) SetY(y float64) { b.Y = y }

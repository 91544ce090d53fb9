package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is implemented by everything the panel can stack.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64
	SetY(y float64)
}

const (
	titleHeight   = 30.0
	sectionHeight = 25.0
	labelHeight   = 15.0
)

type entry struct {
	label  string // drawn above the widget, empty for buttons
	widget Widget
}

type section struct {
	title   string
	entries []entry
}

// UIPanel stacks widgets in titled sections inside a scrollable box.
type UIPanel struct {
	X, Y          float64
	Width, Height float64
	Title         string
	ScrollOffset  float64

	BGColor     color.RGBA
	BorderColor color.RGBA

	sections []*section
}

// NewUIPanel creates a new UI panel
func NewUIPanel(x, y, width, height float64) *UIPanel {
	return &UIPanel{
		X:           x,
		Y:           y,
		Width:       width,
		Height:      height,
		Title:       "Configuration",
		BGColor:     color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor: color.RGBA{R: 100, G: 100, B: 110, A: 255},
	}
}

// AddSection starts a new section; following widgets go into it.
func (p *UIPanel) AddSection(title string) {
	p.sections = append(p.sections, &section{title: title})
}

func (p *UIPanel) add(label string, w Widget) {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	s := p.sections[len(p.sections)-1]
	s.entries = append(s.entries, entry{label: label, widget: w})
	p.layout()
}

func (p *UIPanel) AddSlider(label string, min, max, value float64) *Slider {
	s := NewSlider(p.X+10, 0, p.Width-20, label, min, max, value)
	p.add(label, s)
	return s
}

func (p *UIPanel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, 0, label, value)
	p.add(label, c)
	return c
}

func (p *UIPanel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, 0, p.Width-20, 24, label, onClick)
	p.add("", b)
	return b
}

// layout places every widget according to the scroll offset.
func (p *UIPanel) layout() {
	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		y += sectionHeight
		for _, e := range s.entries {
			if e.label != "" {
				y += labelHeight
			}
			e.widget.SetY(y)
			y += e.widget.Height()
		}
	}
}

// ContentHeight is the height of everything in the panel, unscrolled.
func (p *UIPanel) ContentHeight() float64 {
	h := titleHeight
	for _, s := range p.sections {
		h += sectionHeight
		for _, e := range s.entries {
			if e.label != "" {
				h += labelHeight
			}
			h += e.widget.Height()
		}
	}
	return h
}

// Scroll moves the content by dy pixels, within limits.
func (p *UIPanel) Scroll(dy float64) {
	maxScroll := max(p.ContentHeight()-p.Height+10, 0)
	p.ScrollOffset = min(max(p.ScrollOffset+dy, 0), maxScroll)
	p.layout()
}

// Contains reports whether a screen point is over the panel.
func (p *UIPanel) Contains(x, y float64) bool {
	return x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.Height
}

func (p *UIPanel) visible(y, h float64) bool {
	return y >= p.Y+titleHeight && y+h <= p.Y+p.Height
}

// Update handles scrolling and the visible widgets.
func (p *UIPanel) Update() {
	mx, my := ebiten.CursorPosition()
	if _, dy := ebiten.Wheel(); dy != 0 && p.Contains(float64(mx), float64(my)) {
		p.Scroll(-dy * 20)
	}
	p.each(func(label string, w Widget, y float64) {
		w.Update()
	})
}

// each calls fn for every widget currently inside the panel.
func (p *UIPanel) each(fn func(label string, w Widget, y float64)) {
	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		y += sectionHeight
		for _, e := range s.entries {
			top := y
			if e.label != "" {
				y += labelHeight
			}
			if p.visible(top, y-top+e.widget.Height()) {
				fn(e.label, e.widget, top)
			}
			y += e.widget.Height()
		}
	}
}

func (p *UIPanel) Draw(screen *ebiten.Image) {
	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	y := p.Y + titleHeight - p.ScrollOffset
	for _, s := range p.sections {
		if p.visible(y, sectionHeight) {
			vector.FillRect(screen,
				float32(p.X+5), float32(y),
				float32(p.Width-10), 20,
				color.RGBA{R: 60, G: 60, B: 70, A: 255}, true)
			ebitenutil.DebugPrintAt(screen, s.title, int(p.X+10), int(y+2))
		}
		y += sectionHeight
		for _, e := range s.entries {
			if e.label != "" {
				y += labelHeight
			}
			y += e.widget.Height()
		}
	}

	p.each(func(label string, w Widget, y float64) {
		if label != "" {
			ebitenutil.DebugPrintAt(screen, label, int(p.X+10), int(y))
		}
		w.Draw(screen)
	})
}

package simulation

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-boids/pkg/flock"
	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
)

var (
	colorWhite      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorBackground = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	colorWall       = color.RGBA{R: 90, G: 90, B: 110, A: 255}
	colorBoid       = color.RGBA{R: 100, G: 200, B: 255, A: 255}
	colorAvoiding   = color.RGBA{R: 255, G: 170, B: 60, A: 255}
	colorSelected   = color.RGBA{R: 255, G: 255, B: 120, A: 255}
	colorSeparation = color.RGBA{R: 255, G: 80, B: 80, A: 255}
	colorAlignment  = color.RGBA{R: 80, G: 255, B: 120, A: 255}
	colorCohesion   = color.RGBA{R: 120, G: 140, B: 255, A: 255}
	colorRay        = color.RGBA{R: 255, G: 255, B: 255, A: 60}
)

const (
	boidNose   = 8.0
	boidWing   = 6.0
	vectorSize = 40.0
)

// triangle returns the three corners of a boid pointing along heading.
func triangle(pos, heading geometry.Vector2D) [3]geometry.Vector2D {
	angle := heading.Angle()
	return [3]geometry.Vector2D{
		pos.Add(geometry.FromAngle(angle).Mul(boidNose)),
		pos.Add(geometry.FromAngle(angle + 2.5).Mul(boidWing)),
		pos.Add(geometry.FromAngle(angle - 2.5).Mul(boidWing)),
	}
}

func vertex(p geometry.Vector2D, c color.RGBA) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   float32(p.X),
		DstY:   float32(p.Y),
		SrcX:   1,
		SrcY:   1,
		ColorR: float32(c.R) / 255,
		ColorG: float32(c.G) / 255,
		ColorB: float32(c.B) / 255,
		ColorA: float32(c.A) / 255,
	}
}

// drawBoids batches every boid into a single DrawTriangles call.
func (g *Game) drawBoids(screen *ebiten.Image, selected int) {
	agents := g.snapshot.Agents
	vertices := make([]ebiten.Vertex, 0, 3*len(agents))
	indices := make([]uint16, 0, 3*len(agents))
	flush := func() {
		if len(vertices) > 0 {
			screen.DrawTriangles(vertices, indices, g.whiteImage, &ebiten.DrawTrianglesOptions{})
		}
		vertices, indices = vertices[:0], indices[:0]
	}

	for i := range agents {
		c := colorBoid
		switch {
		case i == selected:
			c = colorSelected
		case agents[i].Avoiding:
			c = colorAvoiding
		}
		if len(vertices)+3 > math.MaxUint16 {
			flush()
		}
		base := uint16(len(vertices))
		for _, p := range triangle(agents[i].Position, agents[i].Heading) {
			vertices = append(vertices, vertex(p, c))
		}
		indices = append(indices, base, base+1, base+2)
	}
	flush()
}

func (g *Game) drawWalls(screen *ebiten.Image) {
	for _, w := range g.snapshot.Walls {
		vector.FillRect(screen,
			float32(w.Left()), float32(w.Bottom()),
			float32(w.Right()-w.Left()), float32(w.Top()-w.Bottom()),
			colorWall, false)
	}
}

func strokeVector(screen *ebiten.Image, from, v geometry.Vector2D, c color.RGBA) {
	if v.IsZero() {
		return
	}
	to := from.Add(v.Normalize().Mul(vectorSize))
	vector.StrokeLine(screen, float32(from.X), float32(from.Y), float32(to.X), float32(to.Y), 2, c, true)
}

// drawDebug shows the radii, rule vectors and target heading of one agent,
// plus its ray fan under ray avoidance.
func (g *Game) drawDebug(screen *ebiten.Image, a *flock.Agent) {
	x, y := float32(a.Position.X), float32(a.Position.Y)

	if g.widgetShowRadii.Value {
		vector.StrokeCircle(screen, x, y, float32(a.Separation.Radius), 1, colorSeparation, true)
		vector.StrokeCircle(screen, x, y, float32(a.Alignment.Radius), 1, colorAlignment, true)
		vector.StrokeCircle(screen, x, y, float32(a.Cohesion.Radius), 1, colorCohesion, true)
	}

	if g.widgetShowVectors.Value {
		strokeVector(screen, a.Position, a.Rules.Separation, colorSeparation)
		strokeVector(screen, a.Position, a.Rules.Alignment, colorAlignment)
		strokeVector(screen, a.Position, a.Rules.Cohesion, colorCohesion)
		strokeVector(screen, a.Position, geometry.FromAngle(a.TargetHeading), colorSelected)
	}

	if len(g.snapshot.Walls) > 0 {
		b := g.cfg.Boundary
		for _, off := range flock.RayOrder(b.FieldOfView*math.Pi/180, b.RayCount) {
			to := a.Position.Add(a.Heading.Rotate(off).Mul(b.CastDistance))
			vector.StrokeLine(screen, x, y, float32(to.X), float32(to.Y), 1, colorRay, true)
		}
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	sum := g.snapshot.Summary()
	msg := fmt.Sprintf("%s\nFPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms",
		sum,
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg)

	op := &text.DrawOptions{}
	op.GeoM.Translate(g.cfg.WorldWidth-330, 20)
	op.ColorScale.ScaleWithColor(colorWhite)
	op.LineSpacing = 15
	text.Draw(screen, msg, g.face, op)

	if i := g.debugAgent(); i >= 0 {
		a := g.snapshot.Agents[i]
		ebitenutil.DebugPrintAt(screen,
			fmt.Sprintf("agent %d  heading %.0f°  target %.0f°", a.ID, a.Angle()*180/math.Pi, a.TargetHeading*180/math.Pi),
			int(g.cfg.WorldWidth-330), 130)
	}
	ebitenutil.DebugPrintAt(screen, "Space: debug overlay  Tab: next agent  P: pause",
		260, int(g.cfg.WorldHeight)-24)
}

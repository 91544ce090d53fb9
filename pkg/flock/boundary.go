package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids/pkg/geometry"
	"github.com/paulmach/orb"
)

// BoundaryPolicy keeps agents inside the simulation area.
// Apply adjusts snapshot-index self's live copy a after integration; it may
// read the snapshot but writes only to a.
type BoundaryPolicy interface {
	Apply(a *Agent, snapshot []Agent, self int)
}

func toPoint(v geometry.Vector2D) orb.Point {
	return orb.Point{v.X, v.Y}
}

// Wrap teleports an agent that left the bounds to the opposite edge on that
// axis. Heading is left untouched.
type Wrap struct {
	Bounds orb.Bound
}

func (w Wrap) Apply(a *Agent, _ []Agent, _ int) {
	switch {
	case a.Position.X > w.Bounds.Right():
		a.Position.X = w.Bounds.Left()
	case a.Position.X < w.Bounds.Left():
		a.Position.X = w.Bounds.Right()
	}
	switch {
	case a.Position.Y > w.Bounds.Top():
		a.Position.Y = w.Bounds.Bottom()
	case a.Position.Y < w.Bounds.Bottom():
		a.Position.Y = w.Bounds.Top()
	}
}

// RayAvoidance steers agents away from walls and other agents by probing a fan
// of rays in front of them.
//
// When the forward ray hits something within CastDistance, the fan is scanned
// from the center outward, alternating left (counter-clockwise) then right,
// and the first clear ray becomes the target heading. When every ray is
// blocked the agent turns a quarter turn to the left. While an escape heading
// is held, Agent.Avoiding is set so the rules do not override it.
type RayAvoidance struct {
	Bounds        orb.Bound
	FieldOfView   float64 // radians, whole arc
	RayCount      int
	CastDistance  float64
	BodySize      float64 // side of the square box around each agent
	WallThickness float64

	order []float64
	walls [4]orb.Bound
}

// NewRayAvoidance validates the parameters and precomputes the scan order
// and the four wall boxes lining the inside of bounds.
func NewRayAvoidance(bounds orb.Bound, fov float64, rays int, castDistance, bodySize, wallThickness float64) (*RayAvoidance, error) {
	if !(fov > 0) || fov > 2*math.Pi {
		return nil, configErr("boundary.fieldOfView", fov, "must be in (0, 2*Pi] radians")
	}
	if rays < 1 {
		return nil, configErr("boundary.rayCount", rays, "must be at least 1")
	}
	if !(castDistance > 0) {
		return nil, configErr("boundary.castDistance", castDistance, "must be positive")
	}
	if bodySize < 0 || wallThickness < 0 {
		return nil, configErr("boundary.bodySize", bodySize, "sizes must not be negative")
	}
	if bounds.IsEmpty() {
		return nil, configErr("bounds", bounds, "must not be empty")
	}
	l, r, b, t := bounds.Left(), bounds.Right(), bounds.Bottom(), bounds.Top()
	return &RayAvoidance{
		Bounds:        bounds,
		FieldOfView:   fov,
		RayCount:      rays,
		CastDistance:  castDistance,
		BodySize:      bodySize,
		WallThickness: wallThickness,
		order:         RayOrder(fov, rays),
		walls: [4]orb.Bound{
			{Min: orb.Point{l, t - wallThickness}, Max: orb.Point{r, t}}, // top
			{Min: orb.Point{r - wallThickness, b}, Max: orb.Point{r, t}}, // right
			{Min: orb.Point{l, b}, Max: orb.Point{r, b + wallThickness}}, // bottom
			{Min: orb.Point{l, b}, Max: orb.Point{l + wallThickness, t}}, // left
		},
	}, nil
}

// Walls returns the wall boxes, top, right, bottom, left.
func (r *RayAvoidance) Walls() [4]orb.Bound { return r.walls }

// RayOrder returns the angular offsets of a fan of n rays evenly spread over
// fov, in scan order: closest to the center first, left (positive) before
// right at equal distance.
func RayOrder(fov float64, n int) []float64 {
	if n <= 1 {
		return []float64{0}
	}
	spacing := fov / float64(n-1)
	offsets := make([]float64, 0, n)
	if n%2 == 1 {
		offsets = append(offsets, 0)
		for k := 1; k <= n/2; k++ {
			offsets = append(offsets, float64(k)*spacing, -float64(k)*spacing)
		}
		return offsets
	}
	for k := 0; k < n/2; k++ {
		off := (float64(k) + 0.5) * spacing
		offsets = append(offsets, off, -off)
	}
	return offsets
}

func (r *RayAvoidance) Apply(a *Agent, snapshot []Agent, self int) {
	// Last resort: hold the agent at the edge if it got through a wall.
	a.Position.X = math.Min(math.Max(a.Position.X, r.Bounds.Left()), r.Bounds.Right())
	a.Position.Y = math.Min(math.Max(a.Position.Y, r.Bounds.Bottom()), r.Bounds.Top())

	if !r.blocked(a.Position, a.Heading, snapshot, self) {
		a.Avoiding = false
		return
	}

	a.Avoiding = true
	for _, off := range r.order {
		dir := a.Heading.Rotate(off)
		if !r.blocked(a.Position, dir, snapshot, self) {
			a.TargetHeading = dir.Angle()
			return
		}
	}
	a.TargetHeading = a.Heading.Perp().Angle()
}

// blocked reports whether the ray from origin along dir meets a wall or another
// agent's box within CastDistance. Boxes that already contain the origin are
// overlaps, not obstacles ahead, and are ignored.
func (r *RayAvoidance) blocked(origin, dir geometry.Vector2D, snapshot []Agent, self int) bool {
	o := toPoint(origin)
	for _, w := range r.walls {
		if w.Contains(o) {
			// Inside a wall strip: anything heading further out is blocked.
			if c := r.Bounds.Center(); dir.Dot(geometry.Vector2D{X: c.X() - origin.X, Y: c.Y() - origin.Y}) <= 0 {
				return true
			}
			continue
		}
		if _, hit := RayHitsBound(origin, dir, r.CastDistance, w); hit {
			return true
		}
	}
	if r.BodySize <= 0 {
		return false
	}
	half := r.BodySize / 2
	selfID := snapshot[self].ID
	for j := range snapshot {
		if snapshot[j].ID == selfID {
			continue
		}
		box := snapshot[j].Position
		bound := orb.Bound{Min: toPoint(box), Max: toPoint(box)}.Pad(half)
		if bound.Contains(o) {
			continue
		}
		if _, hit := RayHitsBound(origin, dir, r.CastDistance, bound); hit {
			return true
		}
	}
	return false
}

// RayHitsBound intersects the segment origin + t*dir, t in [0, maxDist], with
// an axis-aligned box (slab method). dir must be a unit vector. It returns the
// entry distance.
func RayHitsBound(origin, dir geometry.Vector2D, maxDist float64, b orb.Bound) (float64, bool) {
	tMin, tMax := 0.0, maxDist
	o := [2]float64{origin.X, origin.Y}
	d := [2]float64{dir.X, dir.Y}
	for axis := 0; axis < 2; axis++ {
		lo, hi := b.Min[axis], b.Max[axis]
		if math.Abs(d[axis]) < geometry.Epsilon {
			if o[axis] < lo || o[axis] > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - o[axis]) / d[axis]
		t2 := (hi - o[axis]) / d[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

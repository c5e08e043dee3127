package build3d

import (
	"fmt"
	"math"

	"github.com/soypat/build3d/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

const epsilon = 1e-12

// Face is one planar polygon of a building shell. The ring is open,
// the closing edge from the last vertex back to the first is implied.
type Face struct {
	Ring []r3.Vec
}

// Building is a shell to reconstruct: an ordered list of faces at one
// level of detail. At LOD 2 the first face is the footprint and the
// last the roof outline, with wall faces in between.
type Building struct {
	ID    string
	LOD   int
	Faces []Face
}

// Footprint returns the horizontal outline of the building, the XY
// projection of the first face ring.
func (b *Building) Footprint() []r2.Vec {
	if len(b.Faces) == 0 {
		return nil
	}
	ring := b.Faces[0].Ring
	out := make([]r2.Vec, len(ring))
	for i, v := range ring {
		out[i] = r2.Vec{X: v.X, Y: v.Y}
	}
	return out
}

// Surface is the projection frame of one face. Points are expressed in
// plane coordinates (u, v, depth) where u runs along the first ring
// edge, v completes the plane and depth is the signed offset along the
// face normal.
type Surface struct {
	Index  int
	Origin r3.Vec
	E0     r3.Vec
	E1     r3.Vec
	E2     r3.Vec

	// Projected holds the ring vertices in plane coordinates, index
	// aligned with the face ring.
	Projected []r2.Vec
	Bounds    r2.Box
	Area      float64
}

// NewSurface derives the projection frame of face index. It fails with
// ErrDegenerateGeometry when the ring cannot support one.
func NewSurface(index int, f Face) (*Surface, error) {
	ring := f.Ring
	if len(ring) < 3 {
		return nil, fmt.Errorf("face %d has %d vertices: %w", index, len(ring), ErrDegenerateGeometry)
	}
	origin := ring[0]
	v0 := r3.Sub(ring[1], origin)
	v1 := r3.Sub(ring[len(ring)-1], origin)
	normal := r3.Cross(v0, v1)
	if r3.Norm(v0) <= epsilon || r3.Norm(normal) <= epsilon {
		return nil, fmt.Errorf("face %d frame collapsed: %w", index, ErrDegenerateGeometry)
	}
	s := &Surface{
		Index:  index,
		Origin: origin,
		E0:     r3.Unit(v0),
		E1:     r3.Unit(r3.Cross(normal, v0)),
		E2:     r3.Unit(normal),
	}
	s.Projected = make([]r2.Vec, len(ring))
	for i, v := range ring {
		p := s.Project(v)
		s.Projected[i] = r2.Vec{X: p.X, Y: p.Y}
	}
	outline := d2.Ring(s.Projected)
	s.Bounds = r2.Box(outline.Bounds())
	s.Area = math.Abs(outline.Area())
	if s.Area <= epsilon {
		return nil, fmt.Errorf("face %d has zero area: %w", index, ErrDegenerateGeometry)
	}
	if outline.SelfIntersects() {
		return nil, fmt.Errorf("face %d outline self-intersects: %w", index, ErrDegenerateGeometry)
	}
	return s, nil
}

// Project expresses p in the plane frame. X and Y are the in-plane
// coordinates, Z the signed distance from the face plane.
func (s *Surface) Project(p r3.Vec) r3.Vec {
	d := r3.Sub(p, s.Origin)
	return r3.Vec{
		X: r3.Dot(d, s.E0),
		Y: r3.Dot(d, s.E1),
		Z: r3.Dot(d, s.E2),
	}
}

// ProjectAll projects every point into the plane frame.
func (s *Surface) ProjectAll(pts []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(pts))
	for i, p := range pts {
		out[i] = s.Project(p)
	}
	return out
}

// Normal returns the unit face normal.
func (s *Surface) Normal() r3.Vec { return s.E2 }

// Contains reports whether the plane coordinates q fall inside the
// face bounding box, boundary included.
func (s *Surface) Contains(q r2.Vec) bool {
	return d2.Box(s.Bounds).Contains(q)
}

package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Ring is a closed polygon boundary described by its vertices in order.
// The closing vertex is implicit: the last vertex connects back to the
// first and is not repeated.
type Ring []r2.Vec

// Area returns the signed area of the ring. Counterclockwise windings
// have positive area.
func (r Ring) Area() float64 {
	if len(r) < 3 {
		return 0
	}
	area := 0.0
	for i, v := range r {
		w := r[(i+1)%len(r)]
		area += v.X*w.Y - w.X*v.Y
	}
	return area / 2
}

// Bounds returns the bounding box of the ring vertices.
func (r Ring) Bounds() Box {
	s := Set(r)
	return Box{Min: s.Min(), Max: s.Max()}
}

// Contains returns true if p is inside the ring by the even-odd rule.
// Points on the boundary may fall on either side.
func (r Ring) Contains(p r2.Vec) bool {
	inside := false
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		vi := r[i]
		vj := r[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) &&
			p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
	}
	return inside
}

// DistToBoundary returns the distance from p to the nearest ring edge.
func (r Ring) DistToBoundary(p r2.Vec) float64 {
	minDist := math.MaxFloat64
	for i, v := range r {
		w := r[(i+1)%len(r)]
		if d := distToSegment(p, v, w); d < minDist {
			minDist = d
		}
	}
	return minDist
}

// SelfIntersects returns true if any two non-adjacent ring edges
// properly cross.
func (r Ring) SelfIntersects() bool {
	n := len(r)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue // adjacent through the closing edge
			}
			if segmentsCross(r[i], r[(i+1)%n], r[j], r[(j+1)%n]) {
				return true
			}
		}
	}
	return false
}

// distToSegment returns the distance from p to the segment joining a and b.
func distToSegment(p, a, b r2.Vec) float64 {
	ab := r2.Sub(b, a)
	ab2 := r2.Norm2(ab)
	if ab2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / ab2
	t = math.Min(1, math.Max(0, t))
	closest := r2.Add(a, r2.Scale(t, ab))
	return r2.Norm(r2.Sub(p, closest))
}

// segmentsCross returns true if segments ab and cd properly cross.
// Touching endpoints and collinear overlaps do not count as crossings.
func segmentsCross(a, b, c, d r2.Vec) bool {
	o1 := d2Sign(b, c, a)
	o2 := d2Sign(b, d, a)
	o3 := d2Sign(d, a, c)
	o4 := d2Sign(d, b, c)
	return o1*o2 < 0 && o3*o4 < 0
}

func d2Sign(p1, p2, p3 r2.Vec) float64 {
	return (p1.X-p3.X)*(p2.Y-p3.Y) - (p2.X-p3.X)*(p1.Y-p3.Y)
}

package d2

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestRingArea(t *testing.T) {
	square := Ring{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	if got := square.Area(); got != 1 {
		t.Errorf("ccw square area = %g, want 1", got)
	}
	clockwise := Ring{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
	if got := clockwise.Area(); got != -1 {
		t.Errorf("cw square area = %g, want -1", got)
	}
	tri := Ring{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 3}}
	if got := tri.Area(); got != 6 {
		t.Errorf("triangle area = %g, want 6", got)
	}
	degenerate := Ring{{X: 0, Y: 0}, {X: 1, Y: 1}}
	if got := degenerate.Area(); got != 0 {
		t.Errorf("2-vertex ring area = %g, want 0", got)
	}
}

func TestRingContains(t *testing.T) {
	lshape := Ring{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1},
		{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
	}
	for _, tc := range []struct {
		p  r2.Vec
		in bool
	}{
		{r2.Vec{X: 0.5, Y: 0.5}, true},
		{r2.Vec{X: 1.5, Y: 0.5}, true},
		{r2.Vec{X: 0.5, Y: 1.5}, true},
		{r2.Vec{X: 1.5, Y: 1.5}, false}, // inside bbox, outside the L
		{r2.Vec{X: -1, Y: 0.5}, false},
		{r2.Vec{X: 3, Y: 3}, false},
	} {
		if got := lshape.Contains(tc.p); got != tc.in {
			t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.in)
		}
	}
}

func TestRingDistToBoundary(t *testing.T) {
	square := Ring{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	for _, tc := range []struct {
		p    r2.Vec
		want float64
	}{
		{r2.Vec{X: 1, Y: 1}, 1},       // center, nearest edge 1 away
		{r2.Vec{X: 3, Y: 1}, 1},       // right of the square
		{r2.Vec{X: 3, Y: 3}, math.Sqrt2}, // past the corner
		{r2.Vec{X: 1, Y: 0}, 0},       // on the boundary
	} {
		if got := square.DistToBoundary(tc.p); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("DistToBoundary(%v) = %g, want %g", tc.p, got, tc.want)
		}
	}
}

func TestRingSelfIntersects(t *testing.T) {
	for _, tc := range []struct {
		name string
		ring Ring
		want bool
	}{
		{"square", Ring{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, false},
		{"triangle", Ring{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, false},
		{"bowtie", Ring{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}}, true},
		{"zigzag", Ring{
			{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 2},
			{X: 1, Y: 2}, {X: 1, Y: 1}, {X: 2, Y: 1},
			{X: 2, Y: 3}, {X: 0, Y: 3},
		}, true},
	} {
		if got := tc.ring.SelfIntersects(); got != tc.want {
			t.Errorf("%s: SelfIntersects = %v, want %v", tc.name, got, tc.want)
		}
	}
}

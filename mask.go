package build3d

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Method selects how prepared points are assigned to faces for
// texturing.
type Method string

const (
	// MethodAll rasterizes every prepared point onto every face.
	MethodAll Method = "all"
	// MethodNearest keeps the points whose nearest face is the target
	// and whose distance carries no bounds penalty.
	MethodNearest Method = "nearest"
	// MethodSmart narrows MethodNearest with a depth window fitted to
	// the points that fall inside the face bounding box.
	MethodSmart Method = "smart"
)

// ParseMethod maps a user supplied string to a Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(s)); m {
	case MethodAll, MethodNearest, MethodSmart:
		return m, nil
	}
	return "", fmt.Errorf("unknown texturing method %q", s)
}

func maskAll(n int) []bool {
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

// maskNearest picks the points won by face k at a credible distance.
func maskNearest(m *distanceMatrix, nearest []int, k int) []bool {
	mask := make([]bool, len(nearest))
	r := m.faceRow[k]
	if r < 0 {
		return mask
	}
	row := m.rows[r]
	for i, nf := range nearest {
		mask[i] = nf == k && row[i] < nearDistanceCut
	}
	return mask
}

// maskSmart fits a depth window to the points won by the face inside
// its bounding box, then keeps the won points whose depth falls in the
// window. The window reaches at least one meter to both sides of the
// plane and at most ten meters behind it. No point inside the box
// means an empty mask.
func maskSmart(s *Surface, m *distanceMatrix, nearest []int, projected []r3.Vec) []bool {
	mask := make([]bool, len(nearest))
	if m.faceRow[s.Index] < 0 {
		return mask
	}
	zmin, zmax := math.Inf(1), math.Inf(-1)
	found := false
	for i, nf := range nearest {
		if nf != s.Index || !s.Contains(r2.Vec{X: projected[i].X, Y: projected[i].Y}) {
			continue
		}
		found = true
		if z := projected[i].Z; z < zmin {
			zmin = z
		}
		if z := projected[i].Z; z > zmax {
			zmax = z
		}
	}
	if !found {
		return mask
	}
	lo := math.Min(math.Max(zmin, -10), -1)
	hi := math.Max(1, zmax)
	for i, nf := range nearest {
		if nf != s.Index {
			continue
		}
		z := projected[i].Z
		mask[i] = z >= lo && z <= hi
	}
	return mask
}

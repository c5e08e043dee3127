package build3d

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/build3d/pointcloud"
)

// Distances are meters, stored as float32. A survey cloud of half a
// million points keeps a full row at 2 MB.
const (
	// boundsPenalty is added to points whose in-plane position falls
	// outside the face bounding box, and to the footprint and roof
	// outline rows at LOD 1.
	boundsPenalty = 999.9
	// nearDistanceCut drops penalized entries from nearest-face masks.
	nearDistanceCut = 999.0
	// proximityCutoff excludes faces whose closest point is farther
	// than this from point assignment.
	proximityCutoff = 10.0
)

// distanceVector scores every projected point against one face: the
// unsigned depth, pushed behind credible matches when the point falls
// outside the face bounds.
func distanceVector(s *Surface, projected []r3.Vec) []float32 {
	row := make([]float32, len(projected))
	for i, p := range projected {
		d := math32.Abs(float32(p.Z))
		if !s.Contains(r2.Vec{X: p.X, Y: p.Y}) {
			d += boundsPenalty
		}
		row[i] = d
	}
	return row
}

// distanceMatrix holds one row of point distances per surviving face.
type distanceMatrix struct {
	rows [][]float32
	// faceRow maps face index to its row, -1 when the face was dropped
	// by the proximity cutoff.
	faceRow []int
	npoints int
}

// newDistanceMatrix projects the cloud onto every face and keeps the
// rows of faces whose nearest point lies within cutoff. At LOD 1 the
// footprint and roof outline rows of surviving faces are penalized
// after the cut, so wall faces win point assignment.
func newDistanceMatrix(surfaces []*Surface, cloud *pointcloud.Cloud, lod int, cutoff float32, budget *memBudget, log *zap.Logger) (*distanceMatrix, error) {
	n := cloud.Len()
	m := &distanceMatrix{faceRow: make([]int, len(surfaces)), npoints: n}
	rowBytes := int64(n) * 4
	projBytes := int64(n) * 24
	for k, s := range surfaces {
		m.faceRow[k] = -1
		if n == 0 {
			continue
		}
		if err := budget.grow(rowBytes + projBytes); err != nil {
			return nil, err
		}
		row := distanceVector(s, s.ProjectAll(cloud.Points))
		budget.release(projBytes)
		if minf32(row) > cutoff {
			budget.release(rowBytes)
			log.Debug("face beyond proximity cutoff", zap.Int("face", k))
			continue
		}
		m.faceRow[k] = len(m.rows)
		m.rows = append(m.rows, row)
	}
	if lod == 1 {
		m.penalizeCaps(len(surfaces))
	}
	return m, nil
}

// penalizeCaps pushes the footprint and roof outline rows behind every
// wall row. With fewer than two faces there is nothing to prefer.
func (m *distanceMatrix) penalizeCaps(nfaces int) {
	if nfaces < 2 {
		return
	}
	for _, k := range [2]int{0, nfaces - 1} {
		if r := m.faceRow[k]; r >= 0 {
			row := m.rows[r]
			for i := range row {
				row[i] += boundsPenalty
			}
		}
	}
}

// nearestFace returns the winning face index per point, -1 where no
// face survived. Ties go to the lowest face index.
func (m *distanceMatrix) nearestFace() []int {
	out := make([]int, m.npoints)
	for i := range out {
		out[i] = -1
	}
	if len(m.rows) == 0 {
		return out
	}
	rowFace := make([]int, len(m.rows))
	for k, r := range m.faceRow {
		if r >= 0 {
			rowFace[r] = k
		}
	}
	for i := 0; i < m.npoints; i++ {
		best := m.rows[0][i]
		bestRow := 0
		for r := 1; r < len(m.rows); r++ {
			if m.rows[r][i] < best {
				best = m.rows[r][i]
				bestRow = r
			}
		}
		out[i] = rowFace[bestRow]
	}
	return out
}

// columnMin returns the smallest distance to any surviving face, per
// point. Empty matrices yield nil.
func (m *distanceMatrix) columnMin() []float32 {
	if len(m.rows) == 0 {
		return nil
	}
	out := make([]float32, m.npoints)
	copy(out, m.rows[0])
	for _, row := range m.rows[1:] {
		for i, d := range row {
			if d < out[i] {
				out[i] = d
			}
		}
	}
	return out
}

// bytes reports the retained row storage for budget release.
func (m *distanceMatrix) bytes() int64 {
	return int64(len(m.rows)) * int64(m.npoints) * 4
}

func minf32(xs []float32) float32 {
	min := math32.Inf(1)
	for _, x := range xs {
		if x < min {
			min = x
		}
	}
	return min
}

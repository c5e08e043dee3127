package pointcloud

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Downsample returns a cloud with at most one point per cubic voxel of
// edge length grid. The first point encountered in each occupied voxel
// is kept as the representative, so the result is deterministic and
// preserves input order. grid must be positive.
func (c *Cloud) Downsample(grid float64) *Cloud {
	if grid <= 0 || c.Len() == 0 {
		return c
	}
	seen := make(map[[3]int64]struct{}, c.Len())
	out := New(c.Len() / 2)
	inv := 1.0 / grid
	for i, p := range c.Points {
		key := voxelKey(p, inv)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out.Append(p, c.Colors[i])
	}
	return out
}

func voxelKey(p r3.Vec, inv float64) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X * inv)),
		int64(math.Floor(p.Y * inv)),
		int64(math.Floor(p.Z * inv)),
	}
}

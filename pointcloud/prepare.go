package pointcloud

import (
	"errors"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/soypat/build3d/internal/d2"
)

// ErrEmptyInput is returned when cropping leaves no points. Callers may
// continue texturing with an empty cloud; every face then receives the
// gray fallback image.
var ErrEmptyInput = errors.New("no points left after cropping")

const (
	// DefaultBuffer is the horizontal margin in meters added around the
	// footprint when cropping.
	DefaultBuffer = 1.0
	// DefaultBaseGrid is the finest voxel edge length in meters used by
	// downsampling.
	DefaultBaseGrid = 0.01
	// DefaultPointLimit is the point count ceiling after preparation,
	// applied when no limit is given. A negative limit disables
	// downsampling.
	DefaultPointLimit = 500000

	// Vertical extent of the crop prism.
	cropMinZ = 0.0
	cropMaxZ = 300.0
)

// PrepareOptions control Prepare. A non-positive Buffer or BaseGrid
// and a zero PointLimit select the defaults; a negative PointLimit
// disables the limit.
type PrepareOptions struct {
	Buffer     float64
	BaseGrid   float64
	PointLimit int
	Logger     *zap.Logger
}

// Crop returns the points whose horizontal position lies inside the
// footprint ring buffered outward by buffer and whose height lies in
// [0, 300].
func Crop(c *Cloud, footprint []r2.Vec, buffer float64) *Cloud {
	out := New(c.Len())
	ring := d2.Ring(footprint)
	if len(ring) < 3 {
		return out
	}
	bb := ring.Bounds().Enlarge(d2.Elem(2 * buffer))
	for i, p := range c.Points {
		if p.Z < cropMinZ || p.Z > cropMaxZ {
			continue
		}
		q := r2.Vec{X: p.X, Y: p.Y}
		if !bb.Contains(q) {
			continue
		}
		if ring.Contains(q) || ring.DistToBoundary(q) <= buffer {
			out.Append(p, c.Colors[i])
		}
	}
	return out
}

// Prepare crops the cloud to the buffered footprint prism and
// downsamples it until it holds at most PointLimit points. Each
// downsampling pass resamples the cropped cloud with a voxel edge grown
// by a factor of sqrt 2. The returned grid size is the last voxel edge
// applied, or the base grid when no downsampling was needed; it becomes
// the finest raster resolution for texturing.
//
// A cloud emptied by cropping is reported as ErrEmptyInput together
// with the empty cloud and base grid, so the caller can proceed to
// fallback texturing.
func Prepare(c *Cloud, footprint []r2.Vec, opts PrepareOptions) (*Cloud, float64, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	base := opts.BaseGrid
	if base <= 0 {
		base = DefaultBaseGrid
	}
	limit := opts.PointLimit
	if limit == 0 {
		limit = DefaultPointLimit
	}

	cropped := Crop(c, footprint, buffer)
	log.Debug("cropped point cloud",
		zap.Int("in", c.Len()), zap.Int("out", cropped.Len()))
	if cropped.Len() == 0 {
		return cropped, base, ErrEmptyInput
	}

	out := cropped
	grid := base
	applied := base
	for limit > 0 && out.Len() > limit {
		out = cropped.Downsample(grid)
		applied = grid
		log.Debug("downsampled point cloud",
			zap.Float64("grid", grid), zap.Int("points", out.Len()))
		grid *= math.Sqrt2
	}
	return out, applied, nil
}

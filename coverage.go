package build3d

import (
	"context"

	"go.uber.org/zap"
)

// DefaultNearWallThreshold is the wall proximity cut in meters used by
// CountPointsNearWalls when the caller passes no threshold.
const DefaultNearWallThreshold = 1.0

// CountPointsNearWalls reports how many prepared points lie within
// threshold meters of a shell face, a cheap measure of how well the
// survey cloud covers the building. A non-positive threshold selects
// DefaultNearWallThreshold. Faces whose closest point is beyond the
// threshold do not contribute.
func (j *Job) CountPointsNearWalls(ctx context.Context, buildingID string, threshold float64) (int, error) {
	if threshold <= 0 {
		threshold = DefaultNearWallThreshold
	}
	log := j.opts.Logger.With(zap.String("building", buildingID))
	st, err := j.load(ctx, buildingID, log)
	if err != nil {
		return 0, err
	}
	if st.cloud.Len() == 0 {
		return 0, nil
	}
	budget := newMemBudget(j.opts.MemoryLimitMB << 20)
	m, err := newDistanceMatrix(st.surfaces, st.cloud, j.opts.LOD, float32(threshold), budget, log)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, d := range m.columnMin() {
		if d <= float32(threshold) {
			count++
		}
	}
	return count, nil
}

// SurfaceArea returns the summed area of the shell faces in square
// meters.
func (j *Job) SurfaceArea(ctx context.Context, buildingID string) (float64, error) {
	_, surfaces, err := j.shell(ctx, buildingID)
	if err != nil {
		return 0, err
	}
	total := 0.0
	for _, s := range surfaces {
		total += s.Area
	}
	return total, nil
}

package build3d

import "errors"

// Sentinel errors of the reconstruction pipeline. Sink write failures
// are surfaced as-is and carry no sentinel.
var (
	// ErrNotFound reports a building id and LOD combination absent
	// from the building source.
	ErrNotFound = errors.New("building not found")

	// ErrDegenerateGeometry reports a face ring that cannot support a
	// projection frame: fewer than three vertices, a collapsed first
	// edge, zero area or a self-intersecting outline.
	ErrDegenerateGeometry = errors.New("degenerate face geometry")

	// ErrResourceExhausted reports that the memory ceiling was reached
	// while building distance matrices or texture rasters. The job is
	// aborted and any partial output should be discarded.
	ErrResourceExhausted = errors.New("memory budget exhausted")
)

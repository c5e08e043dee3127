// Package build3d reconstructs textured 3D building models from aerial
// survey point clouds. Given the shell faces of a building and the
// colored points around it, a reconstruction job crops and thins the
// cloud, assigns points to faces, rasterizes one texture image per
// face and emits a wavefront OBJ/MTL model through a file sink.
package build3d

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/build3d/internal/d2"
	"github.com/soypat/build3d/pointcloud"
)

// Options configure a reconstruction job. The zero value of every
// field selects its default.
type Options struct {
	// LOD is the level of detail of the shell, 1 or 2. Default 2.
	LOD int
	// Method selects the point mapping policy. Default MethodSmart;
	// unrecognized methods rasterize as smart.
	Method Method
	// ImageSize bounds the long side of face textures in pixels.
	// Default DefaultImageSize.
	ImageSize int
	// PointLimit caps the prepared cloud. Zero selects 500000,
	// negative disables the cap.
	PointLimit int
	// Buffer is the horizontal crop margin in meters around the
	// footprint. Non-positive selects one meter.
	Buffer float64
	// MemoryLimitMB caps the transient matrix and raster allocations.
	// Zero or negative means unlimited.
	MemoryLimitMB int64
	// Logger receives progress events. Nil means no logging.
	Logger *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.LOD == 0 {
		o.LOD = 2
	}
	if o.Method == "" {
		o.Method = MethodSmart
	}
	if o.ImageSize <= 1 {
		o.ImageSize = DefaultImageSize
	}
	if o.PointLimit == 0 {
		o.PointLimit = pointcloud.DefaultPointLimit
	}
	if o.Buffer <= 0 {
		o.Buffer = pointcloud.DefaultBuffer
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Job reconstructs buildings against fixed collaborators. A Job is
// immutable and safe for concurrent use; all per-building state is
// local to each call.
type Job struct {
	buildings BuildingSource
	points    PointCloudSource
	sink      FileSink
	opts      Options
}

// NewJob binds sources, sink and options into a reusable job.
func NewJob(buildings BuildingSource, points PointCloudSource, sink FileSink, opts Options) *Job {
	return &Job{
		buildings: buildings,
		points:    points,
		sink:      sink,
		opts:      opts.withDefaults(),
	}
}

// Result summarizes one reconstructed building.
type Result struct {
	// Prefix names all output files of this run.
	Prefix  string
	OBJFile string
	MTLFile string
	// Textures holds one image name per face. Faces without points
	// share PlaceholderName.
	Textures []string
	// Vertices is the deduplicated vertex count of the mesh.
	Vertices int
	Faces    int
	// Points is the prepared point count.
	Points int
	// GridSize is the voxel edge applied by cloud preparation, the
	// finest raster resolution of the textures.
	GridSize float64
}

// buildingState is the per-building context shared by reconstruction
// and the coverage statistics.
type buildingState struct {
	building *Building
	surfaces []*Surface
	cloud    *pointcloud.Cloud
	gridSize float64
}

// shell fetches the faces of a building and derives their projection
// frames.
func (j *Job) shell(ctx context.Context, buildingID string) (*Building, []*Surface, error) {
	faces, err := j.buildings.GetFaces(ctx, buildingID, j.opts.LOD)
	if err != nil {
		return nil, nil, err
	}
	if len(faces) == 0 {
		return nil, nil, fmt.Errorf("building %s lod %d has no faces: %w", buildingID, j.opts.LOD, ErrNotFound)
	}
	b := &Building{ID: buildingID, LOD: j.opts.LOD, Faces: faces}
	surfaces := make([]*Surface, len(faces))
	for i, f := range faces {
		s, err := NewSurface(i, f)
		if err != nil {
			return nil, nil, err
		}
		surfaces[i] = s
	}
	return b, surfaces, nil
}

// load fetches the shell and prepares the point cloud around it. An
// empty cloud is not an error here, texturing falls back to the gray
// placeholder.
func (j *Job) load(ctx context.Context, buildingID string, log *zap.Logger) (*buildingState, error) {
	b, surfaces, err := j.shell(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	log.Info("building shell loaded", zap.Int("faces", len(surfaces)), zap.Int("lod", j.opts.LOD))

	footprint := b.Footprint()
	bounds := d2.Ring(footprint).Bounds().Enlarge(d2.Elem(2 * j.opts.Buffer))
	cloud, err := j.points.GetPoints(ctx, r2.Box(bounds))
	if err != nil {
		return nil, err
	}
	log.Info("point cloud loaded", zap.Int("points", cloud.Len()))

	prep, grid, err := pointcloud.Prepare(cloud, footprint, pointcloud.PrepareOptions{
		Buffer:     j.opts.Buffer,
		PointLimit: j.opts.PointLimit,
		Logger:     log,
	})
	if err != nil && !errors.Is(err, pointcloud.ErrEmptyInput) {
		return nil, err
	}
	if prep.Len() == 0 {
		log.Warn("no points inside the footprint prism")
	} else {
		bb := prep.Bounds()
		log.Info("point cloud prepared", zap.Int("points", prep.Len()),
			zap.Float64("grid", grid),
			zap.String("bounds", fmt.Sprintf("%v-%v", bb.Min, bb.Max)))
	}
	return &buildingState{building: b, surfaces: surfaces, cloud: prep, gridSize: grid}, nil
}

// Reconstruct builds the textured model of one building and persists
// it through the sink. Cancellation is honored between faces; the OBJ
// and MTL files are only written once every face succeeded.
func (j *Job) Reconstruct(ctx context.Context, buildingID string) (*Result, error) {
	log := j.opts.Logger.With(zap.String("building", buildingID))
	st, err := j.load(ctx, buildingID, log)
	if err != nil {
		return nil, err
	}
	surfaces, cloud := st.surfaces, st.cloud

	prefix := jobPrefix(buildingID, j.opts.LOD, j.opts.Method, j.opts.ImageSize, cloud.Len())
	budget := newMemBudget(j.opts.MemoryLimitMB << 20)

	var m *distanceMatrix
	var nearest []int
	if j.opts.Method != MethodAll {
		log.Info("computing point to face distances", zap.Int("faces", len(surfaces)))
		m, err = newDistanceMatrix(surfaces, cloud, j.opts.LOD, proximityCutoff, budget, log)
		if err != nil {
			return nil, err
		}
		nearest = m.nearestFace()
	}

	log.Info("texturing started", zap.String("method", string(j.opts.Method)), zap.String("prefix", prefix))
	rz := &rasterizer{
		imageSize: j.opts.ImageSize,
		minGrid:   st.gridSize,
		prefix:    prefix,
		sink:      j.sink,
		budget:    budget,
		log:       log,
	}
	mesh := newMeshBuilder()
	textures := make([]string, len(surfaces))
	projBytes := int64(cloud.Len()) * 24
	for n, s := range surfaces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := budget.grow(projBytes); err != nil {
			return nil, err
		}
		var projected []r3.Vec
		if cloud.Len() > 0 {
			projected = s.ProjectAll(cloud.Points)
		}
		var mask []bool
		switch j.opts.Method {
		case MethodAll:
			mask = maskAll(cloud.Len())
		case MethodNearest:
			mask = maskNearest(m, nearest, n)
		default:
			mask = maskSmart(s, m, nearest, projected)
		}
		name, err := rz.render(s, maskedCloud(projected, cloud.Colors, mask))
		budget.release(projBytes)
		if err != nil {
			return nil, err
		}
		textures[n] = name
		mesh.addFace(st.building.Faces[n], s, name)
	}
	if m != nil {
		budget.release(m.bytes())
	}

	var objBuf, mtlBuf bytes.Buffer
	if err := mesh.WriteOBJ(&objBuf, buildingID, prefix); err != nil {
		return nil, err
	}
	if err := mesh.WriteMTL(&mtlBuf); err != nil {
		return nil, err
	}
	objName := prefix + ".obj"
	mtlName := prefix + ".mtl"
	if err := j.sink.Write(objName, objBuf.Bytes()); err != nil {
		return nil, err
	}
	if err := j.sink.Write(mtlName, mtlBuf.Bytes()); err != nil {
		return nil, err
	}
	log.Info("model written", zap.String("obj", objName), zap.String("mtl", mtlName),
		zap.Int("vertices", len(mesh.vertices)), zap.Int("faces", len(mesh.faces)))

	return &Result{
		Prefix:   prefix,
		OBJFile:  objName,
		MTLFile:  mtlName,
		Textures: textures,
		Vertices: len(mesh.vertices),
		Faces:    len(mesh.faces),
		Points:   cloud.Len(),
		GridSize: st.gridSize,
	}, nil
}

// WritePointCloud persists the prepared cloud of a building as an
// ASCII PLY file named after the building id, returning the file name.
func (j *Job) WritePointCloud(ctx context.Context, buildingID string) (string, error) {
	log := j.opts.Logger.With(zap.String("building", buildingID))
	st, err := j.load(ctx, buildingID, log)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := pointcloud.WritePLY(&buf, st.cloud); err != nil {
		return "", err
	}
	name := buildingID + ".ply"
	if err := j.sink.Write(name, buf.Bytes()); err != nil {
		return "", err
	}
	log.Info("point cloud written", zap.String("file", name), zap.Int("points", st.cloud.Len()))
	return name, nil
}

func jobPrefix(buildingID string, lod int, method Method, imageSize, npoints int) string {
	return fmt.Sprintf("%s_lod%d_%s_%d_%d", buildingID, lod, method, imageSize, npoints)
}

// maskedCloud gathers the projected points and their colors selected
// by mask into a plane-frame cloud.
func maskedCloud(projected []r3.Vec, colors []pointcloud.RGB, mask []bool) *pointcloud.Cloud {
	sub := pointcloud.New(0)
	for i, keep := range mask {
		if keep {
			sub.Append(projected[i], colors[i])
		}
	}
	return sub
}

package build3d

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/build3d/meshcode"
	"github.com/soypat/build3d/pointcloud"
)

// BuildingSource supplies shell geometry to reconstruct.
type BuildingSource interface {
	// GetFaces returns the ordered shell faces of a building at the
	// requested level of detail, or an error wrapping ErrNotFound.
	GetFaces(ctx context.Context, buildingID string, lod int) ([]Face, error)
}

// PointCloudSource supplies the survey points around a building. The
// result may cover more than the requested bounds, cropping happens
// downstream.
type PointCloudSource interface {
	GetPoints(ctx context.Context, bounds r2.Box) (*pointcloud.Cloud, error)
}

// Buildings is an in-memory BuildingSource.
type Buildings []Building

func (bs Buildings) GetFaces(_ context.Context, buildingID string, lod int) ([]Face, error) {
	for _, b := range bs {
		if b.ID == buildingID && b.LOD == lod {
			return b.Faces, nil
		}
	}
	return nil, fmt.Errorf("building %s lod %d: %w", buildingID, lod, ErrNotFound)
}

// StaticCloud is a PointCloudSource returning the same cloud for any
// bounds.
type StaticCloud struct {
	Cloud *pointcloud.Cloud
}

func (s StaticCloud) GetPoints(context.Context, r2.Box) (*pointcloud.Cloud, error) {
	return s.Cloud, nil
}

type shellDoc struct {
	Buildings []shellBuilding `json:"buildings"`
}

type shellBuilding struct {
	ID    string         `json:"id"`
	LOD   int            `json:"lod"`
	Faces [][][3]float64 `json:"faces"`
}

// LoadShellFile reads building shells from a JSON document holding a
// "buildings" array of {id, lod, faces} objects, each face a ring of
// [x, y, z] triplets. A repeated closing vertex is stripped.
func LoadShellFile(path string) (Buildings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc shellDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("shell file %s: %w", path, err)
	}
	bs := make(Buildings, 0, len(doc.Buildings))
	for _, sb := range doc.Buildings {
		b := Building{ID: sb.ID, LOD: sb.LOD}
		for _, raw := range sb.Faces {
			ring := make([]r3.Vec, 0, len(raw))
			for _, v := range raw {
				ring = append(ring, r3.Vec{X: v[0], Y: v[1], Z: v[2]})
			}
			if n := len(ring); n > 3 && ring[0] == ring[n-1] {
				ring = ring[:n-1]
			}
			b.Faces = append(b.Faces, Face{Ring: ring})
		}
		bs = append(bs, b)
	}
	return bs, nil
}

// CloudFileSource serves one point cloud file for any bounds.
type CloudFileSource struct {
	Path string
}

func (s CloudFileSource) GetPoints(ctx context.Context, _ r2.Box) (*pointcloud.Cloud, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".asc", ".txt", ".xyz":
		return pointcloud.ReadASC(f)
	}
	return nil, fmt.Errorf("unsupported point cloud format %q", filepath.Ext(s.Path))
}

// TileDirSource reads point cloud tiles named by survey sheet code
// from one directory, merging every tile whose sheet touches the
// requested bounds. Absent tiles are skipped.
type TileDirSource struct {
	Dir        string
	SystemCode int
	// Level is the map information level of the tile split. Zero
	// selects 50, the delivery tiling of the survey clouds.
	Level  int
	Logger *zap.Logger
}

func (s TileDirSource) GetPoints(ctx context.Context, bounds r2.Box) (*pointcloud.Cloud, error) {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	level := s.Level
	if level == 0 {
		level = 50
	}
	codes, err := meshcode.CodesInArea(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y, s.SystemCode, level)
	if err != nil {
		return nil, err
	}
	if s.SystemCode != 0 {
		log.Debug("survey sheets selected",
			zap.Int("count", len(codes)), zap.Int("epsg", meshcode.EPSG(s.SystemCode)))
	}
	out := pointcloud.New(0)
	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tile, err := s.readTile(code)
		if err != nil {
			return nil, err
		}
		if tile == nil {
			continue
		}
		log.Debug("tile loaded", zap.String("code", code), zap.Int("points", tile.Len()))
		out.Merge(tile)
	}
	return out, nil
}

func (s TileDirSource) readTile(code string) (*pointcloud.Cloud, error) {
	f, err := os.Open(filepath.Join(s.Dir, code+".asc"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := pointcloud.ReadASC(f)
	if err != nil {
		return nil, fmt.Errorf("tile %s: %w", code, err)
	}
	return c, nil
}

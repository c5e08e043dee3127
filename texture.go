package build3d

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/soypat/build3d/internal/d2"
	"github.com/soypat/build3d/pointcloud"
)

const (
	// DefaultImageSize bounds the long side of face textures in pixels.
	DefaultImageSize = 1024
	// PlaceholderName is the shared gray image bound to faces that
	// received no points.
	PlaceholderName = "no_texture.png"

	placeholderSide = 4
	grayLevel       = 128
)

// uvSample is one masked point in plane coordinates with its color.
type uvSample struct {
	uv    r2.Vec
	color pointcloud.RGB
}

type uvSamples []uvSample

var (
	_ kdtree.Interface  = uvSamples{}
	_ kdtree.Bounder    = uvSamples{}
	_ kdtree.Comparable = uvSample{}
)

func (s uvSamples) Index(i int) kdtree.Comparable { return s[i] }

func (s uvSamples) Len() int { return len(s) }

func (s uvSamples) Pivot(d kdtree.Dim) int {
	p := uvPlane{dim: int(d), samples: s}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (s uvSamples) Slice(start, end int) kdtree.Interface { return s[start:end] }

func (s uvSamples) Bounds() *kdtree.Bounding {
	if len(s) == 0 {
		return nil
	}
	min := s[0].uv
	max := s[0].uv
	for _, smp := range s[1:] {
		min = d2.MinElem(min, smp.uv)
		max = d2.MaxElem(max, smp.uv)
	}
	return &kdtree.Bounding{Min: uvSample{uv: min}, Max: uvSample{uv: max}}
}

func (a uvSample) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	b := c.(uvSample)
	if d == 0 {
		return a.uv.X - b.uv.X
	}
	return a.uv.Y - b.uv.Y
}

func (a uvSample) Dims() int { return 2 }

// Distance returns the squared planar distance between samples.
func (a uvSample) Distance(c kdtree.Comparable) float64 {
	b := c.(uvSample)
	d := r2.Sub(a.uv, b.uv)
	return r2.Dot(d, d)
}

// uvPlane sorts uvSamples along one axis for kd-tree construction.
type uvPlane struct {
	dim     int
	samples uvSamples
}

func (p uvPlane) Less(i, j int) bool {
	a, b := p.samples[i], p.samples[j]
	if p.dim == 0 {
		return a.uv.X < b.uv.X
	}
	return a.uv.Y < b.uv.Y
}

func (p uvPlane) Swap(i, j int) {
	p.samples[i], p.samples[j] = p.samples[j], p.samples[i]
}

func (p uvPlane) Len() int { return len(p.samples) }

func (p uvPlane) Slice(start, end int) kdtree.SortSlicer {
	p.samples = p.samples[start:end]
	return p
}

// rasterizer turns masked plane-frame points into per-face textures.
type rasterizer struct {
	imageSize int
	minGrid   float64
	prefix    string
	sink      FileSink
	budget    *memBudget
	log       *zap.Logger
}

// render rasterizes the masked points of face s and persists the
// image, returning its file name for material binding. An empty cloud
// binds the shared placeholder instead.
//
// The raster spans the face bounding box at the coarsest of three
// grids: wide enough to fit imageSize pixels, and never finer than the
// cloud preparation grid. Every cell takes the color of the nearest
// sample unless the nearest sample is more than two cells away, which
// marks a gap and stays gray.
func (rz *rasterizer) render(s *Surface, sub *pointcloud.Cloud) (string, error) {
	if sub.Len() == 0 {
		return rz.placeholder()
	}
	size := d2.Box(s.Bounds).Size()
	gridSize := math.Max(d2.Max(size)/float64(rz.imageSize-1), rz.minGrid)
	if gridSize > 2*rz.minGrid {
		sub = sub.Downsample(gridSize)
	}
	width := int(size.X/gridSize) + 1
	height := int(size.Y/gridSize) + 1
	imgBytes := int64(width) * int64(height) * 4
	sampleBytes := int64(sub.Len()) * 40
	if err := rz.budget.grow(imgBytes + sampleBytes); err != nil {
		return "", err
	}
	defer rz.budget.release(imgBytes + sampleBytes)

	samples := make(uvSamples, sub.Len())
	for i, p := range sub.Points {
		samples[i] = uvSample{uv: r2.Vec{X: p.X, Y: p.Y}, color: sub.Colors[i]}
	}
	tree := kdtree.New(samples, true)

	var xstep, ystep float64
	if width > 1 {
		xstep = size.X / float64(width-1)
	}
	if height > 1 {
		ystep = size.Y / float64(height-1)
	}
	gray := color.RGBA{R: grayLevel, G: grayLevel, B: grayLevel, A: 255}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for j := 0; j < height; j++ {
		cy := s.Bounds.Min.Y + float64(j)*ystep
		for i := 0; i < width; i++ {
			cx := s.Bounds.Min.X + float64(i)*xstep
			got, dist2 := tree.Nearest(uvSample{uv: r2.Vec{X: cx, Y: cy}})
			c := gray
			if math.Sqrt(dist2) <= 2*gridSize {
				smp := got.(uvSample)
				c = color.RGBA{
					R: colorByte(smp.color.R),
					G: colorByte(smp.color.G),
					B: colorByte(smp.color.B),
					A: 255,
				}
			}
			img.SetRGBA(i, j, c)
		}
	}
	name := fmt.Sprintf("%s_%03d.png", rz.prefix, s.Index)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	if err := rz.sink.Write(name, buf.Bytes()); err != nil {
		return "", err
	}
	rz.log.Debug("texture written", zap.String("file", name),
		zap.Int("width", width), zap.Int("height", height),
		zap.Int("samples", len(samples)))
	return name, nil
}

// placeholder persists the shared gray image unless a previous face or
// job already did. Concurrent writers race benignly, first one wins.
func (rz *rasterizer) placeholder() (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, placeholderSide, placeholderSide))
	gray := color.RGBA{R: grayLevel, G: grayLevel, B: grayLevel, A: 255}
	for y := 0; y < placeholderSide; y++ {
		for x := 0; x < placeholderSide; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	if err := rz.sink.WriteIfAbsent(PlaceholderName, buf.Bytes()); err != nil {
		return "", err
	}
	return PlaceholderName, nil
}

// colorByte maps a unit color channel to 8 bit, truncating like the
// raster scale and clamping overshoot.
func colorByte(v float64) uint8 {
	b := int(v * 256)
	if b > 255 {
		b = 255
	} else if b < 0 {
		b = 0
	}
	return uint8(b)
}

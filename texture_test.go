package build3d

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot/cmpimg"

	"github.com/soypat/build3d/pointcloud"
)

func testRasterizer(sink FileSink, imageSize int) *rasterizer {
	return &rasterizer{
		imageSize: imageSize,
		minGrid:   pointcloud.DefaultBaseGrid,
		prefix:    "t",
		sink:      sink,
		log:       zap.NewNop(),
	}
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return img
}

// pixel returns the 8 bit channels at (x, y) regardless of the decoded
// color model.
func pixel(img image.Image, x, y int) (r, g, b uint8) {
	pr, pg, pb, _ := img.At(x, y).RGBA()
	return uint8(pr >> 8), uint8(pg >> 8), uint8(pb >> 8)
}

func TestRenderPlaceholder(t *testing.T) {
	sink := NewMemSink()
	rz := testRasterizer(sink, 64)
	s := mustSurfaces(t, []Face{wallFace()})[0]

	name, err := rz.render(s, pointcloud.New(0))
	if err != nil {
		t.Fatal(err)
	}
	if name != PlaceholderName {
		t.Fatalf("name = %q, want %q", name, PlaceholderName)
	}
	data, ok := sink.Bytes(PlaceholderName)
	if !ok {
		t.Fatal("placeholder not persisted")
	}
	img := decodePNG(t, data)
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Errorf("placeholder is %v", img.Bounds())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if r, g, b := pixel(img, x, y); r != 128 || g != 128 || b != 128 {
				t.Fatalf("pixel (%d,%d) = %d %d %d, want gray", x, y, r, g, b)
			}
		}
	}

	// a second empty face shares the image
	if _, err := rz.render(s, pointcloud.New(0)); err != nil {
		t.Fatal(err)
	}
	if sink.Len() != 1 {
		t.Errorf("sink holds %d files, want the shared placeholder only", sink.Len())
	}
}

func TestRenderPlaceholderKeepsExisting(t *testing.T) {
	sink := NewMemSink()
	if err := sink.Write(PlaceholderName, []byte("already here")); err != nil {
		t.Fatal(err)
	}
	rz := testRasterizer(sink, 64)
	s := mustSurfaces(t, []Face{wallFace()})[0]
	if _, err := rz.render(s, pointcloud.New(0)); err != nil {
		t.Fatal(err)
	}
	data, _ := sink.Bytes(PlaceholderName)
	if string(data) != "already here" {
		t.Errorf("placeholder overwritten")
	}
}

func TestRenderImage(t *testing.T) {
	sink := NewMemSink()
	rz := testRasterizer(sink, 5)
	s := mustSurfaces(t, []Face{wallFace()})[0]

	// plane frame samples: one red, one blue, a gap in between
	sub := pointcloud.New(2)
	sub.Append(r3.Vec{X: 0.5, Y: 0.5}, pointcloud.RGB{R: 1})
	sub.Append(r3.Vec{X: 3.5, Y: 2.5}, pointcloud.RGB{B: 1})

	name, err := rz.render(s, sub)
	if err != nil {
		t.Fatal(err)
	}
	if name != "t_000.png" {
		t.Fatalf("name = %q", name)
	}
	data, ok := sink.Bytes(name)
	if !ok {
		t.Fatal("texture not persisted")
	}
	img := decodePNG(t, data)
	// a 4x3 face at 5 pixels per side rasters on a 1 m grid
	if img.Bounds().Dx() != 5 || img.Bounds().Dy() != 4 {
		t.Fatalf("texture is %v, want 5x4", img.Bounds())
	}
	tests := []struct {
		x, y    int
		r, g, b uint8
	}{
		{0, 0, 255, 0, 0}, // near the red sample
		{2, 1, 255, 0, 0},
		{4, 3, 0, 0, 255},     // near the blue sample
		{4, 0, 128, 128, 128}, // both samples beyond two cells
	}
	for _, tt := range tests {
		if r, g, b := pixel(img, tt.x, tt.y); r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("pixel (%d,%d) = %d %d %d, want %d %d %d", tt.x, tt.y, r, g, b, tt.r, tt.g, tt.b)
		}
	}
}

func TestRenderSingleColumn(t *testing.T) {
	sink := NewMemSink()
	rz := testRasterizer(sink, 4)
	narrow := Face{Ring: []r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 0.5, Y: 0, Z: 0}, {X: 0.5, Y: 0, Z: 3}, {X: 0, Y: 0, Z: 3},
	}}
	s := mustSurfaces(t, []Face{narrow})[0]
	sub := pointcloud.New(1)
	sub.Append(r3.Vec{X: 0.25, Y: 1.5}, pointcloud.RGB{R: 1})

	name, err := rz.render(s, sub)
	if err != nil {
		t.Fatal(err)
	}
	img := decodePNG(t, mustBytes(t, sink, name))
	if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 4 {
		t.Fatalf("texture is %v, want 1x4", img.Bounds())
	}
	for y := 0; y < 4; y++ {
		if r, _, _ := pixel(img, 0, y); r != 255 {
			t.Errorf("pixel (0,%d) red = %d", y, r)
		}
	}
}

func TestRenderBudget(t *testing.T) {
	sink := NewMemSink()
	rz := testRasterizer(sink, 5)
	rz.budget = newMemBudget(10)
	s := mustSurfaces(t, []Face{wallFace()})[0]
	sub := pointcloud.New(1)
	sub.Append(r3.Vec{X: 2, Y: 1}, pointcloud.RGB{R: 1})
	if _, err := rz.render(s, sub); !errors.Is(err, ErrResourceExhausted) {
		t.Fatalf("err = %v, want ErrResourceExhausted", err)
	}
}

func TestRenderDeterministic(t *testing.T) {
	s := mustSurfaces(t, []Face{wallFace()})[0]
	render := func() []byte {
		sink := NewMemSink()
		rz := testRasterizer(sink, 5)
		sub := pointcloud.New(3)
		sub.Append(r3.Vec{X: 0.5, Y: 0.5}, pointcloud.RGB{R: 1})
		sub.Append(r3.Vec{X: 2, Y: 1.5}, pointcloud.RGB{G: 1})
		sub.Append(r3.Vec{X: 3.5, Y: 2.5}, pointcloud.RGB{B: 1})
		name, err := rz.render(s, sub)
		if err != nil {
			t.Fatal(err)
		}
		return mustBytes(t, sink, name)
	}
	a, b := render(), render()
	equal, err := cmpimg.EqualApprox("png", a, b, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !equal {
		t.Error("two renders of the same face differ")
	}
}

func TestColorByte(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{0, 0},
		{0.25, 64},
		{0.5, 128},
		{0.999, 255},
		{1, 255},
		{1.5, 255},
		{-0.1, 0},
	}
	for _, tt := range tests {
		if got := colorByte(tt.in); got != tt.want {
			t.Errorf("colorByte(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func mustBytes(t *testing.T, sink *MemSink, name string) []byte {
	t.Helper()
	data, ok := sink.Bytes(name)
	if !ok {
		t.Fatalf("%s not persisted", name)
	}
	return data
}

package pointcloud

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

var unitSquare = []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}

func TestCrop(t *testing.T) {
	tests := []struct {
		name string
		p    r3.Vec
		keep bool
	}{
		{"inside", r3.Vec{X: 5, Y: 5, Z: 2}, true},
		{"on boundary", r3.Vec{X: 10, Y: 5, Z: 2}, true},
		{"inside buffer", r3.Vec{X: 10.5, Y: 5, Z: 2}, true},
		{"outside buffer", r3.Vec{X: 11.5, Y: 5, Z: 2}, false},
		{"corner diagonal", r3.Vec{X: 11, Y: 11, Z: 2}, false},
		{"corner within buffer", r3.Vec{X: 10.7, Y: 10.7, Z: 2}, true},
		{"below ground", r3.Vec{X: 5, Y: 5, Z: -0.1}, false},
		{"ground level", r3.Vec{X: 5, Y: 5, Z: 0}, true},
		{"ceiling", r3.Vec{X: 5, Y: 5, Z: 300}, true},
		{"above ceiling", r3.Vec{X: 5, Y: 5, Z: 300.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(1)
			c.Append(tt.p, RGB{R: 1})
			got := Crop(c, unitSquare, 1)
			if kept := got.Len() == 1; kept != tt.keep {
				t.Errorf("Crop kept=%v, want %v", kept, tt.keep)
			}
		})
	}
}

func TestCropPreservesOrder(t *testing.T) {
	c := New(4)
	c.Append(r3.Vec{X: 1, Y: 1, Z: 1}, RGB{R: 0.1})
	c.Append(r3.Vec{X: 50, Y: 50, Z: 1}, RGB{R: 0.2})
	c.Append(r3.Vec{X: 2, Y: 2, Z: 1}, RGB{R: 0.3})
	c.Append(r3.Vec{X: 3, Y: 3, Z: 400}, RGB{R: 0.4})
	got := Crop(c, unitSquare, 1)
	if got.Len() != 2 {
		t.Fatalf("kept %d points, want 2", got.Len())
	}
	if got.Points[0].X != 1 || got.Points[1].X != 2 {
		t.Errorf("order not preserved: %v", got.Points)
	}
	if got.Colors[0].R != 0.1 || got.Colors[1].R != 0.3 {
		t.Errorf("colors not aligned: %v", got.Colors)
	}
}

func TestCropDegenerateFootprint(t *testing.T) {
	c := New(1)
	c.Append(r3.Vec{X: 0, Y: 0, Z: 1}, RGB{})
	got := Crop(c, []r2.Vec{{X: 0, Y: 0}, {X: 1, Y: 1}}, 1)
	if got.Len() != 0 {
		t.Errorf("two vertex footprint kept %d points", got.Len())
	}
}

func TestDownsample(t *testing.T) {
	c := New(4)
	c.Append(r3.Vec{X: 0.1, Y: 0.1, Z: 0.1}, RGB{R: 0.1})
	c.Append(r3.Vec{X: 0.2, Y: 0.2, Z: 0.2}, RGB{R: 0.2})
	c.Append(r3.Vec{X: 1.5, Y: 0, Z: 0}, RGB{R: 0.3})
	c.Append(r3.Vec{X: -0.5, Y: 0, Z: 0}, RGB{R: 0.4})
	got := c.Downsample(1)
	if got.Len() != 3 {
		t.Fatalf("got %d points, want 3", got.Len())
	}
	// first point of each voxel survives, in input order
	want := []float64{0.1, 0.3, 0.4}
	for i, r := range want {
		if got.Colors[i].R != r {
			t.Errorf("point %d has color %v, want R=%v", i, got.Colors[i], r)
		}
	}
	if same := c.Downsample(0); same.Len() != c.Len() {
		t.Errorf("non-positive grid changed the cloud")
	}
}

func TestPrepareNoLimit(t *testing.T) {
	c := New(10)
	for i := 0; i < 10; i++ {
		c.Append(r3.Vec{X: float64(i), Y: 0.5, Z: 0.5}, RGB{})
	}
	foot := []r2.Vec{{X: -1, Y: -1}, {X: 10, Y: -1}, {X: 10, Y: 1}, {X: -1, Y: 1}}
	out, grid, err := Prepare(c, foot, PrepareOptions{PointLimit: -1})
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 10 {
		t.Errorf("got %d points, want all 10", out.Len())
	}
	if grid != DefaultBaseGrid {
		t.Errorf("grid %v, want base %v", grid, DefaultBaseGrid)
	}
}

func TestPrepareDownsamples(t *testing.T) {
	// Pairs 0.9 apart merge at grid 1, but six points only reach the
	// limit of two after the grid has grown by sqrt2 three times.
	xs := []float64{0, 0.9, 2, 2.9, 4, 4.9}
	c := New(len(xs))
	for _, x := range xs {
		c.Append(r3.Vec{X: x, Y: 0.25, Z: 0.25}, RGB{})
	}
	foot := []r2.Vec{{X: -1, Y: -1}, {X: 6, Y: -1}, {X: 6, Y: 1}, {X: -1, Y: 1}}
	out, grid, err := Prepare(c, foot, PrepareOptions{BaseGrid: 1, PointLimit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 2 {
		t.Fatalf("got %d points, want 2", out.Len())
	}
	want := 1.0
	for i := 0; i < 3; i++ {
		want *= math.Sqrt2
	}
	if grid != want {
		t.Errorf("applied grid %v, want %v", grid, want)
	}
	if out.Points[0].X != 0 || out.Points[1].X != 2.9 {
		t.Errorf("kept %v, want first point of each voxel", out.Points)
	}
}

func TestPrepareEmpty(t *testing.T) {
	c := New(1)
	c.Append(r3.Vec{X: 100, Y: 100, Z: 5}, RGB{})
	out, grid, err := Prepare(c, unitSquare, PrepareOptions{})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if out.Len() != 0 {
		t.Errorf("got %d points, want empty cloud", out.Len())
	}
	if grid != DefaultBaseGrid {
		t.Errorf("grid %v, want base %v", grid, DefaultBaseGrid)
	}
}

func TestReadASC(t *testing.T) {
	const in = `# comment line
1.0 2.0 3.0 255 0 0

4 5 6
7 8 9 10 20 30 999
`
	c, err := ReadASC(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 3 {
		t.Fatalf("got %d points, want 3", c.Len())
	}
	if c.Points[0] != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Errorf("point 0 = %v", c.Points[0])
	}
	if c.Colors[0] != (RGB{R: 1, G: 0, B: 0}) {
		t.Errorf("color 0 = %v", c.Colors[0])
	}
	gray := 128.0 / 255
	if c.Colors[1] != (RGB{R: gray, G: gray, B: gray}) {
		t.Errorf("three column point got color %v, want mid-gray", c.Colors[1])
	}
	if c.Colors[2] != (RGB{R: 10.0 / 255, G: 20.0 / 255, B: 30.0 / 255}) {
		t.Errorf("color 2 = %v", c.Colors[2])
	}
}

func TestReadASCErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"two columns", "1 2\n"},
		{"five columns", "1 2 3 4 5\n"},
		{"bad number", "1 2 x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadASC(strings.NewReader(tt.in)); err == nil {
				t.Error("malformed input accepted")
			}
		})
	}
}

func TestASCRoundTrip(t *testing.T) {
	c := New(2)
	c.Append(r3.Vec{X: 1.125, Y: -2.5, Z: 3}, RGB{R: 1, G: 0, B: 0})
	c.Append(r3.Vec{X: 0.001, Y: 0, Z: 299.999}, RGB{R: 128.0 / 255, G: 64.0 / 255, B: 0})
	var buf bytes.Buffer
	if err := WriteASC(&buf, c); err != nil {
		t.Fatal(err)
	}
	got, err := ReadASC(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != c.Len() {
		t.Fatalf("got %d points, want %d", got.Len(), c.Len())
	}
	for i := range c.Points {
		if got.Points[i] != c.Points[i] {
			t.Errorf("point %d = %v, want %v", i, got.Points[i], c.Points[i])
		}
		if got.Colors[i] != c.Colors[i] {
			t.Errorf("color %d = %v, want %v", i, got.Colors[i], c.Colors[i])
		}
	}
}

func TestWritePLY(t *testing.T) {
	c := New(2)
	c.Append(r3.Vec{X: 1.5, Y: 2, Z: -0.25}, RGB{R: 1})
	c.Append(r3.Vec{X: 0, Y: 0, Z: 0}, RGB{R: 0.5, G: 0.5, B: 0.5})
	var buf bytes.Buffer
	if err := WritePLY(&buf, c); err != nil {
		t.Fatal(err)
	}
	want := `ply
format ascii 1.0
element vertex 2
property double x
property double y
property double z
property uchar red
property uchar green
property uchar blue
end_header
1.5 2 -0.25 255 0 0
0 0 0 128 128 128
`
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestMergeBounds(t *testing.T) {
	a := New(1)
	a.Append(r3.Vec{X: 1, Y: 2, Z: 3}, RGB{})
	b := New(1)
	b.Append(r3.Vec{X: -1, Y: 5, Z: 0}, RGB{})
	a.Merge(b)
	if a.Len() != 2 || b.Len() != 1 {
		t.Fatalf("merge lengths %d, %d", a.Len(), b.Len())
	}
	bounds := a.Bounds()
	wantMin := r3.Vec{X: -1, Y: 2, Z: 0}
	wantMax := r3.Vec{X: 1, Y: 5, Z: 3}
	if bounds.Min != wantMin || bounds.Max != wantMax {
		t.Errorf("bounds (%v)-(%v), want (%v)-(%v)", bounds.Min, bounds.Max, wantMin, wantMax)
	}
	if empty := New(0).Bounds(); empty.Min != (r3.Vec{}) || empty.Max != (r3.Vec{}) {
		t.Errorf("empty cloud bounds %v", empty)
	}
}

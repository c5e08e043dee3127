package build3d

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// meshFace is one emitted face: global vertex indices, the per-face
// texture coordinate table and the bound texture.
type meshFace struct {
	vertexIdx []int
	texcoords []r2.Vec
	tcIdx     []int
	normal    r3.Vec
	texture   string
}

// meshBuilder accumulates the deduplicated geometry of one building
// for wavefront emission. Vertices shared between faces are written
// once, texture coordinates are deduplicated per face.
type meshBuilder struct {
	vertices    []r3.Vec
	vertexIndex map[r3.Vec]int
	faces       []meshFace
}

func newMeshBuilder() *meshBuilder {
	return &meshBuilder{vertexIndex: make(map[r3.Vec]int)}
}

func (b *meshBuilder) addVertex(v r3.Vec) int {
	if idx, ok := b.vertexIndex[v]; ok {
		return idx
	}
	idx := len(b.vertices)
	b.vertices = append(b.vertices, v)
	b.vertexIndex[v] = idx
	return idx
}

// addFace registers the ring of one face together with its texture
// binding. Texture coordinates are the normalized position of each
// ring vertex inside the face bounding box, flipped vertically to
// match the raster row order and rounded to three decimals before
// deduplication.
func (b *meshBuilder) addFace(f Face, s *Surface, texture string) {
	mf := meshFace{normal: s.Normal(), texture: texture}
	for _, v := range f.Ring {
		mf.vertexIdx = append(mf.vertexIdx, b.addVertex(v))
	}
	size := r2.Sub(s.Bounds.Max, s.Bounds.Min)
	tcIndex := make(map[r2.Vec]int, len(s.Projected))
	for _, p := range s.Projected {
		tc := r2.Vec{
			X: round3((p.X - s.Bounds.Min.X) / size.X),
			Y: round3(1 - (p.Y-s.Bounds.Min.Y)/size.Y),
		}
		idx, ok := tcIndex[tc]
		if !ok {
			idx = len(mf.texcoords)
			mf.texcoords = append(mf.texcoords, tc)
			tcIndex[tc] = idx
		}
		mf.tcIdx = append(mf.tcIdx, idx)
	}
	b.faces = append(b.faces, mf)
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// WriteOBJ writes the wavefront geometry: the material library
// reference, the object name, the shared vertex table, one normal per
// face, the per-face texture coordinate tables and finally the face
// elements with their material bindings. Indices are 1 based.
func (b *meshBuilder) WriteOBJ(w io.Writer, objectName, prefix string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "mtllib %s.mtl\n", prefix)
	fmt.Fprintf(bw, "o %s\n", objectName)
	for _, v := range b.vertices {
		fmt.Fprintf(bw, "v %.4f %.4f %.4f\n", v.X, v.Y, v.Z)
	}
	for _, f := range b.faces {
		fmt.Fprintf(bw, "vn %.4f %.4f %.4f\n", f.normal.X, f.normal.Y, f.normal.Z)
	}
	for _, f := range b.faces {
		for _, tc := range f.texcoords {
			fmt.Fprintf(bw, "vt %.3f %.3f\n", tc.X, tc.Y)
		}
	}
	vtOffset := 1
	for n, f := range b.faces {
		fmt.Fprintf(bw, "usemtl %s\n", f.texture)
		bw.WriteString("f")
		for i, vi := range f.vertexIdx {
			fmt.Fprintf(bw, " %d/%d/%d", vi+1, vtOffset+f.tcIdx[i], n+1)
		}
		bw.WriteByte('\n')
		vtOffset += len(f.texcoords)
	}
	return bw.Flush()
}

// WriteMTL writes one material per face. Materials are named after
// their texture file so viewers resolve bindings without a lookup
// table.
func (b *meshBuilder) WriteMTL(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, f := range b.faces {
		fmt.Fprintf(bw, "newmtl %s\n", f.texture)
		bw.WriteString("Kd 1 1 1\nNs 0\nd 1\nillum 1\nKa 0 0 0\nKs 1 1 1\n")
		fmt.Fprintf(bw, "map_Kd %s\n", f.texture)
	}
	return bw.Flush()
}

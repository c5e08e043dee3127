// Command objpreview renders a wavefront OBJ file to a PNG image for a
// quick visual check of reconstructed buildings.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
)

var (
	flagOut    = flag.String("o", "preview.png", "Output PNG path")
	flagWidth  = flag.Int("width", 1280, "Output width in pixels")
	flagHeight = flag.Int("height", 960, "Output height in pixels")
	flagDist   = flag.Float64("dist", 3, "Camera distance in bi-unit cube units")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: objpreview [flags] model.obj")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := run(flag.Arg(0), *flagOut, *flagWidth, *flagHeight, *flagDist); err != nil {
		fmt.Fprintln(os.Stderr, "objpreview:", err)
		os.Exit(1)
	}
}

func run(objPath, outPath string, width, height int, dist float64) error {
	mesh, err := fauxgl.LoadOBJ(objPath)
	if err != nil {
		return err
	}
	const (
		scale = 2  // supersampling
		fovy  = 30 // vertical field of view in degrees
		near  = 1
		far   = 10
	)
	var (
		eye    = fauxgl.V(dist, dist, dist)
		center = fauxgl.V(0, 0, 0)
		up     = fauxgl.V(0, 0, 1)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
	)

	// fit mesh in a bi-unit cube centered at the origin
	mesh.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, near, far)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = fauxgl.HexColor("#468966")
	context.Shader = shader
	context.DrawMesh(mesh)

	// downsample image for antialiasing
	img := context.Image()
	img = resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	return fauxgl.SavePNG(outPath, img)
}

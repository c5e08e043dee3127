// Package pointcloud provides a colored point cloud container and the
// cropping and downsampling steps that prepare survey scans for
// texturing.
package pointcloud

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/soypat/build3d/internal/d3"
)

// RGB is a color with components in [0, 1].
type RGB struct {
	R, G, B float64
}

// Cloud is a colored point cloud. Points and Colors are index aligned
// and always of equal length. Point order carries no meaning but is
// preserved by every operation in this package.
type Cloud struct {
	Points []r3.Vec
	Colors []RGB
}

// New returns an empty cloud with room for n points.
func New(n int) *Cloud {
	return &Cloud{
		Points: make([]r3.Vec, 0, n),
		Colors: make([]RGB, 0, n),
	}
}

// Len returns the number of points in the cloud.
func (c *Cloud) Len() int { return len(c.Points) }

// Append adds a point with its color.
func (c *Cloud) Append(p r3.Vec, color RGB) {
	c.Points = append(c.Points, p)
	c.Colors = append(c.Colors, color)
}

// Merge appends every point of o, keeping o untouched.
func (c *Cloud) Merge(o *Cloud) {
	c.Points = append(c.Points, o.Points...)
	c.Colors = append(c.Colors, o.Colors...)
}

// Bounds returns the bounding box of the cloud. The zero box is
// returned for an empty cloud.
func (c *Cloud) Bounds() r3.Box {
	if c.Len() == 0 {
		return r3.Box{}
	}
	s := d3.Set(c.Points)
	return r3.Box{Min: s.Min(), Max: s.Max()}
}

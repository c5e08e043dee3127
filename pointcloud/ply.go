package pointcloud

import (
	"bufio"
	"fmt"
	"io"
)

// WritePLY writes the cloud as an ASCII PLY file with double precision
// coordinates and 8 bit per-vertex colors.
func WritePLY(w io.Writer, c *Cloud) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "ply")
	fmt.Fprintln(bw, "format ascii 1.0")
	fmt.Fprintf(bw, "element vertex %d\n", c.Len())
	fmt.Fprintln(bw, "property double x")
	fmt.Fprintln(bw, "property double y")
	fmt.Fprintln(bw, "property double z")
	fmt.Fprintln(bw, "property uchar red")
	fmt.Fprintln(bw, "property uchar green")
	fmt.Fprintln(bw, "property uchar blue")
	fmt.Fprintln(bw, "end_header")
	for i, p := range c.Points {
		col := c.Colors[i]
		fmt.Fprintf(bw, "%g %g %g %d %d %d\n", p.X, p.Y, p.Z,
			colorTo255(col.R), colorTo255(col.G), colorTo255(col.B))
	}
	return bw.Flush()
}

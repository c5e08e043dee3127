package pointcloud

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReadASC parses the whitespace separated "x y z r g b" text format
// with color channels in 0-255. Lines starting with '#' and blank
// lines are skipped. Points carrying only the three coordinate columns
// come out mid-gray; columns beyond the sixth are ignored.
func ReadASC(r io.Reader) (*Cloud, error) {
	c := New(0)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 && len(fields) < 6 {
			return nil, fmt.Errorf("line %d: want 3 or 6 columns, got %d", line, len(fields))
		}
		var vals [6]float64
		n := len(fields)
		if n > 6 {
			n = 6
		}
		for i := 0; i < n; i++ {
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
			vals[i] = v
		}
		color := RGB{R: 128.0 / 255, G: 128.0 / 255, B: 128.0 / 255}
		if len(fields) >= 6 {
			color = RGB{
				R: clampUnit(vals[3] / 255),
				G: clampUnit(vals[4] / 255),
				B: clampUnit(vals[5] / 255),
			}
		}
		c.Append(r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]}, color)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// WriteASC writes the cloud in the format read by ReadASC, one point
// per line with colors scaled to 0-255.
func WriteASC(w io.Writer, c *Cloud) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d points\n", c.Len())
	fmt.Fprintln(bw, "# x y z r g b")
	for i, p := range c.Points {
		col := c.Colors[i]
		fmt.Fprintf(bw, "%.3f %.3f %.3f %d %d %d\n", p.X, p.Y, p.Z,
			colorTo255(col.R), colorTo255(col.G), colorTo255(col.B))
	}
	return bw.Flush()
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func colorTo255(v float64) int {
	b := int(math.Round(v * 255))
	if b < 0 {
		b = 0
	} else if b > 255 {
		b = 255
	}
	return b
}

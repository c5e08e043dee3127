// Package meshcode converts between Japanese plane rectangular
// coordinates and the map sheet codes of the national standard map
// format (國土交通省 標準図式, https://www.mlit.go.jp/common/001248461.pdf),
// extended below level 500 with the 2, 5, 10 and 20 way splits used by
// survey point cloud deliveries.
//
// A sheet code is an optional two digit coordinate system number, two
// uppercase letters naming the level 50000 sheet and digit or letter
// pairs narrowing the sheet one level at a time, for example
// "08NE3801". Coordinates are meters with x east and y north; sheets
// are named from their northwest corner.
package meshcode

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

var codeRE = regexp.MustCompile(`^([0-9]{2})?([A-Z]{2})([0-9A-T]*)$`)

// Extent returns the bounds of a sheet code, the coordinate system
// number it carries (zero when absent) and its map information level.
func Extent(code string) (box r2.Box, system, level int, err error) {
	m := codeRE.FindStringSubmatch(code)
	if m == nil {
		return r2.Box{}, 0, 0, fmt.Errorf("malformed sheet code %q", code)
	}
	if m[1] != "" {
		system, _ = strconv.Atoi(m[1])
	}
	sheet, numbers := m[2], m[3]

	x0 := (-160 + int(sheet[1]-'A')*40) * 1000
	y0 := (300 - int(sheet[0]-'A')*30) * 1000
	dx, dy := 40000, 30000
	level = 50000

	if len(numbers) >= 2 {
		x0 += int(numbers[1]-'0') * 4000
		y0 -= int(numbers[0]-'0') * 3000
		dx, dy = 4000, 3000
		level = 5000
	}
	if len(numbers) == 3 {
		if numbers[2] == '2' || numbers[2] == '4' {
			x0 += 2000
		}
		if numbers[2] == '3' || numbers[2] == '4' {
			y0 -= 1500
		}
		dx, dy = 2000, 1500
		level = 2500
	}
	if len(numbers) >= 4 {
		switch c := numbers[2]; {
		case c >= '0' && c <= '9':
			switch d := numbers[3]; {
			case d >= 'A' && d <= 'E':
				x0 += int(d-'A') * 800
				y0 -= int(c-'0') * 600
				dx, dy = 800, 600
				level = 1000
			case d >= '0' && d <= '9':
				x0 += int(d-'0') * 400
				y0 -= int(c-'0') * 300
				dx, dy = 400, 300
				level = 500
			}
		case c >= 'A' && c <= 'T':
			x0 += int(numbers[3]-'A') * 200
			y0 -= int(c-'A') * 150
			dx, dy = 200, 150
			level = 250
		}
	}
	if len(numbers) == 5 {
		dx, dy = dx/2, dy/2
		if numbers[4] == '2' || numbers[4] == '4' {
			x0 += dx
		}
		if numbers[4] == '3' || numbers[4] == '4' {
			y0 -= dy
		}
		level /= 2
	}
	if len(numbers) == 6 {
		switch c := numbers[4]; {
		case c >= '0' && c <= '9':
			switch d := numbers[5]; {
			case d >= 'A' && d <= 'E':
				dx, dy = dx/5, dy/5
				x0 += int(d-'A') * dx
				y0 -= int(c-'0') * dy
				level /= 5
			case d >= '0' && d <= '9':
				dx, dy = dx/10, dy/10
				x0 += int(d-'0') * dx
				y0 -= int(c-'0') * dy
				level /= 10
			}
		case c >= 'A' && c <= 'T':
			dx, dy = dx/20, dy/20
			x0 += int(numbers[5]-'A') * dx
			y0 -= int(c-'A') * dy
			level /= 20
		}
	}
	box = r2.Box{
		Min: r2.Vec{X: float64(x0), Y: float64(y0 - dy)},
		Max: r2.Vec{X: float64(x0 + dx), Y: float64(y0)},
	}
	return box, system, level, nil
}

// EPSG returns the EPSG number of a plane rectangular coordinate
// system number.
func EPSG(system int) int { return 6668 + system }

// Code returns the sheet code containing (x, y) at the given map
// information level. A system of zero omits the two digit prefix.
// Supported levels are 50000, 5000, 2500, 1000, 500, 250 and 50.
func Code(x, y float64, system, level int) (string, error) {
	if math.Abs(x) >= 160000 || math.Abs(y) >= 300000 {
		return "", fmt.Errorf("coordinates (%g, %g) out of sheet range", x, y)
	}
	var sb strings.Builder
	if system != 0 {
		fmt.Fprintf(&sb, "%02d", system)
	}
	// y is negated so the floor walk below runs north to south.
	xi := int(x)
	yi := int(-y)

	// [A-T][A-H]
	sb.WriteByte(byte('K' + floorDiv(yi, 30000)))
	sb.WriteByte(byte('E' + floorDiv(xi, 40000)))
	if level > 5000 {
		return sb.String(), nil
	}

	// [0-9][0-9]
	xi = floorMod(xi, 40000)
	yi = floorMod(yi, 30000)
	sb.WriteByte(byte('0' + yi/3000))
	sb.WriteByte(byte('0' + xi/4000))
	if level > 2500 {
		return sb.String(), nil
	}

	xi %= 4000
	yi %= 3000

	switch level {
	case 2500:
		// quadrant 1-4
		switch {
		case xi < 2000 && yi < 1500:
			sb.WriteByte('1')
		case xi < 2000:
			sb.WriteByte('3')
		case yi < 1500:
			sb.WriteByte('2')
		default:
			sb.WriteByte('4')
		}
		return sb.String(), nil
	case 1000:
		// [0-4][A-E]
		sb.WriteByte(byte('0' + yi/600))
		sb.WriteByte(byte('A' + xi/800))
		return sb.String(), nil
	case 250:
		// [A-T][A-T]
		sb.WriteByte(byte('A' + yi/150))
		sb.WriteByte(byte('A' + xi/200))
		return sb.String(), nil
	}

	// level 500, [0-9][0-9]
	sb.WriteByte(byte('0' + yi/300))
	sb.WriteByte(byte('0' + xi/400))
	if level == 500 {
		return sb.String(), nil
	}

	if level == 50 {
		// ten way split of the level 500 sheet, [0-9][0-9]
		xi %= 400
		yi %= 300
		sb.WriteByte(byte('0' + yi/30))
		sb.WriteByte(byte('0' + xi/40))
		return sb.String(), nil
	}
	return "", fmt.Errorf("unsupported level %d", level)
}

// CodesInArea lists the sheet codes at level covering the rectangle
// with corners (x0, y0) and (x1, y1). The walk emits one extra sheet
// past each boundary.
func CodesInArea(x0, y0, x1, y1 float64, system, level int) ([]string, error) {
	switch level {
	case 50000, 5000, 2500, 1000, 500, 250, 50:
	default:
		return nil, fmt.Errorf("unsupported level %d", level)
	}
	dx := float64(40000 * level / 50000)
	dy := float64(30000 * level / 50000)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	var codes []string
	for x := x0; ; x += dx {
		for y := y0; ; y += dy {
			code, err := Code(x, y, system, level)
			if err != nil {
				return nil, err
			}
			codes = append(codes, code)
			if y > y1 {
				break
			}
		}
		if x > x1 {
			break
		}
	}
	return codes, nil
}

// floorDiv and floorMod round toward negative infinity, so sheet
// arithmetic crosses the coordinate origin without a seam.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && (a < 0) != (b < 0) {
		m += b
	}
	return m
}

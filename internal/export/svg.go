// Package export renders recorded trials to SVG.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/viz"
)

var strokeColors = []string{"#00ffff", "#ff00ff", "#ffff00", "#00ff88", "#ff8800", "#8888ff"}

func axisValue(c lattice.Coord, axis int) int {
	switch axis % 3 {
	case 0:
		return c.X
	case 1:
		return c.Y
	default:
		return c.Z
	}
}

// TrajectoriesSVG renders anchor paths projected onto an axis pair, one
// stroke color per pattern. Ids are sorted so colors stay stable across
// exports of the same run.
func TrajectoriesSVG(paths map[string][]lattice.Coord, axisU, axisV, width, height int) string {
	ids := make([]string, 0, len(paths))
	for id := range paths {
		if len(paths[id]) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) == 0 {
		return ""
	}

	// Shared bounds across all paths keeps them in one frame.
	first := paths[ids[0]][0]
	minU, maxU := axisValue(first, axisU), axisValue(first, axisU)
	minV, maxV := axisValue(first, axisV), axisValue(first, axisV)
	for _, id := range ids {
		for _, pt := range paths[id] {
			u, v := axisValue(pt, axisU), axisValue(pt, axisV)
			if u < minU {
				minU = u
			}
			if u > maxU {
				maxU = u
			}
			if v < minV {
				minV = v
			}
			if v > maxV {
				maxV = v
			}
		}
	}

	fMinU, fMaxU := float64(minU), float64(maxU)
	fMinV, fMaxV := float64(minV), float64(maxV)
	rangeU := fMaxU - fMinU
	rangeV := fMaxV - fMinV
	if rangeU == 0 {
		rangeU = 1
	}
	if rangeV == 0 {
		rangeV = 1
	}
	fMinU -= rangeU * 0.1
	fMaxU += rangeU * 0.1
	fMinV -= rangeV * 0.1
	fMaxV += rangeV * 0.1
	rangeU = fMaxU - fMinU
	rangeV = fMaxV - fMinV

	toScreen := func(pt lattice.Coord) (float64, float64) {
		x := (float64(axisValue(pt, axisU)) - fMinU) / rangeU * float64(width)
		y := float64(height) - (float64(axisValue(pt, axisV))-fMinV)/rangeV*float64(height)
		return x, y
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for i, id := range ids {
		color := strokeColors[i%len(strokeColors)]
		path := paths[id]

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, color))
		for j, pt := range path {
			x, y := toScreen(pt)
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")

		// End marker so single-node paths stay visible.
		ex, ey := toScreen(path[len(path)-1])
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>%s</title></circle>
`, ex, ey, color, id))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// Braille dot-to-bit mapping, mirroring the canvas layout.
var dotBits = [4][2]int{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// CanvasSVG converts a braille canvas to SVG dots.
func CanvasSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	w, h := canvas.Size()

	width := float64(w) * scale * 2
	height := float64(h) * scale * 4

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height))

	dotRadius := scale * 0.4
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			r := canvas.CellAt(col, row)
			if r < 0x2800 {
				continue
			}
			bits := int(r - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if bits&dotBits[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius))
					}
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/etmsim/internal/engine"
	"github.com/san-kum/etmsim/internal/lattice"
	"github.com/san-kum/etmsim/internal/pattern"
)

// Palette is a low-to-high color ramp for echo magnitudes.
type Palette struct {
	Name string
	Ramp []lipgloss.Color
}

// Available palettes
var (
	PaletteThermal = Palette{
		Name: "thermal",
		Ramp: []lipgloss.Color{"17", "18", "54", "90", "125", "160", "196", "202", "214", "226"},
	}

	PaletteIce = Palette{
		Name: "ice",
		Ramp: []lipgloss.Color{"232", "236", "240", "24", "25", "31", "38", "44", "51", "159"},
	}

	PaletteMono = Palette{
		Name: "mono",
		Ramp: []lipgloss.Color{"233", "235", "237", "239", "241", "244", "247", "250", "253", "255"},
	}

	Palettes = []Palette{PaletteThermal, PaletteIce, PaletteMono}
)

// PaletteByName returns a palette by name, falling back to thermal.
func PaletteByName(name string) Palette {
	for _, p := range Palettes {
		if p.Name == name {
			return p
		}
	}
	return PaletteThermal
}

// PaletteNames returns the available palette names.
func PaletteNames() []string {
	names := make([]string, len(Palettes))
	for i, p := range Palettes {
		names[i] = p.Name
	}
	return names
}

// Two-character glyphs so anchors stand out against the two-column cells.
var speciesGlyphs = map[pattern.Species]string{
	pattern.Photon:   "γ ",
	pattern.Electron: "e-",
	pattern.Positron: "e+",
	pattern.Proton:   "p ",
	pattern.Neutron:  "n ",
	pattern.Neutrino: "ν ",
}

var glyphStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))

// SliceSpec selects the rendered plane: the axis held fixed and its index.
type SliceSpec struct {
	Axis  int // 0=x, 1=y, 2=z
	Index int
}

// AxisName returns the fixed-axis letter for the header line.
func (s SliceSpec) AxisName() string {
	return [...]string{"x", "y", "z"}[s.Axis%3]
}

// Clamp confines the slice index to the lattice extent along its axis.
func (s SliceSpec) Clamp(lat *lattice.Lattice) SliceSpec {
	nx, ny, nz := lat.Dims()
	n := [...]int{nx, ny, nz}[s.Axis%3]
	if s.Index < 0 {
		s.Index = 0
	}
	if s.Index >= n {
		s.Index = n - 1
	}
	return s
}

// planeCoord maps plane coordinates (u horizontal, v vertical) back to a
// lattice coordinate on the fixed plane.
func (s SliceSpec) planeCoord(u, v int) lattice.Coord {
	switch s.Axis % 3 {
	case 0: // fixed x: u=y, v=z
		return lattice.Coord{X: s.Index, Y: u, Z: v}
	case 1: // fixed y: u=x, v=z
		return lattice.Coord{X: u, Y: s.Index, Z: v}
	default: // fixed z: u=x, v=y
		return lattice.Coord{X: u, Y: v, Z: s.Index}
	}
}

// planeDims returns the horizontal and vertical extents of the plane.
func (s SliceSpec) planeDims(lat *lattice.Lattice) (int, int) {
	nx, ny, nz := lat.Dims()
	switch s.Axis % 3 {
	case 0:
		return ny, nz
	case 1:
		return nx, nz
	default:
		return nx, ny
	}
}

// RenderSlice draws one plane of the committed echo field, two terminal
// columns per node, with pattern anchors on the plane drawn as species
// glyphs. Cell color tracks |echo| normalized to the plane maximum.
func RenderSlice(eng *engine.TickEngine, spec SliceSpec, pal Palette) string {
	lat := eng.Lattice()
	spec = spec.Clamp(lat)
	w, h := spec.planeDims(lat)

	// Plane max sets the color scale; an empty plane renders at floor color.
	max := 0.0
	for v := 0; v < h; v++ {
		for u := 0; u < w; u++ {
			if a := math.Abs(eng.EchoAt(spec.planeCoord(u, v))); a > max {
				max = a
			}
		}
	}

	glyphAt := make(map[[2]int]string)
	for _, p := range eng.Patterns() {
		a := p.Anchor()
		u, v, on := spec.planePos(a)
		if on {
			glyphAt[[2]int{u, v}] = speciesGlyphs[p.Species()]
		}
	}

	var b strings.Builder
	// Vertical axis grows downward on screen; flip so low v sits at the bottom.
	for v := h - 1; v >= 0; v-- {
		for u := 0; u < w; u++ {
			if g, ok := glyphAt[[2]int{u, v}]; ok {
				b.WriteString(glyphStyle.Render(g))
				continue
			}
			val := eng.EchoAt(spec.planeCoord(u, v))
			b.WriteString(cellFor(val, max, pal))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// planePos projects a lattice coordinate onto the plane, reporting whether
// it lies on the fixed index.
func (s SliceSpec) planePos(c lattice.Coord) (u, v int, on bool) {
	switch s.Axis % 3 {
	case 0:
		return c.Y, c.Z, c.X == s.Index
	case 1:
		return c.X, c.Z, c.Y == s.Index
	default:
		return c.X, c.Y, c.Z == s.Index
	}
}

func cellFor(val, max float64, pal Palette) string {
	if max == 0 || val == 0 {
		return lipgloss.NewStyle().Foreground(pal.Ramp[0]).Render("··")
	}
	norm := math.Abs(val) / max
	idx := int(norm * float64(len(pal.Ramp)-1))
	if idx >= len(pal.Ramp) {
		idx = len(pal.Ramp) - 1
	}
	block := "██"
	if val < 0 {
		block = "▒▒"
	}
	return lipgloss.NewStyle().Foreground(pal.Ramp[idx]).Render(block)
}

// SliceHeader formats the plane caption shown above the heatmap.
func SliceHeader(spec SliceSpec, lat *lattice.Lattice) string {
	nx, ny, nz := lat.Dims()
	n := [...]int{nx, ny, nz}[spec.Axis%3]
	return fmt.Sprintf("%s = %d / %d", spec.AxisName(), spec.Index, n-1)
}

package sir

import (
	"github.com/san-kum/sirddft/internal/grid"
)

// Field is a named slice of field values.
type Field struct {
	Name   string
	Values []float64
}

// Snapshot is implemented by every state and view so that consumers
// (metrics, storage, plotting) can treat all models alike.
type Snapshot interface {
	Fields() []Field
	// CellSize is the length (1D) or area (2D) represented by one grid
	// point, 1 for the lumped model.
	CellSize() float64
}

// Totals integrates every field of snap over the domain.
func Totals(snap Snapshot) map[string]float64 {
	cell := snap.CellSize()
	out := make(map[string]float64)
	for _, f := range snap.Fields() {
		out[f.Name] = Integrate(f.Values, cell)
	}
	return out
}

// Population returns the sum of all field totals.
func Population(snap Snapshot) float64 {
	total := 0.0
	for _, v := range Totals(snap) {
		total += v
	}
	return total
}

func (s State) Fields() []Field {
	return []Field{{"S", []float64{s.S}}, {"I", []float64{s.I}}, {"R", []float64{s.R}}}
}

func (s State) CellSize() float64 { return 1 }

// View1D is a read-only view into a flat SIR buffer on a 1D grid. It aliases
// the buffer and is invalidated by the next integration.
type View1D struct {
	S, I, R []float64
	Grid    grid.Grid1D
}

// NewView1D splits buf (S block, I block, R block) without copying.
func NewView1D(buf []float64, g grid.Grid1D) View1D {
	n := len(buf) / 3
	return View1D{
		S:    buf[:n:n],
		I:    buf[n : 2*n : 2*n],
		R:    buf[2*n : 3*n : 3*n],
		Grid: g,
	}
}

// Owned deep copies the view.
func (v View1D) Owned() Spatial1D {
	return Spatial1D{
		S:    append([]float64(nil), v.S...),
		I:    append([]float64(nil), v.I...),
		R:    append([]float64(nil), v.R...),
		Grid: v.Grid,
	}
}

func (v View1D) Fields() []Field {
	return []Field{{"S", v.S}, {"I", v.I}, {"R", v.R}}
}

func (v View1D) CellSize() float64 { return cell1D(v.Grid) }

func (s Spatial1D) Fields() []Field {
	return []Field{{"S", s.S}, {"I", s.I}, {"R", s.R}}
}

func (s Spatial1D) CellSize() float64 { return cell1D(s.Grid) }

// View2D is a read-only view into a flat SIR buffer on a 2D grid.
type View2D struct {
	S, I, R []float64
	Grid    grid.Grid2D
}

// NewView2D splits buf (S block, I block, R block) without copying.
func NewView2D(buf []float64, g grid.Grid2D) View2D {
	n := len(buf) / 3
	return View2D{
		S:    buf[:n:n],
		I:    buf[n : 2*n : 2*n],
		R:    buf[2*n : 3*n : 3*n],
		Grid: g,
	}
}

// Rows reshapes field into ny rows of nx values, aliasing field.
func (v View2D) Rows(field []float64) [][]float64 { return rows(field, v.Grid) }

func (v View2D) Owned() Spatial2D {
	return Spatial2D{
		S:    append([]float64(nil), v.S...),
		I:    append([]float64(nil), v.I...),
		R:    append([]float64(nil), v.R...),
		Grid: v.Grid,
	}
}

func (v View2D) Fields() []Field {
	return []Field{{"S", v.S}, {"I", v.I}, {"R", v.R}}
}

func (v View2D) CellSize() float64 { return cell2D(v.Grid) }

func (s Spatial2D) Fields() []Field {
	return []Field{{"S", s.S}, {"I", s.I}, {"R", s.R}}
}

func (s Spatial2D) CellSize() float64 { return cell2D(s.Grid) }

// SZView2D is a read-only view into a flat SZ buffer on a 2D grid.
type SZView2D struct {
	S, Z []float64
	Grid grid.Grid2D
}

// NewSZView2D splits buf (S block, Z block) without copying.
func NewSZView2D(buf []float64, g grid.Grid2D) SZView2D {
	n := len(buf) / 2
	return SZView2D{
		S:    buf[:n:n],
		Z:    buf[n : 2*n : 2*n],
		Grid: g,
	}
}

func (v SZView2D) Rows(field []float64) [][]float64 { return rows(field, v.Grid) }

func (v SZView2D) Owned() SZSpatial2D {
	return SZSpatial2D{
		S:    append([]float64(nil), v.S...),
		Z:    append([]float64(nil), v.Z...),
		Grid: v.Grid,
	}
}

func (v SZView2D) Fields() []Field {
	return []Field{{"S", v.S}, {"Z", v.Z}}
}

func (v SZView2D) CellSize() float64 { return cell2D(v.Grid) }

func (s SZSpatial2D) Fields() []Field {
	return []Field{{"S", s.S}, {"Z", s.Z}}
}

func (s SZSpatial2D) CellSize() float64 { return cell2D(s.Grid) }

func cell1D(g grid.Grid1D) float64 { return grid.Spacing(g) }

func cell2D(g grid.Grid2D) float64 {
	switch g := g.(type) {
	case grid.Cartesian:
		return grid.Spacing(g.X) * grid.Spacing(g.Y)
	default:
		return 1
	}
}

func rows(field []float64, g grid.Grid2D) [][]float64 {
	c, ok := g.(grid.Cartesian)
	if !ok {
		return [][]float64{field}
	}
	nx, ny := c.Shape()
	out := make([][]float64, ny)
	for iy := range out {
		out[iy] = field[iy*nx : (iy+1)*nx : (iy+1)*nx]
	}
	return out
}

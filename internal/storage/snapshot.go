package storage

import (
	"fmt"

	"github.com/san-kum/sirddft/internal/sir"
)

type Field struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// Snapshot is the on-disk form of a sir.Snapshot. Shape is [nx, ny] for 2D
// fields, [n] for 1D fields and empty for the lumped model.
type Snapshot struct {
	CellSize float64 `json:"cell_size"`
	Shape    []int   `json:"shape"`
	Fields   []Field `json:"fields"`
}

type rowser interface {
	Rows(field []float64) [][]float64
}

// NewSnapshot copies the fields of snap.
func NewSnapshot(snap sir.Snapshot) Snapshot {
	fs := snap.Fields()
	out := Snapshot{
		CellSize: snap.CellSize(),
		Fields:   make([]Field, len(fs)),
	}
	for i, f := range fs {
		out.Fields[i] = Field{Name: f.Name, Values: append([]float64(nil), f.Values...)}
	}
	if len(fs) == 0 {
		return out
	}

	if r, ok := snap.(rowser); ok {
		rows := r.Rows(fs[0].Values)
		out.Shape = []int{len(rows[0]), len(rows)}
	} else if n := len(fs[0].Values); n > 1 {
		out.Shape = []int{n}
	}
	return out
}

// Field returns the values of the named field.
func (s *Snapshot) Field(name string) ([]float64, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Values, true
		}
	}
	return nil, false
}

// Rows splits a 2D field into rows of constant y.
func (s *Snapshot) Rows(name string) ([][]float64, error) {
	values, ok := s.Field(name)
	if !ok {
		return nil, fmt.Errorf("storage: no field %q", name)
	}
	if len(s.Shape) != 2 {
		return nil, fmt.Errorf("storage: field %q is not two-dimensional", name)
	}
	nx, ny := s.Shape[0], s.Shape[1]
	if nx*ny != len(values) {
		return nil, fmt.Errorf("storage: field %q has %d values, shape %dx%d", name, len(values), nx, ny)
	}
	rows := make([][]float64, ny)
	for iy := range rows {
		rows[iy] = values[iy*nx : (iy+1)*nx]
	}
	return rows, nil
}

// Totals integrates every field like sir.Totals.
func (s *Snapshot) Totals() map[string]float64 {
	out := make(map[string]float64, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = sir.Integrate(f.Values, s.CellSize)
	}
	return out
}

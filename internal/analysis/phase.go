package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/sirddft/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait is the trajectory of two compartment totals.
type PhasePortrait struct {
	XField, YField string
	Points         []Point
}

// NewPhasePortrait collects the totals of xField and yField from frames.
func NewPhasePortrait(frames []sim.Frame, xField, yField string) (*PhasePortrait, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("analysis: no frames")
	}
	for _, name := range []string{xField, yField} {
		if _, ok := frames[0].Totals[name]; !ok {
			return nil, fmt.Errorf("analysis: no field %q", name)
		}
	}
	p := &PhasePortrait{
		XField: xField,
		YField: yField,
		Points: make([]Point, len(frames)),
	}
	for i, f := range frames {
		p.Points[i] = Point{X: f.Totals[xField], Y: f.Totals[yField]}
	}
	return p, nil
}

// Bounds returns the bounding box of the trajectory.
func (p *PhasePortrait) Bounds() (minX, maxX, minY, maxY float64) {
	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}
	return minX, maxX, minY, maxY
}

// ASCII draws the trajectory on a width x height canvas. Early points are
// drawn as '.', middle ones as 'o' and late ones as '●'.
func (p *PhasePortrait) ASCII(width, height int) string {
	if len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}
	minX, maxX, minY, maxY := p.Bounds()
	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	n := len(p.Points)
	for i, pt := range p.Points {
		px := int(float64(width-1) * (pt.X - minX) / rangeX)
		py := height - 1 - int(float64(height-1)*(pt.Y-minY)/rangeY)
		if px < 0 || px >= width || py < 0 || py >= height {
			continue
		}
		c := '●'
		switch {
		case i < n/3:
			c = '.'
		case i < 2*n/3:
			c = 'o'
		}
		canvas[py][px] = c
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

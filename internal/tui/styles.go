package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("238"))

	Label = dim
	Value = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
)

// fieldStyles colours compartments consistently across views.
var fieldStyles = map[string]lipgloss.Style{
	"S": green,
	"I": red,
	"R": cyan,
	"Z": magenta,
}

// FieldStyle returns the style used for compartment name.
func FieldStyle(name string) lipgloss.Style {
	if s, ok := fieldStyles[name]; ok {
		return s
	}
	return white
}

// ProgressBar renders fraction (clamped to [0, 1]) as a bar of width cells.
func ProgressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(width, filled))
	return cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", width-filled))
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline samples data down to at most width characters.
func Sparkline(data []float64, width int) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * float64(len(sparkChars)-1))
		idx = max(0, min(len(sparkChars)-1, idx))
		sb.WriteRune(sparkChars[idx])
	}
	return sb.String()
}

var shades = []rune(" .:-=+*#%@")

// Heatmap shades rows relative to their maximum, one character per value.
// Row 0 is drawn at the bottom so that y points up.
func Heatmap(rows [][]float64) []string {
	peak := 0.0
	for _, row := range rows {
		for _, v := range row {
			peak = max(peak, v)
		}
	}
	out := make([]string, len(rows))
	for iy, row := range rows {
		line := make([]rune, len(row))
		for ix, v := range row {
			idx := 0
			if peak > 0 && v > 0 {
				idx = int(v / peak * float64(len(shades)-1))
				idx = max(0, min(len(shades)-1, idx))
			}
			line[ix] = shades[idx]
		}
		out[len(rows)-1-iy] = string(line)
	}
	return out
}

// Downsample averages rows into at most w x h blocks.
func Downsample(rows [][]float64, w, h int) [][]float64 {
	if len(rows) == 0 || len(rows[0]) == 0 || w <= 0 || h <= 0 {
		return nil
	}
	ny, nx := len(rows), len(rows[0])
	h, w = min(h, ny), min(w, nx)
	out := make([][]float64, h)
	for by := range out {
		out[by] = make([]float64, w)
		y0, y1 := by*ny/h, (by+1)*ny/h
		for bx := range out[by] {
			x0, x1 := bx*nx/w, (bx+1)*nx/w
			sum := 0.0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					sum += rows[y][x]
				}
			}
			out[by][bx] = sum / float64((y1-y0)*(x1-x0))
		}
	}
	return out
}

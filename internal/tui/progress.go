// Package tui shows a running simulation in the terminal: a progress bar,
// the current compartment totals with their history, solver counters and a
// coarse density map of one field.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/sirddft/internal/sim"
	"github.com/san-kum/sirddft/internal/sir"
)

const (
	mapWidth   = 48
	mapHeight  = 16
	historyCap = 200
)

// FrameMsg carries one recorded frame. Density is a downsampled copy of the
// previewed field, nil when the model has no spatial extent.
type FrameMsg struct {
	Frame   sim.Frame
	Profile []float64
	Density [][]float64
}

// DoneMsg ends the program.
type DoneMsg struct {
	Result *sim.Result
	Err    error
}

// Progress is the bubbletea model of a live run.
type Progress struct {
	title   string
	fields  []string
	preview string
	cfg     sim.Config
	cancel  context.CancelFunc

	frame    sim.Frame
	history  map[string][]float64
	steps    int
	rejected int
	profile  []float64
	density  [][]float64
	started  time.Time

	done     bool
	stopping bool
	result   *sim.Result
	err      error
}

// NewProgress returns a view for a run of cfg. preview names the field shown
// as a density map. cancel is called when the user quits early.
func NewProgress(title string, fields []string, preview string, cfg sim.Config, cancel context.CancelFunc) *Progress {
	return &Progress{
		title:   title,
		fields:  fields,
		preview: preview,
		cfg:     cfg,
		cancel:  cancel,
		history: make(map[string][]float64, len(fields)),
		started: time.Now(),
	}
}

func (m *Progress) Init() tea.Cmd { return nil }

func (m *Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if !m.stopping && m.cancel != nil {
				m.cancel()
			}
			m.stopping = true
			if m.done {
				return m, tea.Quit
			}
		}
		return m, nil
	case FrameMsg:
		m.frame = msg.Frame
		m.steps += msg.Frame.Stats.Steps
		m.rejected += msg.Frame.Stats.Rejected
		for _, name := range m.fields {
			h := append(m.history[name], msg.Frame.Totals[name])
			if len(h) > historyCap {
				h = h[len(h)-historyCap:]
			}
			m.history[name] = h
		}
		if msg.Profile != nil {
			m.profile = msg.Profile
		}
		if msg.Density != nil {
			m.density = msg.Density
		}
		return m, nil
	case DoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m *Progress) reason() sim.Reason {
	if m.result == nil {
		return sim.Failed
	}
	return m.result.Reason
}

// Fraction returns the share of frames completed.
func (m *Progress) Fraction() float64 {
	if m.cfg.Frames <= 0 {
		return 0
	}
	return float64(m.frame.Index) / float64(m.cfg.Frames)
}

func (m *Progress) View() string {
	var b strings.Builder

	status := green.Render("● running")
	switch {
	case m.done && m.err != nil:
		status = red.Render("✕ " + string(m.reason()))
	case m.done:
		status = cyan.Render("✓ " + string(m.reason()))
	case m.stopping:
		status = yellow.Render("○ stopping")
	}
	b.WriteString(fmt.Sprintf("\n   %s  %s\n", Header.Render(m.title), status))

	timeStr := fmt.Sprintf("t=%.3g/%.3g", m.frame.Time, float64(m.cfg.Frames)*m.cfg.FrameDuration)
	frameStr := fmt.Sprintf("frame %d/%d", m.frame.Index, m.cfg.Frames)
	b.WriteString(fmt.Sprintf("   %s %s  %s  %s\n\n",
		ProgressBar(m.Fraction(), 36), dim.Render(timeStr), dim.Render(frameStr),
		dimmer.Render(time.Since(m.started).Round(time.Second).String())))

	for _, name := range m.fields {
		style := FieldStyle(name)
		b.WriteString(fmt.Sprintf("   %s %s  %s\n",
			style.Render(fmt.Sprintf("%-2s", name)),
			white.Render(fmt.Sprintf("%12.6g", m.frame.Totals[name])),
			style.Render(Sparkline(m.history[name], 40))))
	}

	b.WriteString(fmt.Sprintf("\n   %s %s  %s %s  %s %s\n",
		Label.Render("steps"), Value.Render(fmt.Sprint(m.steps)),
		Label.Render("rejected"), Value.Render(fmt.Sprint(m.rejected)),
		Label.Render("dt"), Value.Render(fmt.Sprintf("%.3g", m.frame.Stats.LastDt))))

	switch {
	case m.density != nil:
		lines := Heatmap(m.density)
		b.WriteString("\n" + Panel.Render(FieldStyle(m.preview).Render(strings.Join(lines, "\n"))) + "\n")
	case m.profile != nil:
		b.WriteString(fmt.Sprintf("\n   %s %s\n", Label.Render(m.preview+"(x)"),
			FieldStyle(m.preview).Render(Sparkline(m.profile, mapWidth))))
	}

	if m.err != nil {
		b.WriteString("\n   " + red.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dim.Render("   q stop") + "\n")
	return b.String()
}

// Sender is the part of tea.Program the observer needs.
type Sender interface {
	Send(msg tea.Msg)
}

type rowser interface {
	Rows(field []float64) [][]float64
}

// Observer forwards every frame to p, with a preview of the named field.
func Observer(p Sender, preview string) sim.Observer {
	return sim.ObserverFunc(func(f sim.Frame, snap sir.Snapshot) {
		p.Send(NewFrameMsg(f, snap, preview))
	})
}

// NewFrameMsg copies what the view needs out of snap, which may alias
// solver memory.
func NewFrameMsg(f sim.Frame, snap sir.Snapshot, preview string) FrameMsg {
	msg := FrameMsg{Frame: f}
	for _, field := range snap.Fields() {
		if field.Name != preview || len(field.Values) < 2 {
			continue
		}
		if r, ok := snap.(rowser); ok {
			msg.Density = Downsample(r.Rows(field.Values), mapWidth, mapHeight)
		} else {
			msg.Profile = append([]float64(nil), field.Values...)
		}
	}
	return msg
}

// Run drives simulator under a live view until the run ends or the user
// stops it.
func Run(ctx context.Context, title string, fields []string, preview string, simulator *sim.Simulator, cfg sim.Config) (*sim.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgress(title, fields, preview, cfg, cancel))
	simulator.AddObserver(Observer(p, preview))

	var (
		result *sim.Result
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, runErr = simulator.Run(ctx, cfg)
		p.Send(DoneMsg{Result: result, Err: runErr})
	}()

	_, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return result, err
	}
	return result, runErr
}

// Package tui provides the Bubbletea terminal control surface: arrow keys
// turn the dials, labels follow the store, and a level meter reads the
// engine's output tap.
package tui

import (
	"context"
	"errors"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tphakala/subtractesizer/internal/control"
	"github.com/tphakala/subtractesizer/internal/param"
	"github.com/tphakala/subtractesizer/internal/ringbuf"
	"github.com/tphakala/subtractesizer/internal/simdops"
)

// Config wires a Model to the rest of the synthesizer.
type Config struct {
	Title string
	Set   *param.Set
	// Initial holds the starting value of every parameter, indexed by ID.
	Initial []float64
	// Emit receives every event produced by a key press, in press order,
	// on the UI loop. It must return promptly and must not send to the
	// program.
	Emit control.Handler
	// Feed delivers confirmed values back to the UI. Optional.
	Feed *Feed
	// Tap is the engine's output ring; the Model becomes its only reader.
	// Optional.
	Tap *ringbuf.Ring
}

// Model is the Bubbletea model for the synthesizer front panel.
type Model struct {
	title  string
	params []param.Parameter
	values []float64
	emit   control.Handler
	feed   *Feed

	tap     *ringbuf.Ring
	ops     *simdops.Ops
	scratch []float32
	levelDB float64
	peakDB  float64

	quitting bool
}

// NewModel creates a Model from cfg.
func NewModel(cfg Config) Model {
	params := cfg.Set.All()
	values := make([]float64, len(params))
	for i, p := range params {
		values[i] = p.Default
		if i < len(cfg.Initial) {
			values[i] = p.Clamp(cfg.Initial[i])
		}
	}

	m := Model{
		title:   cfg.Title,
		params:  params,
		values:  values,
		emit:    cfg.Emit,
		feed:    cfg.Feed,
		tap:     cfg.Tap,
		ops:     simdops.Float32Ops(),
		levelDB: meterFloorDB,
		peakDB:  meterFloorDB,
	}
	if m.tap != nil {
		m.scratch = make([]float32, meterScratch)
	}
	return m
}

// Values returns the displayed value of every parameter.
func (m Model) Values() []float64 {
	out := make([]float64, len(m.values))
	copy(out, m.values)
	return out
}

// Level returns the last measured output level in dBFS.
func (m Model) Level() float64 {
	return m.levelDB
}

// Init starts the meter and the change feed.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.feed != nil {
		cmds = append(cmds, waitForChange(m.feed))
	}
	if m.tap != nil {
		cmds = append(cmds, meterTick())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case ParamsChangedMsg:
		for i, v := range msg.Values {
			if i < len(m.values) {
				m.values[i] = v
			}
		}
		if m.feed != nil {
			return m, waitForChange(m.feed)
		}

	case meterTickMsg:
		m.readMeter()
		return m, meterTick()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var id param.ID
	var coarse bool
	sign := 1

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		id = param.Volume
	case "down", "j":
		id, sign = param.Volume, -1
	case "pgup":
		id, coarse = param.Volume, true
	case "pgdown":
		id, sign, coarse = param.Volume, -1, true
	case "right", "l":
		id = param.QFactor
	case "left", "h":
		id, sign = param.QFactor, -1
	case "]":
		id, coarse = param.QFactor, true
	case "[":
		id, sign, coarse = param.QFactor, -1, true
	default:
		return m, nil
	}

	if int(id) >= len(m.params) {
		return m, nil
	}
	p := m.params[id]
	raw := int(math.Round(m.values[id])) + sign*stepSize(p, coarse)

	// Show the clamped value right away; the feed confirms it.
	m.values[id], _ = p.Normalize(raw)
	if m.emit != nil {
		m.emit(control.RawEvent{ID: id, Raw: raw})
	}
	return m, nil
}

// readMeter drains the tap and measures the most recent chunk.
func (m *Model) readMeter() {
	var last int
	for {
		n := m.tap.Read(m.scratch)
		if n == 0 {
			break
		}
		last = n
	}

	m.peakDB = math.Max(m.peakDB-peakDecayDB, meterFloorDB)
	if last == 0 {
		m.levelDB = meterFloorDB
		return
	}
	m.levelDB = toDB(m.ops.RMS(m.scratch[:last]))
	m.peakDB = math.Max(m.peakDB, m.levelDB)
}

// stepSize returns the raw increment for one key press, at least 1.
func stepSize(p param.Parameter, coarse bool) int {
	div := fineStepDivisor
	if coarse {
		div = coarseStepDivisor
	}
	return max(1, int(p.Span())/div)
}

func toDB(rms float64) float64 {
	if rms <= 0 {
		return meterFloorDB
	}
	return math.Max(20*math.Log10(rms), meterFloorDB)
}

func waitForChange(f *Feed) tea.Cmd {
	return func() tea.Msg {
		<-f.notify
		return ParamsChangedMsg{Values: f.Snapshot()}
	}
}

func meterTick() tea.Cmd {
	return tea.Tick(meterInterval, func(t time.Time) tea.Msg {
		return meterTickMsg(t)
	})
}

// Run shows the front panel until the user quits or ctx is cancelled.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(m, opts...)
	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	resampler "github.com/tphakala/go-stream-resampler"
)

// meter is the playback surface the UI polls.
type meter interface {
	Level() float64
	Frames() int64
	Ratio() float64
}

type tickMsg time.Time

// model is the rate knob and level meter. Key presses stage rate changes;
// the audio goroutine applies them at its next tick.
type model struct {
	rc         *resampler.RateControl
	meter      meter
	name       string
	inputRate  float64
	deviceRate float64

	speed  float64
	level  float64
	frames int64
	ratio  float64
	err    error
}

func newModel(rc *resampler.RateControl, m meter, name string, inputRate, deviceRate float64) model {
	return model{
		rc:         rc,
		meter:      m,
		name:       name,
		inputRate:  inputRate,
		deviceRate: deviceRate,
		speed:      1,
		ratio:      inputRate / deviceRate,
	}
}

func tick() tea.Cmd {
	return tea.Tick(uiRefresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the meter refresh.
func (m model) Init() tea.Cmd {
	return tick()
}

// Update handles key presses and meter ticks.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tickMsg:
		m.level = m.meter.Level()
		m.frames = m.meter.Frames()
		m.ratio = m.meter.Ratio()
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "+", "k":
		return m.setSpeed(m.speed * speedStep), nil
	case "down", "-", "j":
		return m.setSpeed(m.speed / speedStep), nil
	case "r", "0":
		return m.setSpeed(1), nil
	}
	return m, nil
}

// setSpeed stages a new effective input rate. Playing the input as if it
// were recorded at speed*inputRate shifts both tempo and pitch.
func (m model) setSpeed(speed float64) model {
	speed = min(max(speed, minSpeed), maxSpeed)
	if err := m.rc.Stage(m.inputRate*speed, m.deviceRate); err != nil {
		m.err = err
		return m
	}
	m.speed = speed
	m.err = nil
	return m
}

// View renders the meter.
func (m model) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "resample-play: %s\n\n", m.name)
	fmt.Fprintf(&b, "  %g Hz -> %g Hz\n", m.inputRate, m.deviceRate)
	fmt.Fprintf(&b, "  Speed:  %5.2fx  (ratio %.4f)\n", m.speed, m.ratio)
	fmt.Fprintf(&b, "  Level:  [%s] %6.1f dBFS\n", levelBar(m.level, meterWidth), dbfs(m.level))
	fmt.Fprintf(&b, "  Played: %.1fs\n", float64(m.frames)/m.deviceRate)
	if m.err != nil {
		fmt.Fprintf(&b, "\n  error: %v\n", m.err)
	}
	b.WriteString("\n  up/down: speed  r: reset  q: quit\n")
	return b.String()
}

func dbfs(rms float64) float64 {
	if rms <= 0 {
		return silenceDB
	}
	return max(20*math.Log10(rms), silenceDB)
}

// levelBar maps silenceDB..0 dBFS onto width cells.
func levelBar(rms float64, width int) string {
	filled := int(math.Round((dbfs(rms) - silenceDB) / -silenceDB * float64(width)))
	filled = min(max(filled, 0), width)
	return strings.Repeat("#", filled) + strings.Repeat(" ", width-filled)
}

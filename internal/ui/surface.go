package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	plot "github.com/chriskim06/drawille-go"

	"github.com/five82/fsrmon/internal/fsr"
	"github.com/five82/fsrmon/internal/metrics"
	"github.com/five82/fsrmon/internal/prefs"
	"github.com/five82/fsrmon/internal/render"
)

const plotLoop = "plot"

// surface holds what the render loops draw into. The Model keeps a pointer
// so draw callbacks and Update see the same caches; all access happens on
// the program goroutine.
type surface struct {
	backend  Backend
	metrics  *metrics.Metrics
	interval time.Duration

	theme    Theme
	styles   Styles
	prefs    prefs.Prefs
	selected int
	width    int
	height   int

	loops     map[string]*render.Loop
	listeners render.Listeners

	// Per-sensor panels, one per channel.
	panels []string

	// Aggregate plot.
	plot   string
	canvas *plot.Canvas
	data   [][]float64
	colors []plot.Color
	series []int
}

func newSurface(b Backend, m *metrics.Metrics, interval time.Duration, theme Theme, p prefs.Prefs) *surface {
	s := &surface{
		backend:  b,
		metrics:  m,
		interval: interval,
		prefs:    p,
		loops:    make(map[string]*render.Loop),
	}
	s.setTheme(theme)
	return s
}

func (s *surface) setTheme(t Theme) {
	s.theme = t
	s.styles = t.Styles()
}

func sensorLoop(channel int) string {
	return fmt.Sprintf("sensor-%d", channel)
}

// startSensors replaces the running loops with one loop per channel.
func (s *surface) startSensors(channels int) tea.Cmd {
	s.stopAll()
	s.panels = make([]string, channels)
	cmds := make([]tea.Cmd, 0, channels)
	for i := range channels {
		loop := render.NewLoop(sensorLoop(i), s.interval, func(time.Time) { s.drawSensor(i) }, s.metrics)
		loop.Attach(&s.listeners, func(int, int) {
			if i < len(s.panels) {
				s.panels[i] = ""
			}
		})
		s.loops[loop.Name()] = loop
		cmds = append(cmds, loop.Start())
	}
	return tea.Batch(cmds...)
}

// startPlot replaces the running loops with the aggregate plot loop.
func (s *surface) startPlot() tea.Cmd {
	s.stopAll()
	s.resizePlot()
	loop := render.NewLoop(plotLoop, s.interval, func(time.Time) { s.drawPlot() }, s.metrics)
	loop.Attach(&s.listeners, func(int, int) { s.resizePlot() })
	s.loops[loop.Name()] = loop
	return loop.Start()
}

// stopAll cancels every loop and drops its resize listener.
func (s *surface) stopAll() {
	for name, loop := range s.loops {
		loop.Stop()
		delete(s.loops, name)
	}
	s.panels = nil
	s.plot = ""
}

// frame routes a frame slot to its loop. Slots for loops that no longer
// exist end their schedule.
func (s *surface) frame(msg render.FrameMsg) tea.Cmd {
	loop, ok := s.loops[msg.Loop]
	if !ok {
		return nil
	}
	return loop.Frame(msg)
}

func (s *surface) resize(width, height int) {
	s.width, s.height = width, height
	s.listeners.Notify(width, height)
}

// contentHeight is the space between header and footer.
func (s *surface) contentHeight() int {
	return max(s.height-headerLines-footerLines, 0)
}

func (s *surface) drawSensor(channel int) {
	if channel >= len(s.panels) {
		return
	}
	value, ok := s.backend.History().ValueAt(channel, 0)
	if !ok {
		return
	}
	threshold, _ := s.backend.Thresholds().Get(channel)
	s.panels[channel] = s.renderSensor(channel, value, threshold)
}

func (s *surface) resizePlot() {
	w := max(s.width-4, MinBarWidth)
	h := max(s.contentHeight()-3, MinPlotHeight)
	p := plot.NewCanvas(w, h)
	p.ShowAxis = false
	if s.canvas != nil {
		p.NumDataPoints = s.canvas.NumDataPoints
	}
	s.canvas = &p
	s.plot = ""
}

// plotPoints is the trailing window drawn on the plot: two braille dots
// per cell, bounded by what the ring holds.
func (s *surface) plotPoints(available int) int {
	return min(available, max(s.width-4, MinBarWidth)*2)
}

func (s *surface) drawPlot() {
	ring := s.backend.History()
	thresholds := s.backend.Thresholds()
	channels := ring.Width()
	points := s.plotPoints(ring.Len())
	if points < 2 {
		s.plot = s.styles.FaintText.Render("Waiting for readings...")
		return
	}

	s.data = s.data[:0]
	s.colors = s.colors[:0]
	var limits []int
	for ch := range channels {
		if s.prefs.Hidden(ch) {
			continue
		}
		s.series = ring.Series(ch, s.series)
		if len(s.series) < points {
			continue
		}
		line := s.line(len(s.data))
		for j, v := range s.series[len(s.series)-points:] {
			line[j] = float64(v)
		}
		s.data = append(s.data, line[:points])
		s.colors = append(s.colors, s.lineColor(ch))
		if t, ok := thresholds.Get(ch); ok {
			limits = append(limits, t)
		}
	}
	if len(s.data) == 0 {
		s.plot = s.styles.FaintText.Render("All sensors hidden. Press 1-9 to show them.")
		return
	}
	for _, t := range limits {
		line := s.line(len(s.data))[:points]
		for j := range line {
			line[j] = float64(t)
		}
		s.data = append(s.data, line)
		s.colors = append(s.colors, plot.LightGray)
	}

	if flat(s.data) {
		s.plot = s.styles.FaintText.Render(fmt.Sprintf("All readings flat at %d", int(s.data[0][0])))
		return
	}

	s.canvas.NumDataPoints = points
	s.canvas.LineColors = s.colors
	s.canvas.Fill(s.data)
	s.plot = s.canvas.String()
}

// flat reports whether every plotted point has the same value; the canvas
// needs a non-empty range to scale into.
func flat(lines [][]float64) bool {
	first := lines[0][0]
	for _, line := range lines {
		for _, v := range line {
			if v != first {
				return false
			}
		}
	}
	return true
}

// line returns a reusable buffer for the i-th plotted series.
func (s *surface) line(i int) []float64 {
	need := max(s.width-4, MinBarWidth) * 2
	data := s.data[:cap(s.data)]
	if i < len(data) && cap(data[i]) >= need {
		return data[i][:need]
	}
	return make([]float64, need)
}

func (s *surface) lineColor(channel int) plot.Color {
	if channel == s.selected {
		return plot.Red
	}
	return plot.DimGray
}

// channelName labels a sensor for display.
func (s *surface) channelName(channel int) string {
	return fsr.ChannelName(channel, s.backend.History().Width())
}

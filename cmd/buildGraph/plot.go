package main

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// statsPoints implements XYer and YErrorer so a series can be drawn as a line
// with error bars.
type statsPoints []consumerStats

func (s statsPoints) Len() int                { return len(s) }
func (s statsPoints) XY(i int) (x, y float64) { return s[i].x, s[i].median }
func (s statsPoints) YError(i int) (low, high float64) {
	return s[i].median - s[i].min, s[i].max - s[i].median
}

// categoryTicks implements a categorical X-axis: 0,1,2,... => consumer counts.
type categoryTicks struct {
	positions []float64
	labels    []string
}

func (ct categoryTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for i, pos := range ct.positions {
		if pos >= min && pos <= max {
			ticks = append(ticks, plot.Tick{Value: pos, Label: ct.labels[i]})
		}
	}
	return ticks
}

// logNsTicks spreads roughly one labelled tick per 30px over a 9in-tall plot.
func logNsTicks(min, max float64) []plot.Tick {
	const nTicks = 648.0 / 30.0
	if min <= 0 {
		min = 1e-9
	}
	start, end := math.Log10(min), math.Log10(max)
	step := (end - start) / nTicks

	var ticks []plot.Tick
	for i := 0.0; i <= nTicks; i++ {
		y := math.Pow(10, start+i*step)
		ticks = append(ticks, plot.Tick{Value: y, Label: formatNs(y)})
	}
	return ticks
}

func darkTheme(p *plot.Plot) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	p.BackgroundColor = color.RGBA{R: 30, G: 30, B: 30, A: 255}
	p.Title.TextStyle.Color = white
	p.X.Label.TextStyle.Color = white
	p.Y.Label.TextStyle.Color = white
	p.X.Color = white
	p.Y.Color = white
	p.X.Tick.Label.Color = white
	p.Y.Tick.Label.Color = white
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.TextStyle.Color = white
}

// renderPlot draws one PNG with a line per implementation.
func renderPlot(title string, data series, filename string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Consumers"
	p.Y.Label.Text = "Time per consumed msg (ns)"
	p.Y.Tick.Marker = plot.TickerFunc(logNsTicks)
	darkTheme(p)
	p.Add(plotter.NewGrid())

	// Consumer counts become evenly spaced categories.
	xSet := make(map[float64]struct{})
	for _, byX := range data {
		for x := range byX {
			xSet[x] = struct{}{}
		}
	}
	xs := make([]float64, 0, len(xSet))
	for x := range xSet {
		xs = append(xs, x)
	}
	sort.Float64s(xs)

	category := make(map[float64]float64, len(xs))
	ticks := categoryTicks{}
	for i, x := range xs {
		category[x] = float64(i)
		ticks.positions = append(ticks.positions, float64(i))
		ticks.labels = append(ticks.labels, strconv.FormatFloat(x, 'f', -1, 64))
	}
	p.X.Tick.Marker = ticks

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	colors := plotutil.SoftColors
	shapes := []draw.GlyphDrawer{
		draw.CircleGlyph{},
		draw.SquareGlyph{},
		draw.TriangleGlyph{},
		draw.CrossGlyph{},
		draw.PlusGlyph{},
	}

	// Nudge each implementation sideways so error bars do not overlap.
	const spread = 0.4
	offsetStep := spread / float64(len(names))
	firstOffset := -spread/2 + offsetStep/2

	for i, name := range names {
		stats := buildStats(data[name])
		if len(stats) == 0 {
			continue
		}
		for j := range stats {
			stats[j].x = category[stats[j].consumers] + firstOffset + float64(i)*offsetStep
		}
		sort.Slice(stats, func(a, b int) bool { return stats[a].x < stats[b].x })
		sp := statsPoints(stats)

		line, err := plotter.NewLine(sp)
		if err != nil {
			return fmt.Errorf("line for %s: %w", name, err)
		}
		line.Color = colors[i%len(colors)]

		points, err := plotter.NewScatter(sp)
		if err != nil {
			return fmt.Errorf("scatter for %s: %w", name, err)
		}
		points.GlyphStyle.Radius = vg.Points(5)
		points.Color = colors[i%len(colors)]
		points.Shape = shapes[i%len(shapes)]

		errBars, err := plotter.NewYErrorBars(sp)
		if err != nil {
			return fmt.Errorf("error bars for %s: %w", name, err)
		}
		errBars.Color = colors[i%len(colors)]

		p.Add(line, points, errBars)
		p.Legend.Add(name, line, points)
	}

	return p.Save(12*vg.Inch, 9*vg.Inch, filename)
}

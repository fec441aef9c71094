// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package threadseries

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Palette is the sequence of line colors. Dataset i is drawn in
// Palette[i%len(Palette)].
var Palette = []color.Color{
	color.NRGBA{0x00, 0x00, 0xFF, 0xFF}, // blue
	color.NRGBA{0xFF, 0x00, 0x00, 0xFF}, // red
	color.NRGBA{0x00, 0x80, 0x00, 0xFF}, // green
	color.NRGBA{0xFF, 0xA5, 0x00, 0xFF}, // orange
	color.NRGBA{0x80, 0x00, 0x80, 0xFF}, // purple
	color.NRGBA{0xA5, 0x2A, 0x2A, 0xFF}, // brown
	color.NRGBA{0xFF, 0xC0, 0xCB, 0xFF}, // pink
	color.NRGBA{0x80, 0x80, 0x80, 0xFF}, // gray
}

// Formats lists the supported chart file formats.
var Formats = []string{"png", "svg", "pdf"}

// ChartOptions controls how charts are rendered.
type ChartOptions struct {
	// Format is "png", "svg" or "pdf". The empty string means png.
	Format string

	Width, Height vg.Length

	// DPI applies to png output only.
	DPI int

	// Threads are the x axis ticks. If nil, the thread counts of the
	// first series are used.
	Threads []int
}

// DefaultChartOptions returns a 12in x 8in, 300 dpi png setup.
func DefaultChartOptions() *ChartOptions {
	return &ChartOptions{
		Format: "png",
		Width:  12 * vg.Inch,
		Height: 8 * vg.Inch,
		DPI:    300,
	}
}

// CheckFormat returns an error if f is not a supported format.
func CheckFormat(f string) error {
	for _, g := range Formats {
		if f == g {
			return nil
		}
	}
	return fmt.Errorf("unknown chart format %q (want png, svg or pdf)", f)
}

const (
	lineWidth   = 2
	pointRad    = 3
	titleSize   = 16
	labelSize   = 12
	tickSize    = 10
	legendSize  = 10
	legendInset = 4
)

// Chart draws metric m of every series in ds onto one chart and
// writes it to dir, which is created if needed. It returns the path of
// the written file, dir/<stem>.<format>, replacing any existing file.
//
// Each dataset is one line with a marker at each present thread count.
// Points whose value is not finite are left out. For relative metrics,
// series without a baseline are not drawn; their colors stay reserved
// so that a dataset has the same color on every chart.
func Chart(ds []*Derived, m Metric, dir string, opts *ChartOptions) (string, error) {
	if opts == nil {
		opts = DefaultChartOptions()
	}
	format := opts.Format
	if format == "" {
		format = "png"
	}
	if err := CheckFormat(format); err != nil {
		return "", err
	}

	pl, err := newPlot(ds, m, opts)
	if err != nil {
		return "", err
	}

	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		def := DefaultChartOptions()
		w, h = def.Width, def.Height
	}
	var can vg.CanvasWriterTo
	switch format {
	case "png":
		dpi := opts.DPI
		if dpi <= 0 {
			dpi = DefaultChartOptions().DPI
		}
		can = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h),
			vgimg.UseDPI(dpi), vgimg.UseBackgroundColor(color.White))}
	case "svg":
		can = vgsvg.New(w, h)
	case "pdf":
		can = vgpdf.New(w, h)
	}
	pl.Draw(draw.New(can))

	if err := os.MkdirAll(dir, 0777); err != nil {
		return "", err
	}
	file := filepath.Join(dir, m.FileStem()) + "." + format
	f, err := os.Create(file)
	if err != nil {
		return "", err
	}
	if _, err := can.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", file, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return file, nil
}

func newPlot(ds []*Derived, m Metric, opts *ChartOptions) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = m.Title()
	pl.Title.TextStyle.Font.Size = titleSize
	pl.X.Label.Text = "Number of Threads"
	pl.X.Label.TextStyle.Font.Size = labelSize
	pl.Y.Label.Text = m.YLabel()
	pl.Y.Label.TextStyle.Font.Size = labelSize
	pl.X.Tick.Label.Font.Size = tickSize
	pl.Y.Tick.Label.Font.Size = tickSize

	pl.Add(plotter.NewGrid())

	lines := chartLines(ds, m)
	for _, cl := range lines {
		line, pts, err := plotter.NewLinePoints(cl.xys)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cl.label, err)
		}
		line.Color = cl.color
		line.Width = vg.Points(lineWidth)
		pts.Shape = draw.CircleGlyph{}
		pts.Color = cl.color
		pts.Radius = vg.Points(pointRad)
		pl.Add(line, pts)
		pl.Legend.Add(cl.label, line, pts)
	}

	threads := opts.Threads
	if threads == nil && len(ds) > 0 {
		threads = ds[0].Series.Threads
	}
	// The axis is bounded by the first and last tick.
	threads = normalizeThreads(threads)
	ticks := make([]plot.Tick, len(threads))
	for i, th := range threads {
		ticks[i] = plot.Tick{Value: float64(th), Label: strconv.Itoa(th)}
	}
	pl.X.Tick.Marker = plot.ConstantTicks(ticks)
	if len(threads) > 0 {
		pl.X.Min = math.Min(pl.X.Min, float64(threads[0]))
		pl.X.Max = math.Max(pl.X.Max, float64(threads[len(threads)-1]))
	}
	if len(lines) == 0 {
		pl.Y.Min, pl.Y.Max = 0, 1
	}

	pl.Legend.Top = true
	pl.Legend.Left = m == Speedup
	pl.Legend.XOffs = -legendInset
	if pl.Legend.Left {
		pl.Legend.XOffs = legendInset
	}
	pl.Legend.YOffs = -legendInset
	pl.Legend.TextStyle.Font.Size = legendSize
	return pl, nil
}

// A chartLine is the drawn form of one dataset.
type chartLine struct {
	label string
	color color.Color
	xys   plotter.XYs
}

// chartLines returns the lines of metric m, in dataset order. For
// relative metrics, datasets without a baseline are skipped, as are
// datasets with nothing to plot. Skipped datasets keep their palette
// slot.
func chartLines(ds []*Derived, m Metric) []chartLine {
	var lines []chartLine
	for i, d := range ds {
		if m.Relative() && !d.HasBaseline() {
			continue
		}
		xys := points(d.Series.Threads, d.Values(m))
		if len(xys) == 0 {
			continue
		}
		lines = append(lines, chartLine{d.Label(m), Palette[i%len(Palette)], xys})
	}
	return lines
}

// points returns the present, finite values of vs as chart points.
func points(threads []int, vs []Value) plotter.XYs {
	xys := make(plotter.XYs, 0, len(vs))
	for i, v := range vs {
		if !v.Present || math.IsInf(v.V, 0) || math.IsNaN(v.V) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(threads[i]), Y: v.V})
	}
	return xys
}

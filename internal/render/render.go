// Package render draws an assembled beacon map as a static plot (gonum/plot)
// or an interactive HTML scatter (go-echarts).
package render

import (
	"bytes"
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/beacon.map/internal/align"
	"github.com/banshee-data/beacon.map/internal/fsutil"
)

// PlotSize is the edge length of the square static plot.
const PlotSize = 8 * vg.Inch

// viridis ramp used for the z visual map.
var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

var (
	beaconColor  = color.RGBA{R: 0x31, G: 0x68, B: 0x8e, A: 0xff}
	scannerColor = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

// plotFormats maps file extensions to gonum/plot output formats.
var plotFormats = map[string]string{
	".png": "png",
	".svg": "svg",
	".pdf": "pdf",
}

// NewPlot builds a top-down (x/y) plot of the beacons and scanner positions.
func NewPlot(m *align.Map) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Beacon map - %d beacons, %d scanners", m.BeaconCount(), len(m.Positions))
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(plotter.NewGrid())

	beaconPts := make(plotter.XYs, len(m.Beacons))
	for i, b := range m.Beacons {
		beaconPts[i] = plotter.XY{X: float64(b.X), Y: float64(b.Y)}
	}
	beacons, err := plotter.NewScatter(beaconPts)
	if err != nil {
		return nil, fmt.Errorf("beacon scatter: %w", err)
	}
	beacons.GlyphStyle.Color = beaconColor
	beacons.GlyphStyle.Radius = vg.Points(1.5)
	beacons.GlyphStyle.Shape = draw.CircleGlyph{}

	scannerPts := make(plotter.XYs, len(m.Positions))
	labels := make([]string, len(m.Positions))
	for i, pos := range m.Positions {
		scannerPts[i] = plotter.XY{X: float64(pos.X), Y: float64(pos.Y)}
		labels[i] = strconv.Itoa(m.ScannerIDs[i])
	}
	scanners, err := plotter.NewScatter(scannerPts)
	if err != nil {
		return nil, fmt.Errorf("scanner scatter: %w", err)
	}
	scanners.GlyphStyle.Color = scannerColor
	scanners.GlyphStyle.Radius = vg.Points(4)
	scanners.GlyphStyle.Shape = draw.PyramidGlyph{}

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: scannerPts, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("scanner labels: %w", err)
	}
	for i := range names.TextStyle {
		names.TextStyle[i].XAlign = text.XCenter
	}
	names.Offset = vg.Point{Y: vg.Points(6)}

	p.Add(beacons, scanners, names)
	p.Legend.Add("beacons", beacons)
	p.Legend.Add("scanners", scanners)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// WritePlot renders the static plot to name on fsys. The format follows the
// file extension: .png, .svg or .pdf.
func WritePlot(fsys fsutil.FileSystem, name string, m *align.Map) error {
	format, ok := plotFormats[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return fmt.Errorf("unsupported plot format %q (want .png, .svg or .pdf)", filepath.Ext(name))
	}
	p, err := NewPlot(m)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(PlotSize, PlotSize, format)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	return fsutil.WriteTo(fsys, name, wt)
}

// NewScatter builds the interactive scatter: beacons by x/y with z on a
// colour visual map, and scanner positions as labelled diamonds.
func NewScatter(m *align.Map) *charts.Scatter {
	minZ, maxZ := zRange(m)
	pad := axisPad(m)

	beacons := make([]opts.ScatterData, 0, len(m.Beacons))
	for _, b := range m.Beacons {
		beacons = append(beacons, opts.ScatterData{Value: []interface{}{b.X, b.Y, b.Z}})
	}
	scanners := make([]opts.ScatterData, 0, len(m.Positions))
	for i, pos := range m.Positions {
		scanners = append(scanners, opts.ScatterData{
			Name:       fmt.Sprintf("scanner %d", m.ScannerIDs[i]),
			Value:      []interface{}{pos.X, pos.Y, pos.Z},
			Symbol:     "diamond",
			SymbolSize: 14,
		})
	}

	dist, a, b := m.MaxScannerDistance()

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Beacon Map", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Beacon Map",
			Subtitle: fmt.Sprintf("beacons=%d scanners=%d max distance=%d (%d-%d)", m.BeaconCount(), len(m.Positions), dist, a, b),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "5%"}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minZ),
			Max:        float32(maxZ),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)

	scatter.AddSeries("beacons", beacons, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	scatter.AddSeries("scanners", scanners)
	return scatter
}

// WriteHTML renders the interactive scatter to name on fsys.
func WriteHTML(fsys fsutil.FileSystem, name string, m *align.Map) error {
	var buf bytes.Buffer
	if err := NewScatter(m).Render(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return fsutil.WriteTo(fsys, name, &buf)
}

func zRange(m *align.Map) (lo, hi int) {
	first := true
	visit := func(z int) {
		if first || z < lo {
			lo = z
		}
		if first || z > hi {
			hi = z
		}
		first = false
	}
	for _, b := range m.Beacons {
		visit(b.Z)
	}
	for _, p := range m.Positions {
		visit(p.Z)
	}
	return lo, hi
}

// axisPad returns a symmetric x/y bound covering every point, so the chart
// stays square.
func axisPad(m *align.Map) int {
	pad := 1
	grow := func(v int) {
		if v < 0 {
			v = -v
		}
		if v > pad {
			pad = v
		}
	}
	for _, b := range m.Beacons {
		grow(b.X)
		grow(b.Y)
	}
	for _, p := range m.Positions {
		grow(p.X)
		grow(p.Y)
	}
	return pad + pad/10
}

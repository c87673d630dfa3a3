// Package charts rasterizes one analysis dimension per function. Every
// function returns nil bytes (and no error) when its input is absent or empty;
// callers treat that as "omit this chart", never as a failure.
//
// Inputs are plain data, converted and validated by the caller; this package
// imports nothing above the drawing libraries.
package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/fogleman/gg"
	chart "github.com/wcharczuk/go-chart/v2"
)

const (
	width  = 1024
	height = 640
)

// Swatch is one dominant-color row of a palette chart.
type Swatch struct {
	Hex     string
	RGB     [3]int
	Name    string
	Percent float64
}

// RGBPoint is one frame's mean channel intensities.
type RGBPoint struct {
	Frame   int
	R, G, B float64
}

// values converts a distribution into chart values sorted by descending share
// so render order is deterministic.
func values(s map[string]float64) []chart.Value {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if s[names[i]] != s[names[j]] {
			return s[names[i]] > s[names[j]]
		}
		return names[i] < names[j]
	})

	vals := make([]chart.Value, 0, len(names))
	for _, name := range names {
		vals = append(vals, chart.Value{Label: name, Value: s[name]})
	}
	return vals
}

// Bar renders a distribution as a vertical bar chart (shot-type shares).
func Bar(title string, s map[string]float64) ([]byte, error) {
	if len(s) == 0 {
		return nil, nil
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    width,
		Height:   height,
		BarWidth: 70,
		Bars:     values(s),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("charts: render bar: %w", err)
	}
	return buf.Bytes(), nil
}

// Donut renders a distribution as a donut chart (emotions, lighting zones).
func Donut(title string, s map[string]float64) ([]byte, error) {
	if len(s) == 0 {
		return nil, nil
	}

	graph := chart.DonutChart{
		Title:  title,
		Width:  height,
		Height: height,
		Values: values(s),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("charts: render donut: %w", err)
	}
	return buf.Bytes(), nil
}

// Histogram renders the per-frame mean RGB series as three line plots.
func Histogram(series []RGBPoint) ([]byte, error) {
	if len(series) < 2 {
		// A single point cannot form a line.
		return nil, nil
	}

	xs := make([]float64, len(series))
	rs := make([]float64, len(series))
	gs := make([]float64, len(series))
	bs := make([]float64, len(series))
	for i, p := range series {
		xs[i] = float64(p.Frame)
		rs[i] = p.R
		gs[i] = p.G
		bs[i] = p.B
	}

	graph := chart.Chart{
		Title:  "Color Intensity Over Time",
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Name: "Frame"},
		YAxis:  chart.YAxis{Name: "Mean intensity"},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "Red", XValues: xs, YValues: rs,
				Style: chart.Style{StrokeColor: chart.ColorRed}},
			chart.ContinuousSeries{Name: "Green", XValues: xs, YValues: gs,
				Style: chart.Style{StrokeColor: chart.ColorGreen}},
			chart.ContinuousSeries{Name: "Blue", XValues: xs, YValues: bs,
				Style: chart.Style{StrokeColor: chart.ColorBlue}},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("charts: render histogram: %w", err)
	}
	return buf.Bytes(), nil
}

// Radar renders composition dimension scores on a spider grid.
func Radar(s map[string]float64) ([]byte, error) {
	if len(s) == 0 {
		return nil, nil
	}

	vals := values(s)
	// Radar axes read better in a stable alphabetical order.
	sort.Slice(vals, func(i, j int) bool { return vals[i].Label < vals[j].Label })

	size := 640.0
	dc := gg.NewContext(int(size), int(size))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	cx, cy := size/2, size/2
	radius := size/2 - 90
	n := len(vals)

	angle := func(i int) float64 {
		return -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	}

	// Grid rings at 25% steps.
	dc.SetRGBA(0, 0, 0, 0.25)
	dc.SetLineWidth(1)
	for ring := 1; ring <= 4; ring++ {
		r := radius * float64(ring) / 4
		for i := 0; i <= n; i++ {
			x := cx + r*math.Cos(angle(i))
			y := cy + r*math.Sin(angle(i))
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}

	// Spokes and labels.
	dc.SetRGB(0, 0, 0)
	for i, v := range vals {
		x := cx + radius*math.Cos(angle(i))
		y := cy + radius*math.Sin(angle(i))
		dc.SetRGBA(0, 0, 0, 0.25)
		dc.DrawLine(cx, cy, x, y)
		dc.Stroke()

		lx := cx + (radius+35)*math.Cos(angle(i))
		ly := cy + (radius+35)*math.Sin(angle(i))
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawStringAnchored(v.Label, lx, ly, 0.5, 0.5)
	}

	// Score polygon, values normalized to 0..100.
	dc.SetRGBA(0.17, 0.35, 0.80, 0.45)
	for i, v := range vals {
		r := radius * clamp(v.Value, 0, 100) / 100
		x := cx + r*math.Cos(angle(i))
		y := cy + r*math.Sin(angle(i))
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.FillPreserve()
	dc.SetRGBA(0.17, 0.35, 0.80, 1)
	dc.SetLineWidth(2)
	dc.Stroke()

	return encodePNG(dc)
}

// Gauge renders a single 0..100 score as a semicircular dial.
func Gauge(score *float64) ([]byte, error) {
	if score == nil {
		return nil, nil
	}

	w, h := 640.0, 400.0
	dc := gg.NewContext(int(w), int(h))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	cx, cy := w/2, h-60
	radius := 220.0
	v := clamp(*score, 0, 100)

	// Track: top semicircle, drawn left to right.
	dc.SetLineWidth(32)
	dc.SetLineCapButt()
	dc.SetRGB(0.90, 0.90, 0.92)
	dc.DrawArc(cx, cy, radius, math.Pi, 2*math.Pi)
	dc.Stroke()

	// Fill, colored by band.
	switch {
	case v >= 70:
		dc.SetRGB(0.16, 0.65, 0.37)
	case v >= 40:
		dc.SetRGB(0.93, 0.69, 0.13)
	default:
		dc.SetRGB(0.84, 0.23, 0.21)
	}
	dc.DrawArc(cx, cy, radius, math.Pi, math.Pi+math.Pi*v/100)
	dc.Stroke()

	dc.SetRGB(0.15, 0.15, 0.15)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f / 100", v), cx, cy-radius/2, 0.5, 0.5)

	return encodePNG(dc)
}

// Palette renders color entries as swatch rows. Entries are rendered as
// given; the caller validates them first.
func Palette(entries []Swatch) ([]byte, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	rowH := 64.0
	w := 760.0
	h := rowH*float64(len(entries)) + 40
	dc := gg.NewContext(int(w), int(h))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for i, e := range entries {
		y := 20 + float64(i)*rowH

		dc.SetColor(color.RGBA{uint8(e.RGB[0]), uint8(e.RGB[1]), uint8(e.RGB[2]), 255})
		dc.DrawRoundedRectangle(20, y, 120, rowH-16, 6)
		dc.Fill()

		label := e.Hex
		if e.Name != "" {
			label = fmt.Sprintf("%s  (%s)", e.Name, e.Hex)
		}
		dc.SetRGB(0.15, 0.15, 0.15)
		dc.DrawStringAnchored(label, 160, y+(rowH-16)/2, 0, 0.5)
		dc.DrawStringAnchored(fmt.Sprintf("%.1f%%", e.Percent), w-40, y+(rowH-16)/2, 1, 0.5)
	}

	return encodePNG(dc)
}

// movementColors maps movement types to fixed hues so timelines are
// comparable across reports. Unlisted types share a neutral gray.
var movementColors = map[string]color.RGBA{
	"static": {158, 158, 158, 255},
	"pan":    {66, 133, 244, 255},
	"tilt":   {52, 168, 83, 255},
	"zoom":   {251, 188, 5, 255},
	"dolly":  {234, 67, 53, 255},
	"shake":  {156, 39, 176, 255},
}

// Timeline renders the per-frame camera-movement sequence as a segmented
// strip with a legend of the movement types present.
func Timeline(movements []string) ([]byte, error) {
	if len(movements) == 0 {
		return nil, nil
	}

	w, h := 1024.0, 220.0
	dc := gg.NewContext(int(w), int(h))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	stripX, stripY := 20.0, 40.0
	stripW, stripH := w-40, 70.0
	segW := stripW / float64(len(movements))

	seen := map[string]bool{}
	var legend []string
	for i, m := range movements {
		c, ok := movementColors[m]
		if !ok {
			c = color.RGBA{189, 189, 189, 255}
		}
		dc.SetColor(c)
		dc.DrawRectangle(stripX+float64(i)*segW, stripY, segW+0.5, stripH)
		dc.Fill()

		if !seen[m] {
			seen[m] = true
			legend = append(legend, m)
		}
	}

	// Legend row.
	x := stripX
	for _, m := range legend {
		c, ok := movementColors[m]
		if !ok {
			c = color.RGBA{189, 189, 189, 255}
		}
		dc.SetColor(c)
		dc.DrawRectangle(x, stripY+stripH+30, 18, 18)
		dc.Fill()
		dc.SetRGB(0.15, 0.15, 0.15)
		dc.DrawStringAnchored(m, x+26, stripY+stripH+39, 0, 0.5)
		tw, _ := dc.MeasureString(m)
		x += 26 + tw + 30
	}

	return encodePNG(dc)
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("charts: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

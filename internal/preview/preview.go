// Package preview renders a compiled show as brightness-over-time charts so
// a choreographer can eyeball a dancer's timeline without the costume.
package preview

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lightdance/showcompiler/internal/show"
	"github.com/lightdance/showcompiler/internal/showfile"
)

// Series is one output channel's brightness per frame.
type Series struct {
	Name string
	// Color is the channel's mean color at its brightest frame, as #rrggbb.
	Color  string
	Values []float64
}

// Brightness reduces every channel of s to its mean HSV value per frame, in
// wire order: fibers first, then LED strips.
func Brightness(s *show.Show) []Series {
	series := make([]Series, 0, len(s.Fibers)+len(s.LEDs))
	add := func(name string, pixels func(f showfile.Frame) []showfile.Pixel) {
		out := Series{Name: name, Color: "#000000", Values: make([]float64, len(s.Frames))}
		peak := -1.0
		for i, f := range s.Frames {
			mean := meanColor(pixels(f))
			_, _, v := mean.Hsv()
			out.Values[i] = v
			if v > peak {
				peak = v
				out.Color = mean.Clamped().Hex()
			}
		}
		series = append(series, out)
	}

	for i, name := range s.Fibers {
		add(name, func(f showfile.Frame) []showfile.Pixel { return f.Fibers[i : i+1] })
	}
	for i, name := range s.LEDs {
		add(name, func(f showfile.Frame) []showfile.Pixel { return f.LEDs[i] })
	}
	return series
}

func meanColor(pixels []showfile.Pixel) colorful.Color {
	if len(pixels) == 0 {
		return colorful.Color{}
	}
	var r, g, b float64
	for _, p := range pixels {
		r += float64(p.R)
		g += float64(p.G)
		b += float64(p.B)
	}
	n := 255 * float64(len(pixels))
	return colorful.Color{R: r / n, G: g / n, B: b / n}
}

// Options controls chart rendering.
type Options struct {
	// AssetsHost overrides where the HTML chart loads echarts from.
	AssetsHost string
}

// RenderHTML writes an interactive line chart of the show's brightness.
func RenderHTML(w io.Writer, s *show.Show, o Options) error {
	x := make([]string, len(s.Frames))
	for i, f := range s.Frames {
		x[i] = strconv.FormatUint(uint64(f.Start), 10)
	}

	initOpts := opts.Initialization{
		PageTitle: "Show preview: " + s.Dancer,
		Width:     "100%",
		Height:    "720px",
	}
	if o.AssetsHost != "" {
		initOpts.AssetsHost = o.AssetsHost
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: s.Dancer, Subtitle: fmt.Sprintf("frames=%d channels=%d", len(s.Frames), len(s.Fibers)+len(s.LEDs))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "start (ms)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "brightness", Min: 0, Max: 1}),
	)
	line.SetXAxis(x)

	for _, ser := range Brightness(s) {
		data := make([]opts.LineData, len(ser.Values))
		for i, v := range ser.Values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(ser.Name, data,
			charts.WithLineStyleOpts(opts.LineStyle{Color: ser.Color}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: ser.Color}),
		)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderPNG writes a static brightness plot with one hue-spread line per
// channel.
func RenderPNG(w io.Writer, s *show.Show) error {
	p := plot.New()
	p.Title.Text = "Show preview: " + s.Dancer
	p.X.Label.Text = "Start (ms)"
	p.Y.Label.Text = "Brightness"
	p.Y.Min = 0
	p.Y.Max = 1

	series := Brightness(s)
	colors := palette(len(series))
	for i, ser := range series {
		pts := make(plotter.XYs, len(ser.Values))
		for j, v := range ser.Values {
			pts[j] = plotter.XY{X: float64(s.Frames[j].Start), Y: v}
		}
		if len(pts) == 0 {
			continue
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("series %s: %w", ser.Name, err)
		}
		l.Color = colors[i]
		l.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(ser.Name, l)
	}
	p.Legend.Top = true
	p.Legend.Left = false

	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func palette(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := range colors {
		colors[i] = colorful.Hsv(360*float64(i)/float64(n), 0.7, 0.9)
	}
	return colors
}

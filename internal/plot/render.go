package plot

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Channel describes how one value stream is drawn.
type Channel struct {
	Name  string
	Color drawing.Color
}

var (
	Channel1 = Channel{Name: "Value 1", Color: chart.ColorRed}
	Channel2 = Channel{Name: "Value 2", Color: chart.ColorBlue}
)

// Renderer draws a single channel line chart at a fixed pixel size.
type Renderer struct {
	Width  int
	Height int
}

// Render draws ys against xs. A nil y range yields a blank image.
func (r Renderer) Render(ch Channel, xs, ys []float64, x Range, y *Range) (image.Image, error) {
	if y == nil || len(ys) == 0 {
		return r.blank(), nil
	}

	// go-chart needs two points to draw a line.
	if len(ys) == 1 {
		xs = []float64{xs[0], xs[0] + 1}
		ys = []float64{ys[0], ys[0]}
	}

	c := r.lineChart(ch, xs, ys, x, *y)

	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, errors.Wrapf(err, "render %s", ch.Name)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", ch.Name)
	}
	return img, nil
}

// gridStyle draws major grid lines on both axes.
var gridStyle = chart.Style{
	StrokeColor: drawing.ColorFromHex("dddddd"),
	StrokeWidth: 1.0,
}

func (r Renderer) lineChart(ch Channel, xs, ys []float64, x, y Range) chart.Chart {
	return chart.Chart{
		Width:  r.Width,
		Height: r.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 12, Left: 12, Right: 12, Bottom: 12},
		},
		XAxis: chart.XAxis{
			Name:           "Samples",
			Range:          &chart.ContinuousRange{Min: x.Min, Max: x.Max},
			GridMajorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			Name:           ch.Name,
			Range:          &chart.ContinuousRange{Min: y.Min, Max: y.Max},
			GridMajorStyle: gridStyle,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    ch.Name,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: ch.Color,
					StrokeWidth: 1.5,
				},
			},
		},
	}
}

func (r Renderer) blank() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

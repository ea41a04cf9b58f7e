package plot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderer_LineChartHasGrid(t *testing.T) {
	r := Renderer{Width: 300, Height: 120}
	c := r.lineChart(Channel1, []float64{0, 1}, []float64{3, 4}, Range{Min: 0, Max: 2}, Range{Min: 2, Max: 5})

	require.Equal(t, gridStyle, c.XAxis.GridMajorStyle)
	require.Equal(t, gridStyle, c.YAxis.GridMajorStyle)
	require.Greater(t, gridStyle.StrokeWidth, 0.0)
	require.NotZero(t, gridStyle.StrokeColor.A)

	require.Equal(t, 300, c.Width)
	require.Equal(t, "Samples", c.XAxis.Name)
	require.Equal(t, Channel1.Name, c.YAxis.Name)
	require.Equal(t, 2.0, c.XAxis.Range.GetMax())
	require.Equal(t, 5.0, c.YAxis.Range.GetMax())
}

func TestRenderer_RenderWithGrid(t *testing.T) {
	img, err := Renderer{Width: 300, Height: 120}.Render(Channel2, []float64{0, 1, 2}, []float64{1, -1, 0}, Range{Min: 0, Max: 3}, &Range{Min: -2, Max: 2})
	require.NoError(t, err)
	require.Equal(t, 300, img.Bounds().Dx())
	require.Equal(t, 120, img.Bounds().Dy())
}

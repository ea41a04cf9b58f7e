// Package plot turns series snapshots into axis bounds and rendered channel
// images without blocking the caller that requested them.
package plot

import (
	"gonum.org/v1/gonum/floats"

	"serial-plotter/internal/pipeline"
)

// Range is a closed interval on one axis.
type Range struct {
	Min float64
	Max float64
}

// Bounds are the axis limits for both channel plots. Y1 or Y2 is nil while
// that channel has no values.
type Bounds struct {
	X  Range
	Y1 *Range
	Y2 *Range
}

// ComputeBounds gives X as [0, n) shared by both plots and each channel's Y
// as [min-1, max+1].
func ComputeBounds(s pipeline.Snapshot) Bounds {
	return Bounds{
		X:  Range{Min: 0, Max: float64(s.Len())},
		Y1: valueRange(s.V1),
		Y2: valueRange(s.V2),
	}
}

func valueRange(vs []float64) *Range {
	if len(vs) == 0 {
		return nil
	}
	return &Range{
		Min: floats.Min(vs) - 1,
		Max: floats.Max(vs) + 1,
	}
}

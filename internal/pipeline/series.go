package pipeline

import "serial-plotter/internal/sample"

// Series is the accumulated history of one connection. Index, V1 and V2
// always have equal length and Index is 0..n-1.
type Series struct {
	index []float64
	v1    []float64
	v2    []float64
}

func (s *Series) Append(smp sample.Sample) {
	s.index = append(s.index, float64(len(s.index)))
	s.v1 = append(s.v1, smp.V1)
	s.v2 = append(s.v2, smp.V2)
}

func (s *Series) Len() int {
	return len(s.index)
}

// Snapshot is an immutable copy of a Series handed to renderers.
type Snapshot struct {
	Index []float64
	V1    []float64
	V2    []float64
}

func (s Snapshot) Len() int {
	return len(s.Index)
}

func (s *Series) Snapshot() Snapshot {
	return Snapshot{
		Index: append([]float64(nil), s.index...),
		V1:    append([]float64(nil), s.v1...),
		V2:    append([]float64(nil), s.v2...),
	}
}

// Package scale standardizes encoded numeric blocks.
package scale

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/scoreprep/pkg/pipeline"
)

// Standard scales columns to unit variance and, when WithMean is set, zero mean.
// Statistics ignore NaN cells, which pass through Transform unchanged.
// A column with zero variance keeps a scale of 1.
type Standard struct {
	WithMean bool
	WithStd  bool
	Mean     []float64
	Scale    []float64
	Fitted   bool
}

// NewStandard returns a scaler that always divides by the standard deviation.
func NewStandard(withMean bool) *Standard {
	return &Standard{WithMean: withMean, WithStd: true}
}

func (s *Standard) Name() string { return "scaler" }

func (s *Standard) Fit(ctx context.Context, m *mat.Dense) error {
	r, c := m.Dims()
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		var sum float64
		var n int
		for _, v := range col {
			if !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		s.Scale[j] = 1
		if n == 0 {
			s.Mean[j] = math.NaN()
			continue
		}
		mean := sum / float64(n)
		var ss float64
		for _, v := range col {
			if !math.IsNaN(v) {
				d := v - mean
				ss += d * d
			}
		}
		s.Mean[j] = mean
		if sd := math.Sqrt(ss / float64(n)); sd > 0 && s.WithStd {
			s.Scale[j] = sd
		}
	}
	s.Fitted = true
	return nil
}

func (s *Standard) Transform(ctx context.Context, m *mat.Dense) (*mat.Dense, error) {
	if !s.Fitted {
		return nil, fmt.Errorf("%s: %w", s.Name(), pipeline.ErrNotFitted)
	}
	r, c := m.Dims()
	if c != len(s.Scale) {
		return nil, fmt.Errorf("%s: fitted on %d columns, got %d", s.Name(), len(s.Scale), c)
	}
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			if s.WithMean && !math.IsNaN(s.Mean[j]) {
				v -= s.Mean[j]
			}
			out.Set(i, j, v/s.Scale[j])
		}
	}
	return out, nil
}

package impute

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/wdm0006/scoreprep/pkg/frame"
	"github.com/wdm0006/scoreprep/pkg/pipeline"
)

type Median struct {
	Column string
	Value  float64
	Fitted bool
}

func (t *Median) Name() string { return "impute_median" }

func (t *Median) Fit(ctx context.Context, f *frame.Frame) error {
	col, err := column(f, t.Column)
	if err != nil {
		return err
	}
	vals, err := observed(col)
	if err != nil {
		return err
	}
	t.Value = MedianOf(vals)
	t.Fitted = true
	return nil
}

func (t *Median) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if !t.Fitted {
		return nil, fmt.Errorf("%s %s: %w", t.Name(), t.Column, pipeline.ErrNotFitted)
	}
	return fillFloat(f, t.Column, t.Value)
}

// MedianOf returns the median of vals, NaN when empty. vals is sorted in place.
func MedianOf(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 0 {
		return (vals[mid-1] + vals[mid]) / 2
	}
	return vals[mid]
}

package impute

import (
	"context"
	"fmt"
	"math"

	"github.com/wdm0006/scoreprep/pkg/frame"
	"github.com/wdm0006/scoreprep/pkg/pipeline"
)

// Mode fills nulls with the most frequent value seen at Fit. Ties go to the
// smallest value. String columns use Value; numeric columns use Number.
type Mode struct {
	Column string
	Value  string
	Number float64
	Found  bool
	Fitted bool
}

func (t *Mode) Name() string { return "impute_mode" }

func (t *Mode) Fit(ctx context.Context, f *frame.Frame) error {
	col, err := column(f, t.Column)
	if err != nil {
		return err
	}
	t.Found = false
	t.Number = math.NaN()
	t.Value = ""
	switch c := col.(type) {
	case *frame.StringColumn:
		counts := map[string]int{}
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok {
				counts[v]++
			}
		}
		var bestc int
		for v, n := range counts {
			if n > bestc || (n == bestc && v < t.Value) {
				t.Value, bestc = v, n
			}
		}
		t.Found = bestc > 0
	case *frame.IntColumn, *frame.FloatColumn:
		vals, err := observed(col)
		if err != nil {
			return err
		}
		counts := map[float64]int{}
		for _, v := range vals {
			counts[v]++
		}
		var bestc int
		for v, n := range counts {
			if n > bestc || (n == bestc && v < t.Number) {
				t.Number, bestc = v, n
			}
		}
		t.Found = bestc > 0
	default:
		return fmt.Errorf("column %s: mode unsupported for %v", t.Column, col.Kind())
	}
	t.Fitted = true
	return nil
}

func (t *Mode) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if !t.Fitted {
		return nil, fmt.Errorf("%s %s: %w", t.Name(), t.Column, pipeline.ErrNotFitted)
	}
	col, err := column(f, t.Column)
	if err != nil {
		return nil, err
	}
	if col.Kind() == frame.KindString {
		if !t.Found {
			return f.Clone(), nil
		}
		return fillString(f, t.Column, t.Value)
	}
	return fillFloat(f, t.Column, t.Number)
}

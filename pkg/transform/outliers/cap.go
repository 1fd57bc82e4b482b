// Package outliers clips numeric columns to fixed bounds.
package outliers

import (
	"context"
	"fmt"
	"math"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

// Cap clamps a numeric column into [Min, Max]; a nil bound is open.
// Int columns stay int.
type Cap struct {
	Column string
	Min    *float64
	Max    *float64
}

func (t *Cap) Name() string { return "cap_range" }

func (t *Cap) clamp(v float64) float64 {
	if t.Min != nil && v < *t.Min {
		v = *t.Min
	}
	if t.Max != nil && v > *t.Max {
		v = *t.Max
	}
	return v
}

func (t *Cap) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if _, ok := f.ColumnByName(t.Column); !ok {
		return nil, fmt.Errorf("%w: %s", frame.ErrMissingColumn, t.Column)
	}
	out := f.Clone()
	col, _ := out.ColumnByName(t.Column)
	switch c := col.(type) {
	case *frame.FloatColumn:
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok {
				c.Set(i, t.clamp(v))
			}
		}
	case *frame.IntColumn:
		for i := 0; i < c.Len(); i++ {
			if v, ok := c.Get(i); ok {
				c.Set(i, int64(math.Round(t.clamp(float64(v)))))
			}
		}
	default:
		return nil, fmt.Errorf("%s: column %s is %v, not numeric", t.Name(), t.Column, col.Kind())
	}
	return out, nil
}

// Package impute fills null cells with a statistic learned on a fitting frame.
//
// Every imputer is fitted on one frame and may then be applied to any frame
// carrying the same column; Apply leaves its input untouched. Numeric fills
// always produce a float column.
package impute

import (
	"fmt"
	"math"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

func column(f *frame.Frame, name string) (frame.Column, error) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", frame.ErrMissingColumn, name)
	}
	return col, nil
}

// observed returns the non-null values of a numeric (or numeric-coercible) column.
func observed(col frame.Column) ([]float64, error) {
	vals, err := frame.Float64s(col)
	if err != nil {
		return nil, err
	}
	out := vals[:0:0]
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// fillFloat returns a copy of f whose column name is a float column with nulls
// replaced by v. A NaN v leaves nulls in place.
func fillFloat(f *frame.Frame, name string, v float64) (*frame.Frame, error) {
	col, err := column(f, name)
	if err != nil {
		return nil, err
	}
	vals, err := frame.Float64s(col)
	if err != nil {
		return nil, err
	}
	fc := frame.NewFloatColumn(name, len(vals))
	for i, x := range vals {
		switch {
		case !math.IsNaN(x):
			fc.Set(i, x)
		case !math.IsNaN(v):
			fc.Set(i, v)
		default:
			fc.SetNull(i)
		}
	}
	out := f.Clone()
	if err := out.Replace(fc); err != nil {
		return nil, err
	}
	return out, nil
}

// fillString returns a copy of f with nulls in the string column name set to v.
func fillString(f *frame.Frame, name, v string) (*frame.Frame, error) {
	out := f.Clone()
	col, err := column(out, name)
	if err != nil {
		return nil, err
	}
	sc, ok := col.(*frame.StringColumn)
	if !ok {
		return nil, fmt.Errorf("column %s: expected string column, got %v", name, col.Kind())
	}
	for i := 0; i < sc.Len(); i++ {
		if sc.IsNull(i) {
			sc.Set(i, v)
		}
	}
	return out, nil
}

// Package encode converts frame columns into dense numeric blocks.
package encode

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

// ErrNonFinite is returned for a numeric cell holding +Inf or -Inf.
var ErrNonFinite = errors.New("non-finite value")

// Numeric passes columns through as floats, one output column per input.
// Null cells become NaN; infinite cells are an error.
type Numeric struct {
	Columns []string
}

func (e *Numeric) Name() string { return "numeric" }

// Fit only checks that the columns exist and can be read as numbers.
func (e *Numeric) Fit(ctx context.Context, f *frame.Frame) error {
	for _, name := range e.Columns {
		col, ok := f.ColumnByName(name)
		if !ok {
			return fmt.Errorf("%w: %s", frame.ErrMissingColumn, name)
		}
		if _, err := finite(col); err != nil {
			return err
		}
	}
	return nil
}

func (e *Numeric) Encode(ctx context.Context, f *frame.Frame) (*mat.Dense, error) {
	m := mat.NewDense(f.Rows(), len(e.Columns), nil)
	for j, name := range e.Columns {
		col, ok := f.ColumnByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", frame.ErrMissingColumn, name)
		}
		vals, err := finite(col)
		if err != nil {
			return nil, err
		}
		m.SetCol(j, vals)
	}
	return m, nil
}

func (e *Numeric) FeatureNames() []string { return append([]string(nil), e.Columns...) }

func finite(col frame.Column) ([]float64, error) {
	vals, err := frame.Float64s(col)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: column %s row %d is %v", ErrNonFinite, col.Name(), i, v)
		}
	}
	return vals, nil
}

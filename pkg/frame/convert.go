package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"gonum.org/v1/gonum/mat"
)

// Float64s reads c as floats. Nulls become NaN; string cells are coerced and
// an uncoercible cell is an error.
func Float64s(c Column) ([]float64, error) {
	out := make([]float64, c.Len())
	for i := range out {
		if c.IsNull(i) {
			out[i] = math.NaN()
			continue
		}
		switch col := c.(type) {
		case *FloatColumn:
			out[i], _ = col.Get(i)
		case *IntColumn:
			v, _ := col.Get(i)
			out[i] = float64(v)
		case *BoolColumn:
			v, _ := col.Get(i)
			if v {
				out[i] = 1
			}
		case *StringColumn:
			s, _ := col.Get(i)
			v, err := cast.ToFloat64E(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("column %s row %d: %w", c.Name(), i, err)
			}
			out[i] = v
		default:
			return nil, fmt.Errorf("column %s: unsupported kind %v", c.Name(), c.Kind())
		}
	}
	return out, nil
}

// Strings reads c as text, formatting numbers the way they would be written to CSV.
// valid[i] is false for null cells.
func Strings(c Column) (vals []string, valid []bool) {
	vals = make([]string, c.Len())
	valid = make([]bool, c.Len())
	for i := range vals {
		if c.IsNull(i) {
			continue
		}
		valid[i] = true
		switch col := c.(type) {
		case *StringColumn:
			vals[i], _ = col.Get(i)
		case *FloatColumn:
			v, _ := col.Get(i)
			vals[i] = strconv.FormatFloat(v, 'g', -1, 64)
		case *IntColumn:
			v, _ := col.Get(i)
			vals[i] = strconv.FormatInt(v, 10)
		case *BoolColumn:
			v, _ := col.Get(i)
			vals[i] = strconv.FormatBool(v)
		}
	}
	return vals, valid
}

// FromMatrix wraps a dense matrix as a Frame of float columns named by names.
// NaN cells become nulls.
func FromMatrix(names []string, m mat.Matrix) (*Frame, error) {
	r, c := m.Dims()
	if len(names) != c {
		return nil, fmt.Errorf("frame from matrix: %d names for %d columns", len(names), c)
	}
	cols := make([]Column, c)
	for j := 0; j < c; j++ {
		fc := NewFloatColumn(names[j], r)
		for i := 0; i < r; i++ {
			v := m.At(i, j)
			if math.IsNaN(v) {
				fc.SetNull(i)
				continue
			}
			fc.Set(i, v)
		}
		cols[j] = fc
	}
	return fromColumns(cols, r), nil
}

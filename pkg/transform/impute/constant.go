package impute

import (
	"context"

	"github.com/spf13/cast"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

// Constant fills nulls with a fixed value, coerced to the column's kind.
// It is stateless and safe to apply without fitting.
type Constant struct {
	Column string
	Value  any
}

func (t *Constant) Name() string { return "impute_constant" }

func (t *Constant) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	col, err := column(f, t.Column)
	if err != nil {
		return nil, err
	}
	if col.Kind() == frame.KindString {
		s, err := cast.ToStringE(t.Value)
		if err != nil {
			return nil, err
		}
		return fillString(f, t.Column, s)
	}
	v, err := cast.ToFloat64E(t.Value)
	if err != nil {
		return nil, err
	}
	return fillFloat(f, t.Column, v)
}

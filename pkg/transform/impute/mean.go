package impute

import (
	"context"
	"fmt"
	"math"

	"github.com/wdm0006/scoreprep/pkg/frame"
	"github.com/wdm0006/scoreprep/pkg/pipeline"
)

type Mean struct {
	Column string
	Value  float64
	Fitted bool
}

func (t *Mean) Name() string { return "impute_mean" }

func (t *Mean) Fit(ctx context.Context, f *frame.Frame) error {
	col, err := column(f, t.Column)
	if err != nil {
		return err
	}
	vals, err := observed(col)
	if err != nil {
		return err
	}
	t.Value = math.NaN()
	if len(vals) > 0 {
		var sum float64
		for _, v := range vals {
			sum += v
		}
		t.Value = sum / float64(len(vals))
	}
	t.Fitted = true
	return nil
}

func (t *Mean) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if !t.Fitted {
		return nil, fmt.Errorf("%s %s: %w", t.Name(), t.Column, pipeline.ErrNotFitted)
	}
	return fillFloat(f, t.Column, t.Value)
}

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

var (
	// ErrNotFitted is returned when a stateful step is applied before Fit.
	ErrNotFitted = errors.New("not fitted")
	// ErrEmptyFrame is returned when fitting or transforming a frame with no rows.
	ErrEmptyFrame = errors.New("empty frame")
)

// Transform is a mutation applied to a Frame. Implementations return a new
// Frame and leave the input untouched.
type Transform interface {
	Name() string
	Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error)
}

// Fitter is a Transform whose Apply uses statistics learned by Fit.
type Fitter interface {
	Transform
	Fit(ctx context.Context, f *frame.Frame) error
}

// Encoder turns frame columns into a dense numeric block.
type Encoder interface {
	Name() string
	Fit(ctx context.Context, f *frame.Frame) error
	Encode(ctx context.Context, f *frame.Frame) (*mat.Dense, error)
	FeatureNames() []string
}

// MatrixStep is a fitted numeric transform over encoded blocks.
type MatrixStep interface {
	Name() string
	Fit(ctx context.Context, m *mat.Dense) error
	Transform(ctx context.Context, m *mat.Dense) (*mat.Dense, error)
}

// Pipeline composes a sequence of Transforms.
type Pipeline struct {
	Steps []Transform
}

func NewPipeline() *Pipeline { return &Pipeline{} }

func (p *Pipeline) Add(t Transform) *Pipeline {
	p.Steps = append(p.Steps, t)
	return p
}

// Run applies every step in order.
func (p *Pipeline) Run(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	var err error
	cur := f
	for _, t := range p.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cur, err = t.Apply(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name(), err)
		}
	}
	return cur, nil
}

// FitApply fits each Fitter on the output of the steps before it, then applies it.
func (p *Pipeline) FitApply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	var err error
	cur := f
	for _, t := range p.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ft, ok := t.(Fitter); ok {
			if err := ft.Fit(ctx, cur); err != nil {
				return nil, fmt.Errorf("%s: fit: %w", t.Name(), err)
			}
		}
		cur, err = t.Apply(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Name(), err)
		}
	}
	return cur, nil
}

package pipeline

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

// Branch routes a fixed set of columns through frame-level preparation,
// an encoder and a chain of matrix steps.
type Branch struct {
	Name    string
	Columns []string
	Prep    *Pipeline
	Encoder Encoder
	Post    []MatrixStep
	Fitted  bool
}

func (b *Branch) fitTransform(ctx context.Context, f *frame.Frame) (*mat.Dense, error) {
	sub, err := f.Select(b.Columns...)
	if err != nil {
		return nil, err
	}
	prepared := sub
	if b.Prep != nil {
		if prepared, err = b.Prep.FitApply(ctx, sub); err != nil {
			return nil, err
		}
	}
	if err := b.Encoder.Fit(ctx, prepared); err != nil {
		return nil, fmt.Errorf("%s: fit: %w", b.Encoder.Name(), err)
	}
	m, err := b.Encoder.Encode(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Encoder.Name(), err)
	}
	for _, s := range b.Post {
		if err := s.Fit(ctx, m); err != nil {
			return nil, fmt.Errorf("%s: fit: %w", s.Name(), err)
		}
		if m, err = s.Transform(ctx, m); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	b.Fitted = true
	return m, nil
}

func (b *Branch) transform(ctx context.Context, f *frame.Frame) (*mat.Dense, error) {
	if !b.Fitted {
		return nil, fmt.Errorf("branch %s: %w", b.Name, ErrNotFitted)
	}
	sub, err := f.Select(b.Columns...)
	if err != nil {
		return nil, err
	}
	prepared := sub
	if b.Prep != nil {
		if prepared, err = b.Prep.Run(ctx, sub); err != nil {
			return nil, err
		}
	}
	m, err := b.Encoder.Encode(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Encoder.Name(), err)
	}
	for _, s := range b.Post {
		if m, err = s.Transform(ctx, m); err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
	}
	return m, nil
}

// ColumnTransformer runs its branches independently over the same input and
// concatenates their outputs column-wise in branch order. Columns that no
// branch names are dropped.
type ColumnTransformer struct {
	Branches []*Branch
	Fitted   bool
}

func NewColumnTransformer(branches ...*Branch) *ColumnTransformer {
	return &ColumnTransformer{Branches: branches}
}

// Columns lists every input column consumed by the transformer.
func (ct *ColumnTransformer) Columns() []string {
	var out []string
	for _, b := range ct.Branches {
		out = append(out, b.Columns...)
	}
	return out
}

// FitTransform learns every branch's state from f and returns f transformed.
func (ct *ColumnTransformer) FitTransform(ctx context.Context, f *frame.Frame) (*mat.Dense, error) {
	if err := ct.check(f); err != nil {
		return nil, err
	}
	blocks := make([]*mat.Dense, 0, len(ct.Branches))
	for _, b := range ct.Branches {
		m, err := b.fitTransform(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("branch %s: %w", b.Name, err)
		}
		blocks = append(blocks, m)
	}
	ct.Fitted = true
	return hstack(blocks), nil
}

// Fit learns state from f, discarding the transformed output.
func (ct *ColumnTransformer) Fit(ctx context.Context, f *frame.Frame) error {
	_, err := ct.FitTransform(ctx, f)
	return err
}

// Transform applies fitted state to f. It never changes that state.
func (ct *ColumnTransformer) Transform(ctx context.Context, f *frame.Frame) (*mat.Dense, error) {
	if !ct.Fitted {
		return nil, ErrNotFitted
	}
	if err := ct.check(f); err != nil {
		return nil, err
	}
	blocks := make([]*mat.Dense, 0, len(ct.Branches))
	for _, b := range ct.Branches {
		m, err := b.transform(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("branch %s: %w", b.Name, err)
		}
		blocks = append(blocks, m)
	}
	return hstack(blocks), nil
}

// FeatureNames returns output column names in output order. Only valid after Fit.
func (ct *ColumnTransformer) FeatureNames() []string {
	var out []string
	for _, b := range ct.Branches {
		out = append(out, b.Encoder.FeatureNames()...)
	}
	return out
}

// Width is the number of output columns after Fit.
func (ct *ColumnTransformer) Width() int { return len(ct.FeatureNames()) }

func (ct *ColumnTransformer) check(f *frame.Frame) error {
	if len(ct.Branches) == 0 {
		return fmt.Errorf("column transformer has no branches")
	}
	if f.Rows() == 0 {
		return ErrEmptyFrame
	}
	return f.Has(ct.Columns()...)
}

func hstack(blocks []*mat.Dense) *mat.Dense {
	out := blocks[0]
	for _, b := range blocks[1:] {
		var aug mat.Dense
		aug.Augment(out, b)
		out = &aug
	}
	return out
}

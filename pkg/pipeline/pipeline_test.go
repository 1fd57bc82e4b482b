package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wdm0006/scoreprep/pkg/frame"
	"github.com/wdm0006/scoreprep/pkg/pipeline"
	"github.com/wdm0006/scoreprep/pkg/transform/encode"
	imp "github.com/wdm0006/scoreprep/pkg/transform/impute"
	"github.com/wdm0006/scoreprep/pkg/transform/scale"
	std "github.com/wdm0006/scoreprep/pkg/transform/standardize"
)

func makeFrame(xs []any, ss []any) *frame.Frame {
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "x", Type: frame.KindFloat, Nullable: true},
		{Name: "s", Type: frame.KindString, Nullable: true},
		{Name: "extra", Type: frame.KindInt, Nullable: true},
	}}
	f := frame.NewFrame(s)
	for i := range xs {
		f.AppendNullRow()
		_ = f.SetCell(i, "x", xs[i])
		_ = f.SetCell(i, "s", ss[i])
		_ = f.SetCell(i, "extra", int64(i))
	}
	return f
}

func TestPipeline(t *testing.T) {
	f := makeFrame([]any{1.0, nil}, []any{" Foo ", nil})

	p := pipeline.NewPipeline().Add(&imp.Mean{Column: "x"}).Add(&std.Trim{Column: "s"})
	out, err := p.FitApply(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	colX, _ := out.ColumnByName("x")
	if colX.IsNull(1) {
		t.Fatal("imputer failed to fill null")
	}
	colS, _ := out.ColumnByName("s")
	s0, _ := colS.(*frame.StringColumn).Get(0)
	if s0 != "Foo" {
		t.Fatalf("trim failed, got %q", s0)
	}
}

func TestPipelineRunRequiresFit(t *testing.T) {
	f := makeFrame([]any{1.0}, []any{"a"})
	p := pipeline.NewPipeline().Add(&imp.Median{Column: "x"})
	if _, err := p.Run(context.Background(), f); !errors.Is(err, pipeline.ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
}

func newTransformer() *pipeline.ColumnTransformer {
	num := &pipeline.Branch{
		Name:    "num",
		Columns: []string{"x"},
		Prep:    pipeline.NewPipeline().Add(&imp.Median{Column: "x"}),
		Encoder: &encode.Numeric{Columns: []string{"x"}},
		Post:    []pipeline.MatrixStep{scale.NewStandard(true)},
	}
	cat := &pipeline.Branch{
		Name:    "cat",
		Columns: []string{"s"},
		Prep:    pipeline.NewPipeline().Add(&imp.Mode{Column: "s"}),
		Encoder: &encode.OneHot{Columns: []string{"s"}, HandleUnknown: encode.UnknownIgnore},
		Post:    []pipeline.MatrixStep{scale.NewStandard(false)},
	}
	return pipeline.NewColumnTransformer(num, cat)
}

func TestColumnTransformerShape(t *testing.T) {
	ctx := context.Background()
	train := makeFrame([]any{1.0, 3.0, nil}, []any{"a", "b", "b"})
	ct := newTransformer()
	m, err := ct.FitTransform(ctx, train)
	if err != nil {
		t.Fatal(err)
	}
	r, c := m.Dims()
	if r != 3 || c != 3 {
		t.Fatalf("dims = %dx%d, want 3x3", r, c)
	}
	want := []string{"x", "s_a", "s_b"}
	got := ct.FeatureNames()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("feature names = %v, want %v", got, want)
		}
	}
	// median fill of 2 equals the mean, so the centered value is 0
	if v := m.At(2, 0); v != 0 {
		t.Fatalf("imputed+scaled value = %v, want 0", v)
	}
}

func TestColumnTransformerTransformIsRepeatable(t *testing.T) {
	ctx := context.Background()
	ct := newTransformer()
	if err := ct.Fit(ctx, makeFrame([]any{1.0, 3.0}, []any{"a", "b"})); err != nil {
		t.Fatal(err)
	}
	test := makeFrame([]any{nil, 5.0}, []any{"zzz", nil})
	a, err := ct.Transform(ctx, test)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ct.Transform(ctx, test)
	if err != nil {
		t.Fatal(err)
	}
	ra, ca := a.Dims()
	for i := 0; i < ra; i++ {
		for j := 0; j < ca; j++ {
			if a.At(i, j) != b.At(i, j) {
				t.Fatalf("transform not repeatable at (%d,%d)", i, j)
			}
		}
	}
	// unseen and null categories encode to zeros
	if a.At(0, 1) != 0 || a.At(0, 2) != 0 {
		t.Fatalf("unseen category row = %v %v", a.At(0, 1), a.At(0, 2))
	}
}

func TestColumnTransformerErrors(t *testing.T) {
	ctx := context.Background()
	ct := newTransformer()
	if _, err := ct.Transform(ctx, makeFrame([]any{1.0}, []any{"a"})); !errors.Is(err, pipeline.ErrNotFitted) {
		t.Fatalf("expected ErrNotFitted, got %v", err)
	}
	if _, err := ct.FitTransform(ctx, makeFrame(nil, nil)); !errors.Is(err, pipeline.ErrEmptyFrame) {
		t.Fatalf("expected ErrEmptyFrame, got %v", err)
	}
	f := makeFrame([]any{1.0}, []any{"a"}).Drop("s")
	if _, err := ct.FitTransform(ctx, f); !errors.Is(err, frame.ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

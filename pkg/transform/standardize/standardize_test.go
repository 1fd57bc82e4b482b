package standardize

import (
	"context"
	"testing"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

func TestTrimAndLower(t *testing.T) {
	s := frame.Schema{Columns: []frame.ColumnSchema{{Name: "s", Type: frame.KindString, Nullable: true}}}
	f := frame.NewFrame(s)
	for i := 0; i < 3; i++ {
		f.AppendNullRow()
	}
	_ = f.SetCell(0, "s", "  Foo  ")
	_ = f.SetCell(1, "s", "BAR")
	// row 2 null

	get := func(f *frame.Frame, row int) string {
		col, _ := f.ColumnByName("s")
		v, _ := col.(*frame.StringColumn).Get(row)
		return v
	}

	ctx := context.Background()
	f1, err := (&Trim{Column: "s"}).Apply(ctx, f)
	if err != nil {
		t.Fatal(err)
	}
	if v := get(f1, 0); v != "Foo" {
		t.Fatalf("trim failed, got %q", v)
	}
	if v := get(f, 0); v != "  Foo  " {
		t.Fatalf("trim mutated its input, got %q", v)
	}

	f2, err := (&Lower{Column: "s"}).Apply(ctx, f1)
	if err != nil {
		t.Fatal(err)
	}
	if v0, v1 := get(f2, 0), get(f2, 1); v0 != "foo" || v1 != "bar" {
		t.Fatalf("lower failed, got %q %q", v0, v1)
	}

	rr, err := NewRegexReplace("s", "o+", "O")
	if err != nil {
		t.Fatal(err)
	}
	f3, err := rr.Apply(ctx, f2)
	if err != nil {
		t.Fatal(err)
	}
	if v := get(f3, 0); v != "fO" {
		t.Fatalf("regex replace failed, got %q", v)
	}

	f4, err := (&MapValues{Column: "s", Map: map[string]string{"bar": "baz"}}).Apply(ctx, f3)
	if err != nil {
		t.Fatal(err)
	}
	if v := get(f4, 1); v != "baz" {
		t.Fatalf("map values failed, got %q", v)
	}
	col, _ := f4.ColumnByName("s")
	if !col.IsNull(2) {
		t.Fatal("null cell was rewritten")
	}
}

func TestBadPattern(t *testing.T) {
	if _, err := NewRegexReplace("s", "(", ""); err == nil {
		t.Fatal("expected compile error")
	}
}

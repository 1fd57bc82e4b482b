package frame

import (
	"errors"
	"fmt"
)

// ErrMissingColumn is returned when a named column is absent from a Frame.
var ErrMissingColumn = errors.New("missing column")

// Schema describes the logical shape of a dataset.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, cs := range s.Columns {
		out[i] = cs.Name
	}
	return out
}

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Numeric reports whether values of the kind can be used as floats directly.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// Frame is a columnar container for tabular data.
type Frame struct {
	schema Schema
	cols   []Column
	index  map[string]int // name -> col index
	nrows  int
}

func NewFrame(s Schema) *Frame {
	f := &Frame{schema: s, cols: make([]Column, len(s.Columns)), index: make(map[string]int)}
	for i, cs := range s.Columns {
		f.cols[i] = newColumn(cs)
		f.index[cs.Name] = i
	}
	return f
}

// fromColumns builds a Frame around existing columns, which must share a length.
func fromColumns(cols []Column, nrows int) *Frame {
	s := Schema{Columns: make([]ColumnSchema, len(cols))}
	f := &Frame{cols: cols, index: make(map[string]int, len(cols)), nrows: nrows}
	for i, c := range cols {
		s.Columns[i] = ColumnSchema{Name: c.Name(), Type: c.Kind(), Nullable: true}
		f.index[c.Name()] = i
	}
	f.schema = s
	return f
}

func (f *Frame) Schema() Schema  { return f.schema }
func (f *Frame) Rows() int       { return f.nrows }
func (f *Frame) Cols() int       { return len(f.cols) }
func (f *Frame) Names() []string { return f.schema.Names() }

func (f *Frame) ColumnByName(name string) (Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.cols[i], true
}

// Has reports whether every named column is present.
func (f *Frame) Has(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := f.index[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingColumn, missing)
	}
	return nil
}

// Select returns a Frame holding only the named columns, in the given order.
// Columns are shared with f, not copied.
func (f *Frame) Select(names ...string) (*Frame, error) {
	if err := f.Has(names...); err != nil {
		return nil, err
	}
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = f.cols[f.index[n]]
	}
	return fromColumns(cols, f.nrows), nil
}

// Drop returns a Frame without the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	cols := make([]Column, 0, len(f.cols))
	for _, c := range f.cols {
		if _, ok := skip[c.Name()]; !ok {
			cols = append(cols, c)
		}
	}
	return fromColumns(cols, f.nrows)
}

// Clone deep-copies the frame so the copy can be mutated independently.
func (f *Frame) Clone() *Frame {
	cols := make([]Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.Clone()
	}
	out := fromColumns(cols, f.nrows)
	out.schema = Schema{Columns: append([]ColumnSchema(nil), f.schema.Columns...)}
	return out
}

// AppendNullRow appends a row with all-null values.
func (f *Frame) AppendNullRow() {
	for _, c := range f.cols {
		c.AppendNull()
	}
	f.nrows++
}

// SetCell sets a single cell value by name (row must exist).
func (f *Frame) SetCell(row int, name string, v any) error {
	i, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	c := f.cols[i]
	if v == nil {
		c.SetNull(row)
		return nil
	}
	switch col := c.(type) {
	case *BoolColumn:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("column %s expects bool, got %T", name, v)
		}
		col.Set(row, b)
	case *IntColumn:
		switch t := v.(type) {
		case int:
			col.Set(row, int64(t))
		case int32:
			col.Set(row, int64(t))
		case int64:
			col.Set(row, t)
		case float64:
			col.Set(row, int64(t))
		default:
			return fmt.Errorf("column %s expects int/int64, got %T", name, v)
		}
	case *FloatColumn:
		switch t := v.(type) {
		case float32:
			col.Set(row, float64(t))
		case float64:
			col.Set(row, t)
		case int:
			col.Set(row, float64(t))
		case int32:
			col.Set(row, float64(t))
		case int64:
			col.Set(row, float64(t))
		default:
			return fmt.Errorf("column %s expects float64, got %T", name, v)
		}
	case *StringColumn:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("column %s expects string, got %T", name, v)
		}
		col.Set(row, s)
	default:
		return fmt.Errorf("column %s: unknown column kind", name)
	}
	return nil
}

// Replace swaps in c for the column of the same name, updating the schema kind.
func (f *Frame) Replace(c Column) error {
	i, ok := f.index[c.Name()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingColumn, c.Name())
	}
	if c.Len() != f.nrows {
		return fmt.Errorf("column %s: length %d, frame has %d rows", c.Name(), c.Len(), f.nrows)
	}
	f.cols[i] = c
	f.schema.Columns[i].Type = c.Kind()
	return nil
}

package frame

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	SetNull(i int)
	AppendNull()
	Clone() Column
}

func newColumn(cs ColumnSchema) Column {
	switch cs.Type {
	case KindBool:
		return NewBoolColumn(cs.Name, 0)
	case KindInt:
		return NewIntColumn(cs.Name, 0)
	case KindFloat:
		return NewFloatColumn(cs.Name, 0)
	case KindString:
		return NewStringColumn(cs.Name, 0)
	default:
		panic("invalid column kind for " + cs.Name)
	}
}

// Nulls counts the null cells of c.
func Nulls(c Column) int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}

// cells is the storage shared by every concrete column. A null cell holds
// the zero value of T.
type cells[T any] struct {
	name  string
	data  []T
	nulls []bool
}

func makeCells[T any](name string, n int) cells[T] {
	return cells[T]{name: name, data: make([]T, n), nulls: make([]bool, n)}
}

func (c *cells[T]) Name() string      { return c.name }
func (c *cells[T]) Len() int          { return len(c.data) }
func (c *cells[T]) IsNull(i int) bool { return c.nulls[i] }
func (c *cells[T]) SetNull(i int) {
	var zero T
	c.data[i], c.nulls[i] = zero, true
}

// Get returns the value at i and false when the cell is null.
func (c *cells[T]) Get(i int) (T, bool) { return c.data[i], !c.nulls[i] }
func (c *cells[T]) Set(i int, v T)      { c.data[i], c.nulls[i] = v, false }

func (c *cells[T]) AppendNull() {
	var zero T
	c.data = append(c.data, zero)
	c.nulls = append(c.nulls, true)
}

func (c *cells[T]) Append(v T) {
	c.data = append(c.data, v)
	c.nulls = append(c.nulls, false)
}

func (c *cells[T]) copy() cells[T] {
	return cells[T]{name: c.name, data: append([]T(nil), c.data...), nulls: append([]bool(nil), c.nulls...)}
}

type BoolColumn struct{ cells[bool] }

func NewBoolColumn(name string, n int) *BoolColumn {
	return &BoolColumn{makeCells[bool](name, n)}
}
func (c *BoolColumn) Kind() Kind    { return KindBool }
func (c *BoolColumn) Clone() Column { return &BoolColumn{c.copy()} }

type IntColumn struct{ cells[int64] }

func NewIntColumn(name string, n int) *IntColumn {
	return &IntColumn{makeCells[int64](name, n)}
}
func (c *IntColumn) Kind() Kind    { return KindInt }
func (c *IntColumn) Clone() Column { return &IntColumn{c.copy()} }

type FloatColumn struct{ cells[float64] }

func NewFloatColumn(name string, n int) *FloatColumn {
	return &FloatColumn{makeCells[float64](name, n)}
}
func (c *FloatColumn) Kind() Kind    { return KindFloat }
func (c *FloatColumn) Clone() Column { return &FloatColumn{c.copy()} }

type StringColumn struct{ cells[string] }

func NewStringColumn(name string, n int) *StringColumn {
	return &StringColumn{makeCells[string](name, n)}
}
func (c *StringColumn) Kind() Kind    { return KindString }
func (c *StringColumn) Clone() Column { return &StringColumn{c.copy()} }

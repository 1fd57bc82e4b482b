// Package standardize holds stateless text cleanups for string columns.
// They are applied the same way to every table and never learn from data.
package standardize

import (
	"fmt"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

// mapStrings returns a copy of f with fn applied to every non-null cell of a
// string column. Non-string columns are returned unchanged.
func mapStrings(f *frame.Frame, name string, fn func(string) string) (*frame.Frame, error) {
	col, ok := f.ColumnByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", frame.ErrMissingColumn, name)
	}
	if _, ok := col.(*frame.StringColumn); !ok {
		return f, nil
	}
	out := f.Clone()
	col, _ = out.ColumnByName(name)
	sc := col.(*frame.StringColumn)
	for i := 0; i < sc.Len(); i++ {
		if v, ok := sc.Get(i); ok {
			sc.Set(i, fn(v))
		}
	}
	return out, nil
}

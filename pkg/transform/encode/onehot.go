package encode

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

const (
	// UnknownIgnore encodes unseen and null values as an all-zero block.
	UnknownIgnore = "ignore"
	// UnknownError fails Encode on a value absent from the fitted vocabulary.
	UnknownError = "error"
)

// ErrUnknownCategory is returned by Encode in UnknownError mode.
var ErrUnknownCategory = errors.New("unknown category")

// OneHot expands each column into one indicator per category observed at Fit.
// Categories are kept in sorted order.
type OneHot struct {
	Columns       []string
	HandleUnknown string
	Categories    [][]string
}

func (e *OneHot) Name() string { return "one_hot_encoder" }

func (e *OneHot) Fit(ctx context.Context, f *frame.Frame) error {
	cats := make([][]string, len(e.Columns))
	for j, name := range e.Columns {
		col, ok := f.ColumnByName(name)
		if !ok {
			return fmt.Errorf("%w: %s", frame.ErrMissingColumn, name)
		}
		vals, valid := frame.Strings(col)
		seen := map[string]struct{}{}
		for i, v := range vals {
			if valid[i] {
				seen[v] = struct{}{}
			}
		}
		if len(seen) == 0 {
			return fmt.Errorf("column %s has no observed categories", name)
		}
		cats[j] = make([]string, 0, len(seen))
		for v := range seen {
			cats[j] = append(cats[j], v)
		}
		sort.Strings(cats[j])
	}
	e.Categories = cats
	return nil
}

func (e *OneHot) Encode(ctx context.Context, f *frame.Frame) (*mat.Dense, error) {
	if len(e.Categories) != len(e.Columns) {
		return nil, fmt.Errorf("%s: categories not fitted", e.Name())
	}
	width := 0
	offsets := make([]int, len(e.Columns))
	index := make([]map[string]int, len(e.Columns))
	for j, cats := range e.Categories {
		offsets[j] = width
		width += len(cats)
		index[j] = make(map[string]int, len(cats))
		for k, c := range cats {
			index[j][c] = k
		}
	}
	m := mat.NewDense(f.Rows(), width, nil)
	for j, name := range e.Columns {
		col, ok := f.ColumnByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", frame.ErrMissingColumn, name)
		}
		vals, valid := frame.Strings(col)
		for i, v := range vals {
			if !valid[i] {
				continue
			}
			k, ok := index[j][v]
			if !ok {
				if e.HandleUnknown == UnknownError {
					return nil, fmt.Errorf("%w: column %s value %q", ErrUnknownCategory, name, v)
				}
				continue
			}
			m.Set(i, offsets[j]+k, 1)
		}
	}
	return m, nil
}

// FeatureNames returns "<column>_<category>" for every indicator column.
func (e *OneHot) FeatureNames() []string {
	var out []string
	for j, cats := range e.Categories {
		for _, c := range cats {
			out = append(out, e.Columns[j]+"_"+c)
		}
	}
	return out
}

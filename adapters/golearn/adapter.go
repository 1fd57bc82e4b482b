// Package golearn hands preprocessed matrices to github.com/sjwhitworth/golearn
// models as DenseInstances, and reads them back.
package golearn

import (
	"fmt"

	"github.com/sjwhitworth/golearn/base"
	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

// ToDenseInstances converts a numeric matrix into golearn DenseInstances with
// one float attribute per column, named by names. The last column becomes the
// class attribute, which is where the preprocessor places the target.
func ToDenseInstances(m mat.Matrix, names []string) (*base.DenseInstances, error) {
	rows, cols := m.Dims()
	if len(names) != cols {
		return nil, fmt.Errorf("golearn: %d names for %d columns", len(names), cols)
	}
	if cols == 0 {
		return nil, fmt.Errorf("golearn: matrix has no columns")
	}
	inst := base.NewDenseInstances()
	attrs := make([]base.Attribute, cols)
	specs := make([]base.AttributeSpec, cols)
	for j, name := range names {
		attrs[j] = base.NewFloatAttribute(name)
		specs[j] = inst.AddAttribute(attrs[j])
	}
	if err := inst.AddClassAttribute(attrs[cols-1]); err != nil {
		return nil, err
	}
	if err := inst.Extend(rows); err != nil {
		return nil, err
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			inst.Set(specs[j], i, base.PackFloatToBytes(m.At(i, j)))
		}
	}
	return inst, nil
}

// FromDenseInstances reads float attributes back into a matrix, in attribute
// order. Categorical attributes are rejected.
func FromDenseInstances(inst *base.DenseInstances) (*mat.Dense, []string, error) {
	attrs := inst.AllAttributes()
	specs := make([]base.AttributeSpec, len(attrs))
	names := make([]string, len(attrs))
	for j, a := range attrs {
		if _, ok := a.(*base.FloatAttribute); !ok {
			return nil, nil, fmt.Errorf("golearn: attribute %s is not numeric", a.GetName())
		}
		spec, err := inst.GetAttribute(a)
		if err != nil {
			return nil, nil, err
		}
		specs[j] = spec
		names[j] = a.GetName()
	}
	_, rows := inst.Size()
	if rows == 0 || len(attrs) == 0 {
		return nil, nil, fmt.Errorf("golearn: empty instances")
	}
	out := mat.NewDense(rows, len(attrs), nil)
	for i := 0; i < rows; i++ {
		for j := range specs {
			out.Set(i, j, base.UnpackBytesToFloat(inst.Get(specs[j], i)))
		}
	}
	return out, names, nil
}

// FrameToDenseInstances converts a Frame, keeping text columns as categorical
// attributes. Nulls are left as the attribute's zero value.
func FrameToDenseInstances(f *frame.Frame) (*base.DenseInstances, error) {
	attrs := make([]base.Attribute, f.Cols())
	for i, cs := range f.Schema().Columns {
		if cs.Type.Numeric() || cs.Type == frame.KindBool {
			attrs[i] = base.NewFloatAttribute(cs.Name)
			continue
		}
		ca := new(base.CategoricalAttribute)
		ca.SetName(cs.Name)
		attrs[i] = ca
	}
	inst := base.NewDenseInstances()
	specs := make([]base.AttributeSpec, len(attrs))
	for i, a := range attrs {
		specs[i] = inst.AddAttribute(a)
	}
	if err := inst.Extend(f.Rows()); err != nil {
		return nil, err
	}
	for c, cs := range f.Schema().Columns {
		col, _ := f.ColumnByName(cs.Name)
		if _, ok := attrs[c].(*base.FloatAttribute); ok {
			vals, err := frame.Float64s(col)
			if err != nil {
				return nil, err
			}
			for r, v := range vals {
				if !col.IsNull(r) {
					inst.Set(specs[c], r, base.PackFloatToBytes(v))
				}
			}
			continue
		}
		vals, valid := frame.Strings(col)
		for r, v := range vals {
			if valid[r] {
				inst.Set(specs[c], r, attrs[c].GetSysValFromString(v))
			}
		}
	}
	return inst, nil
}

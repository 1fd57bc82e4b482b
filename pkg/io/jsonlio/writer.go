package jsonlio

import (
	"encoding/json"
	"io"
	"math"

	"github.com/wdm0006/scoreprep/pkg/frame"
	iox "github.com/wdm0006/scoreprep/pkg/io/ioutils"
)

// WriteAll writes one JSON object per row. Null cells are omitted.
func WriteAll(path string, f *frame.Frame) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(out, f)
}

func Write(w io.Writer, f *frame.Frame) error {
	enc := json.NewEncoder(w)
	for r := 0; r < f.Rows(); r++ {
		m := make(map[string]any, f.Cols())
		for _, cs := range f.Schema().Columns {
			col, _ := f.ColumnByName(cs.Name)
			switch c := col.(type) {
			case *frame.FloatColumn:
				// NaN has no JSON spelling
				if v, ok := c.Get(r); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
					m[cs.Name] = v
				}
			case *frame.IntColumn:
				if v, ok := c.Get(r); ok {
					m[cs.Name] = v
				}
			case *frame.BoolColumn:
				if v, ok := c.Get(r); ok {
					m[cs.Name] = v
				}
			case *frame.StringColumn:
				if v, ok := c.Get(r); ok {
					m[cs.Name] = v
				}
			}
		}
		if err := enc.Encode(m); err != nil {
			return err
		}
	}
	return nil
}

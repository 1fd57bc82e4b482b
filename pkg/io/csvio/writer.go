package csvio

import (
	"encoding/csv"
	"io"

	"github.com/wdm0006/scoreprep/pkg/frame"
	iox "github.com/wdm0006/scoreprep/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file with headers. Nulls are written as
// empty cells.
func WriteAll(path string, f *frame.Frame, opt WriterOptions) (err error) {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return Write(out, f, opt)
}

// Write streams f as CSV to w.
func Write(w io.Writer, f *frame.Frame, opt WriterOptions) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	if err := cw.Write(f.Names()); err != nil {
		return err
	}

	cols := make([][]string, f.Cols())
	for c, name := range f.Names() {
		col, _ := f.ColumnByName(name)
		cols[c], _ = frame.Strings(col)
	}
	row := make([]string, f.Cols())
	for r := 0; r < f.Rows(); r++ {
		for c := range cols {
			row[c] = cols[c][r]
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

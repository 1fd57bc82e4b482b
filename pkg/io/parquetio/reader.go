package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	parquet "github.com/segmentio/parquet-go"
	"github.com/spf13/cast"

	"github.com/wdm0006/scoreprep/pkg/frame"
	iox "github.com/wdm0006/scoreprep/pkg/io/ioutils"
)

type ReaderOptions struct {
	// Kinds pins the kind of named columns; other columns take the kind of
	// their parquet physical type.
	Kinds map[string]frame.Kind
	// NullValues lists text values read as null in string columns.
	NullValues []string
	// Strict fails on a value that cannot be coerced to its pinned kind.
	Strict bool
}

// Reader reads flat Parquet files. Nested columns are rejected.
type Reader struct {
	file   *os.File
	reader *parquet.Reader
	schema frame.Schema
	nulls  iox.NullSet
	strict bool
}

func OpenReader(path string, opt ReaderOptions) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	pr := parquet.NewReader(f)
	schema, err := frameSchema(pr.Schema(), opt.Kinds)
	if err != nil {
		_ = pr.Close()
		_ = f.Close()
		return nil, err
	}
	return &Reader{file: f, reader: pr, schema: schema, nulls: iox.NewNullSet(opt.NullValues), strict: opt.Strict}, nil
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

func (r *Reader) Schema() frame.Schema { return r.schema }

func (r *Reader) ReadAll() (*frame.Frame, error) {
	f := frame.NewFrame(r.schema)
	buf := make([]parquet.Row, 1024)
	for {
		n, err := r.reader.ReadRows(buf)
		for i := 0; i < n; i++ {
			f.AppendNullRow()
			if serr := r.setRow(f, f.Rows()-1, buf[i]); serr != nil {
				return nil, serr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if n == 0 {
			break
		}
	}
	return f, nil
}

func frameSchema(ps *parquet.Schema, pinned map[string]frame.Kind) (frame.Schema, error) {
	paths := ps.Columns()
	s := frame.Schema{Columns: make([]frame.ColumnSchema, len(paths))}
	for i, path := range paths {
		if len(path) != 1 {
			return frame.Schema{}, fmt.Errorf("parquet: nested column %s not supported", strings.Join(path, "."))
		}
		leaf, _ := ps.Lookup(path...)
		kind := frame.KindString
		switch leaf.Node.Type().Kind() {
		case parquet.Boolean:
			kind = frame.KindBool
		case parquet.Int32, parquet.Int64:
			kind = frame.KindInt
		case parquet.Float, parquet.Double:
			kind = frame.KindFloat
		}
		if k, ok := pinned[path[0]]; ok {
			kind = k
		}
		s.Columns[i] = frame.ColumnSchema{Name: path[0], Type: kind, Nullable: true}
	}
	return s, nil
}

// setRow leaves a cell null when the value is null. A value that cannot be
// coerced is nulled as well, or is an error when the reader is strict.
func (r *Reader) setRow(f *frame.Frame, row int, values parquet.Row) error {
	for _, v := range values {
		c := v.Column()
		if c < 0 || c >= len(r.schema.Columns) || v.IsNull() {
			continue
		}
		cs := r.schema.Columns[c]
		var x any
		switch v.Kind() {
		case parquet.Boolean:
			x = v.Boolean()
		case parquet.Int32:
			x = int64(v.Int32())
		case parquet.Int64:
			x = v.Int64()
		case parquet.Float:
			x = float64(v.Float())
		case parquet.Double:
			x = v.Double()
		default:
			s := string(v.ByteArray())
			if r.nulls.Has(s) {
				continue
			}
			x = s
		}
		var err error
		switch cs.Type {
		case frame.KindFloat:
			x, err = cast.ToFloat64E(x)
		case frame.KindInt:
			x, err = cast.ToInt64E(x)
		case frame.KindBool:
			x, err = cast.ToBoolE(x)
		case frame.KindString:
			x, err = cast.ToStringE(x)
		}
		if err != nil {
			if r.strict {
				return fmt.Errorf("parquet row %d: column %s: %w", row+1, cs.Name, err)
			}
			continue
		}
		_ = f.SetCell(row, cs.Name, x)
	}
	return nil
}

// ReadFile reads a whole Parquet file into a Frame.
func ReadFile(path string, opt ReaderOptions) (*frame.Frame, error) {
	r, err := OpenReader(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadAll()
}

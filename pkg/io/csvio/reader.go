package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/wdm0006/scoreprep/pkg/frame"
	iox "github.com/wdm0006/scoreprep/pkg/io/ioutils"
)

type ReaderOptions struct {
	HasHeader  bool
	Delimiter  rune // 0 = sniff, default ','
	SampleRows int  // for inference; default 100
	Strict     bool // if true, error on short/long records and unparseable cells
	// Kinds pins the kind of named columns, skipping inference for them.
	Kinds map[string]frame.Kind
	// NullValues overrides iox.DefaultNullValues.
	NullValues []string
}

type Reader struct {
	r     *csv.Reader
	rc    io.Closer
	opt   ReaderOptions
	nulls iox.NullSet
	buf   [][]string
	// repair/warning counters
	shortRecords int
	longRecords  int
	badCells     int
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// Open opens a CSV file (or stdin for "-") and returns a Reader. The caller
// must Close it.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	if opt.Delimiter == 0 && path != "-" && path != "" {
		if d, err := sniffDelimiter(path); err == nil {
			opt.Delimiter = d
		}
	}
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	r := NewReaderFrom(rc, opt)
	r.rc = rc
	return r, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.LazyQuotes = !opt.Strict
	if !opt.Strict {
		rr.FieldsPerRecord = -1
	}
	return &Reader{r: rr, opt: opt, nulls: iox.NewNullSet(opt.NullValues)}
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	return r.rc.Close()
}

// InferSchema reads header (if present) and samples rows to determine column kinds.
func (r *Reader) InferSchema() (frame.Schema, []string, error) {
	var names []string
	rec, err := r.r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return frame.Schema{}, nil, fmt.Errorf("csv: no header row: %w", err)
		}
		return frame.Schema{}, nil, err
	}
	if r.opt.HasHeader {
		names = make([]string, len(rec))
		for i := range rec {
			names[i] = strings.TrimSpace(strings.ToValidUTF8(rec[i], "?"))
		}
		// strip BOM on first header cell if present
		if len(names) > 0 {
			names[0] = strings.TrimPrefix(names[0], "\ufeff")
		}
		rec = nil
	} else {
		names = make([]string, len(rec))
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	var sample [][]string
	if rec != nil {
		sample = append(sample, rec)
	}
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	for len(sample) < max {
		rr, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return frame.Schema{}, nil, err
		}
		sample = append(sample, rr)
	}

	kinds := r.inferKinds(sample, len(names))
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(names))}
	for i := range names {
		k := kinds[i]
		if pinned, ok := r.opt.Kinds[names[i]]; ok {
			k = pinned
		}
		schema.Columns[i] = frame.ColumnSchema{Name: names[i], Type: k, Nullable: true}
	}
	// retain sampled rows for subsequent ReadAll
	r.buf = append(r.buf, sample...)
	return schema, names, nil
}

// ReadAll loads the rest of the CSV into a Frame.
func (r *Reader) ReadAll(schema frame.Schema) (*frame.Frame, error) {
	f := frame.NewFrame(schema)
	line := 0
	next := func() ([]string, error) {
		if len(r.buf) > 0 {
			rec := r.buf[0]
			r.buf = r.buf[1:]
			return rec, nil
		}
		return r.r.Read()
	}
	for {
		rec, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(rec) > len(schema.Columns) {
			r.longRecords++
			if r.opt.Strict {
				return nil, fmt.Errorf("csv long record at row %d: need %d fields, got %d", line, len(schema.Columns), len(rec))
			}
		}
		if len(rec) < len(schema.Columns) {
			r.shortRecords++
			if r.opt.Strict {
				return nil, fmt.Errorf("csv short record at row %d: need %d fields, got %d", line, len(schema.Columns), len(rec))
			}
		}
		// append a null row then set non-null values
		f.AppendNullRow()
		row := f.Rows() - 1
		for i, cs := range schema.Columns {
			if i >= len(rec) {
				continue
			}
			val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
			if r.nulls.Has(val) {
				continue
			}
			if err := r.setCell(f, row, cs, val); err != nil {
				return nil, fmt.Errorf("csv row %d: %w", line, err)
			}
		}
	}
	return f, nil
}

// setCell parses val into the column's kind. Unparseable numeric cells become
// null unless the reader is strict.
func (r *Reader) setCell(f *frame.Frame, row int, cs frame.ColumnSchema, val string) error {
	var v any
	var err error
	switch cs.Type {
	case frame.KindFloat:
		v, err = cast.ToFloat64E(val)
	case frame.KindInt:
		// base 10 so zero-padded values are not read as octal
		v, err = strconv.ParseInt(val, 10, 64)
		if err != nil {
			// pinned int columns may still carry "72.0"
			if x, ferr := cast.ToFloat64E(val); ferr == nil && x == float64(int64(x)) {
				v, err = int64(x), nil
			}
		}
	case frame.KindBool:
		v, err = cast.ToBoolE(strings.ToLower(val))
	default:
		v = val
	}
	if err != nil {
		r.badCells++
		if r.opt.Strict {
			return fmt.Errorf("column %s: %w", cs.Name, err)
		}
		return nil
	}
	return f.SetCell(row, cs.Name, v)
}

func (r *Reader) inferKinds(rows [][]string, ncol int) []frame.Kind {
	kinds := make([]frame.Kind, ncol)
	for c := 0; c < ncol; c++ {
		num, integer, boolean, str := 0, 0, 0, 0
		for _, row := range rows {
			if c >= len(row) {
				continue
			}
			v := strings.TrimSpace(row[c])
			if r.nulls.Has(v) {
				continue
			}
			if numre.MatchString(v) {
				num++
				if !strings.ContainsAny(v, ".eE") {
					integer++
				}
				continue
			}
			lv := strings.ToLower(v)
			if lv == "true" || lv == "false" {
				boolean++
				continue
			}
			str++
		}
		switch {
		case str > 0 || (num > 0 && boolean > 0):
			kinds[c] = frame.KindString
		case num > 0 && integer == num:
			kinds[c] = frame.KindInt
		case num > 0:
			kinds[c] = frame.KindFloat
		case boolean > 0:
			kinds[c] = frame.KindBool
		default:
			// all null in the sample
			kinds[c] = frame.KindString
		}
	}
	return kinds
}

func sniffDelimiter(path string) (rune, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()
	br := bufio.NewReader(rc)
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, err
	}
	best := ','
	bestCount := 0
	for _, c := range []rune{',', '\t', ';', '|'} {
		if n := strings.Count(line, string(c)); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best, nil
}

// Warnings returns a summary string of any repairs/mismatches encountered.
func (r *Reader) Warnings() string {
	parts := []string{}
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	if r.badCells > 0 {
		parts = append(parts, fmt.Sprintf("bad_cells=%d", r.badCells))
	}
	return strings.Join(parts, ", ")
}

// ReadFile opens path, infers its schema and reads every row.
func ReadFile(path string, opt ReaderOptions) (*frame.Frame, string, error) {
	r, err := Open(path, opt)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = r.Close() }()
	schema, _, err := r.InferSchema()
	if err != nil {
		return nil, "", err
	}
	f, err := r.ReadAll(schema)
	if err != nil {
		return nil, "", err
	}
	return f, r.Warnings(), nil
}

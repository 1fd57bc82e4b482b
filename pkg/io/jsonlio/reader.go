package jsonlio

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/wdm0006/scoreprep/pkg/frame"
	iox "github.com/wdm0006/scoreprep/pkg/io/ioutils"
)

type ReaderOptions struct {
	SampleRows int
	// Kinds pins the kind of named keys, skipping inference for them.
	Kinds map[string]frame.Kind
	// NullValues lists string values read as null; json null is always null.
	NullValues []string
	// Strict fails on a value that cannot be coerced to its column kind.
	Strict bool
}

type Reader struct {
	dec   *json.Decoder
	rc    io.Closer
	opt   ReaderOptions
	nulls iox.NullSet
	buf   []map[string]any
	keys  []string
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

// Open opens a JSON-lines file (gzip allowed) and returns a Reader. The
// caller must Close it.
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	r := NewReaderFrom(rc, opt)
	r.rc = rc
	return r, nil
}

func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	return &Reader{dec: json.NewDecoder(r), opt: opt, nulls: iox.NewNullSet(opt.NullValues)}
}

func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	return r.rc.Close()
}

// InferSchema samples records to find the key set and column kinds. Keys are
// sorted by name.
func (r *Reader) InferSchema() (frame.Schema, error) {
	max := r.opt.SampleRows
	if max <= 0 {
		max = 100
	}
	var sample []map[string]any
	keysSet := map[string]struct{}{}
	for len(sample) < max {
		var m map[string]any
		if err := r.dec.Decode(&m); err != nil {
			if err == io.EOF {
				break
			}
			return frame.Schema{}, err
		}
		sample = append(sample, m)
		for k := range m {
			keysSet[k] = struct{}{}
		}
	}
	if len(sample) == 0 {
		return frame.Schema{}, fmt.Errorf("jsonl: no records: %w", io.EOF)
	}
	r.buf = append(r.buf, sample...)
	r.keys = make([]string, 0, len(keysSet))
	for k := range keysSet {
		r.keys = append(r.keys, k)
	}
	sort.Strings(r.keys)
	kinds := r.inferKinds(sample)
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(r.keys))}
	for i, k := range r.keys {
		if pinned, ok := r.opt.Kinds[k]; ok {
			kinds[i] = pinned
		}
		schema.Columns[i] = frame.ColumnSchema{Name: k, Type: kinds[i], Nullable: true}
	}
	return schema, nil
}

// ReadAll drains the sampled records and the rest of the stream into a Frame.
// Keys absent from the schema are ignored.
func (r *Reader) ReadAll(schema frame.Schema) (*frame.Frame, error) {
	f := frame.NewFrame(schema)
	for len(r.buf) > 0 {
		m := r.buf[0]
		r.buf = r.buf[1:]
		f.AppendNullRow()
		if err := r.setRowFromMap(f, f.Rows()-1, m); err != nil {
			return nil, err
		}
	}
	for {
		var m map[string]any
		if err := r.dec.Decode(&m); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		f.AppendNullRow()
		if err := r.setRowFromMap(f, f.Rows()-1, m); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// setRowFromMap leaves a cell null when the value is missing or null. A value
// that cannot be coerced to the column kind is nulled too, or is an error when
// the reader is strict.
func (r *Reader) setRowFromMap(f *frame.Frame, row int, m map[string]any) error {
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && r.nulls.Has(s) {
			continue
		}
		var err error
		switch cs.Type {
		case frame.KindFloat:
			v, err = cast.ToFloat64E(v)
		case frame.KindInt:
			var x float64
			if x, err = cast.ToFloat64E(v); err == nil {
				v = int64(x)
			}
		case frame.KindBool:
			if s, isStr := v.(string); isStr {
				v = strings.ToLower(strings.TrimSpace(s))
			}
			v, err = cast.ToBoolE(v)
		default:
			if _, isStr := v.(string); !isStr {
				// fallback to JSON encoding
				b, _ := json.Marshal(v)
				v = string(b)
			}
		}
		if err != nil {
			if r.opt.Strict {
				return fmt.Errorf("jsonl record %d: column %s: %w", row+1, cs.Name, err)
			}
			continue
		}
		_ = f.SetCell(row, cs.Name, v)
	}
	return nil
}

func (r *Reader) inferKinds(sample []map[string]any) []frame.Kind {
	kinds := make([]frame.Kind, len(r.keys))
	for i, k := range r.keys {
		nNum, nInt, nBool, nStr := 0, 0, 0, 0
		for _, m := range sample {
			v, ok := m[k]
			if !ok || v == nil {
				continue
			}
			switch t := v.(type) {
			case float64:
				nNum++
				if float64(int64(t)) == t {
					nInt++
				}
			case bool:
				nBool++
			case string:
				s := strings.TrimSpace(t)
				if r.nulls.Has(s) {
					continue
				}
				if numre.MatchString(s) {
					nNum++
					if !strings.ContainsAny(s, ".eE") {
						nInt++
					}
				} else {
					nStr++
				}
			default:
				nStr++
			}
		}
		switch {
		case nStr > 0 || (nNum > 0 && nBool > 0):
			kinds[i] = frame.KindString
		case nNum > 0 && nInt == nNum:
			kinds[i] = frame.KindInt
		case nNum > 0:
			kinds[i] = frame.KindFloat
		case nBool > 0:
			kinds[i] = frame.KindBool
		default:
			kinds[i] = frame.KindString
		}
	}
	return kinds
}

// ReadFile opens path, infers its schema and reads every record.
func ReadFile(path string, opt ReaderOptions) (*frame.Frame, error) {
	r, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		return nil, err
	}
	return r.ReadAll(schema)
}

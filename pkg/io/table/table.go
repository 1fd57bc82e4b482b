// Package table reads and writes frames, choosing the codec by file extension.
package table

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/scoreprep/pkg/frame"
	"github.com/wdm0006/scoreprep/pkg/io/csvio"
	iox "github.com/wdm0006/scoreprep/pkg/io/ioutils"
	"github.com/wdm0006/scoreprep/pkg/io/jsonlio"
	"github.com/wdm0006/scoreprep/pkg/io/parquetio"
)

// ErrUnsupportedFormat is returned for an extension no codec handles.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// Options apply to every reader.
type Options struct {
	Kinds      map[string]frame.Kind
	NullValues []string
	// Strict fails on ragged CSV rows and on cells that cannot be read as
	// their column's kind, instead of nulling them.
	Strict bool
}

// Format names a codec. The zero value means "from the extension".
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSONL   Format = "jsonl"
	FormatParquet Format = "parquet"
)

// FormatOf maps a path to its codec; a trailing .gz is ignored.
func FormatOf(path string) (Format, error) {
	switch ext := iox.BaseExt(path); ext {
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".parquet":
		if iox.IsGzip(path) {
			return "", fmt.Errorf("%w: gzipped parquet %s", ErrUnsupportedFormat, path)
		}
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Read loads a whole table. warnings summarizes rows the CSV reader repaired.
func Read(path string, opt Options) (f *frame.Frame, warnings string, err error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, "", err
	}
	switch format {
	case FormatJSONL:
		f, err = jsonlio.ReadFile(path, jsonlio.ReaderOptions{Kinds: opt.Kinds, NullValues: opt.NullValues, Strict: opt.Strict})
	case FormatParquet:
		f, err = parquetio.ReadFile(path, parquetio.ReaderOptions{Kinds: opt.Kinds, NullValues: opt.NullValues, Strict: opt.Strict})
	default:
		ro := csvio.ReaderOptions{HasHeader: true, Strict: opt.Strict, Kinds: opt.Kinds, NullValues: opt.NullValues}
		if iox.BaseExt(path) == ".tsv" {
			ro.Delimiter = '\t'
		}
		f, warnings, err = csvio.ReadFile(path, ro)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return f, warnings, nil
}

// Write stores f at path in the given format, or the path's format when
// format is empty.
func Write(path string, f *frame.Frame, format Format) error {
	if format == "" {
		var err error
		if format, err = FormatOf(path); err != nil {
			return err
		}
	}
	var err error
	switch format {
	case FormatCSV:
		opt := csvio.WriterOptions{}
		if iox.BaseExt(path) == ".tsv" {
			opt.Delimiter = '\t'
		}
		err = csvio.WriteAll(path, f, opt)
	case FormatJSONL:
		err = jsonlio.WriteAll(path, f)
	case FormatParquet:
		err = parquetio.WriteAll(path, f)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteMatrix stores a numeric matrix with a header of names.
func WriteMatrix(path string, names []string, m mat.Matrix, format Format) error {
	f, err := frame.FromMatrix(names, m)
	if err != nil {
		return err
	}
	return Write(path, f, format)
}

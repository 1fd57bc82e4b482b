package ioutils

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// IsGzip reports whether path names a gzip file by extension.
func IsGzip(path string) bool { return strings.EqualFold(filepath.Ext(path), ".gz") }

// BaseExt returns the extension of path ignoring a trailing .gz, lower-cased.
func BaseExt(path string) string {
	if IsGzip(path) {
		path = strings.TrimSuffix(path, filepath.Ext(path))
	}
	return strings.ToLower(filepath.Ext(path))
}

// OpenMaybeCompressed opens a file path or stdin ("-") and returns a reader.
// If the input appears to be gzip (by extension or magic), it wraps with gzip.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		br := bufio.NewReader(os.Stdin)
		if isGzipMagic(br) {
			zr, err := gzip.NewReader(br)
			if err != nil {
				return nil, err
			}
			return zr, nil
		}
		return io.NopCloser(br), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	if IsGzip(path) || isGzipMagic(br) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error { _ = zr.Close(); return f.Close() }}, nil
	}
	return readCloser{Reader: br, closeFn: f.Close}, nil
}

func isGzipMagic(br *bufio.Reader) bool {
	b, err := br.Peek(2)
	return err == nil && b[0] == 0x1f && b[1] == 0x8b
}

// CreateMaybeCompressed creates a file (or stdout if path is "-") and returns
// a buffered writer, creating parent directories as needed. If the path ends
// in .gz, the writer is gzip compressed. Close flushes and reports the first
// error seen while flushing or closing.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		bw := bufio.NewWriter(os.Stdout)
		return writeCloser{Writer: bw, closeFn: bw.Flush}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	bw := bufio.NewWriter(f)
	if IsGzip(path) {
		zw := gzip.NewWriter(bw)
		return writeCloser{Writer: zw, closeFn: func() error {
			return firstErr(zw.Close(), bw.Flush(), f.Close())
		}}, nil
	}
	return writeCloser{Writer: bw, closeFn: func() error {
		return firstErr(bw.Flush(), f.Close())
	}}, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error { return r.closeFn() }

type writeCloser struct {
	io.Writer
	closeFn func() error
}

func (w writeCloser) Close() error { return w.closeFn() }

// DefaultNullValues lists the cell spellings read as missing.
var DefaultNullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

// NullSet matches trimmed cell text against a set of null spellings.
type NullSet map[string]struct{}

// NewNullSet builds a NullSet, falling back to DefaultNullValues when vals is empty.
// The empty string is always treated as null.
func NewNullSet(vals []string) NullSet {
	if len(vals) == 0 {
		vals = DefaultNullValues
	}
	s := make(NullSet, len(vals)+1)
	s[""] = struct{}{}
	for _, v := range vals {
		s[strings.TrimSpace(v)] = struct{}{}
	}
	return s
}

func (s NullSet) Has(v string) bool {
	_, ok := s[strings.TrimSpace(v)]
	return ok
}

package parquetio

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]`)

// FieldName maps a column name to the name used in the Parquet schema.
// Tag syntax reserves commas and '=' so anything outside [A-Za-z0-9_] becomes '_'.
func FieldName(name string) string {
	return unsafeName.ReplaceAllString(name, "_")
}

func parquetSchemaJSON(s frame.Schema) string {
	// Build a minimal JSON schema for parquet-go JSONWriter
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + FieldName(cs.Name) + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case frame.KindFloat:
			tag += "DOUBLE"
		case frame.KindInt:
			tag += "INT64"
		case frame.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteAll writes a Frame to a Parquet file using parquet-go JSONWriter.
// Column names are passed through FieldName.
func WriteAll(path string, f *frame.Frame) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(parquetSchemaJSON(f.Schema()), fw, 4)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	defer func() {
		if serr := writer.WriteStop(); err == nil && serr != nil {
			err = fmt.Errorf("parquet write stop: %w", serr)
		}
		if cerr := fw.Close(); err == nil {
			err = cerr
		}
	}()

	names := make([]string, f.Cols())
	for i, n := range f.Names() {
		names[i] = FieldName(n)
	}
	for r := 0; r < f.Rows(); r++ {
		rec := make(map[string]any, f.Cols())
		for i, cs := range f.Schema().Columns {
			col, _ := f.ColumnByName(cs.Name)
			switch c := col.(type) {
			case *frame.FloatColumn:
				if v, ok := c.Get(r); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
					rec[names[i]] = v
				}
			case *frame.IntColumn:
				if v, ok := c.Get(r); ok {
					rec[names[i]] = v
				}
			case *frame.BoolColumn:
				if v, ok := c.Get(r); ok {
					rec[names[i]] = v
				}
			case *frame.StringColumn:
				if v, ok := c.Get(r); ok {
					rec[names[i]] = v
				}
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		if err := writer.Write(string(b)); err != nil {
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	return nil
}

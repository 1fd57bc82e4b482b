package jsonlio

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

func TestJSONLInferAndRead(t *testing.T) {
	r, err := Open(filepath.FromSlash("testdata/students.jsonl"), ReaderOptions{SampleRows: 2})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	schema, err := r.InferSchema()
	require.NoError(t, err)
	assert.Equal(t, []string{"gender", "lunch", "math_score", "reading_score", "writing_score"}, schema.Names())
	assert.Equal(t, frame.KindInt, schema.Columns[2].Type)

	fr, err := r.ReadAll(schema)
	require.NoError(t, err)
	require.Equal(t, 3, fr.Rows(), "records past the sample are read")

	g, _ := fr.ColumnByName("gender")
	assert.True(t, g.IsNull(2))
	rd, _ := fr.ColumnByName("reading_score")
	assert.True(t, rd.IsNull(1))
	v, ok := rd.(*frame.IntColumn).Get(2)
	assert.True(t, ok)
	assert.Equal(t, int64(78), v)
	w, _ := fr.ColumnByName("writing_score")
	assert.True(t, w.IsNull(1))
}

func TestJSONLPinnedKinds(t *testing.T) {
	fr, err := ReadFile(filepath.FromSlash("testdata/students.jsonl"), ReaderOptions{
		Kinds: map[string]frame.Kind{"writing_score": frame.KindFloat},
	})
	require.NoError(t, err)
	w, _ := fr.ColumnByName("writing_score")
	v, ok := w.(*frame.FloatColumn).Get(2)
	assert.True(t, ok)
	assert.Equal(t, 75.5, v)
}

func TestJSONLRoundTrip(t *testing.T) {
	fr, err := ReadFile(filepath.FromSlash("testdata/students.jsonl"), ReaderOptions{})
	require.NoError(t, err)
	var sb strings.Builder
	require.NoError(t, Write(&sb, fr))

	back := NewReaderFrom(strings.NewReader(sb.String()), ReaderOptions{})
	schema, err := back.InferSchema()
	require.NoError(t, err)
	out, err := back.ReadAll(schema)
	require.NoError(t, err)
	assert.Equal(t, fr.Rows(), out.Rows())
	assert.Equal(t, fr.Names(), out.Names())
}

func TestJSONLEmpty(t *testing.T) {
	_, err := NewReaderFrom(strings.NewReader(""), ReaderOptions{}).InferSchema()
	assert.Error(t, err)
}

package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

func TestInferAndRead(t *testing.T) {
	r, err := Open(filepath.FromSlash("testdata/students.csv"), ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	schema, names, err := r.InferSchema()
	require.NoError(t, err)
	require.Len(t, names, 8)
	assert.Equal(t, "gender", names[0])
	assert.Equal(t, frame.KindString, schema.Columns[0].Type)
	assert.Equal(t, frame.KindInt, schema.Columns[5].Type)
	assert.Equal(t, frame.KindInt, schema.Columns[7].Type, "NA does not make a column textual")

	fr, err := r.ReadAll(schema)
	require.NoError(t, err)
	assert.Equal(t, 6, fr.Rows())

	g, _ := fr.ColumnByName("gender")
	assert.True(t, g.IsNull(5))
	w, _ := fr.ColumnByName("writing_score")
	assert.True(t, w.IsNull(3))
	rd, _ := fr.ColumnByName("reading_score")
	assert.True(t, rd.IsNull(4))
	p, _ := fr.ColumnByName("parental_level_of_education")
	v, _ := p.(*frame.StringColumn).Get(4)
	assert.Equal(t, "some college, unfinished", v)
	assert.Empty(t, r.Warnings())
}

func TestPinnedKindsAndSniff(t *testing.T) {
	fr, _, err := ReadFile(filepath.FromSlash("testdata/semicolon.csv"), ReaderOptions{
		HasHeader: true,
		Kinds:     map[string]frame.Kind{"score": frame.KindFloat},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"name", "score"}, fr.Names())
	s, _ := fr.ColumnByName("score")
	require.Equal(t, frame.KindFloat, s.Kind())
	v, ok := s.(*frame.FloatColumn).Get(1)
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
	assert.True(t, s.IsNull(2))
}

func TestShortRecords(t *testing.T) {
	in := "a,b\n1,2\n3\n"
	r := NewReaderFrom(strings.NewReader(in), ReaderOptions{HasHeader: true})
	schema, _, err := r.InferSchema()
	require.NoError(t, err)
	fr, err := r.ReadAll(schema)
	require.NoError(t, err)
	assert.Equal(t, 2, fr.Rows())
	b, _ := fr.ColumnByName("b")
	assert.True(t, b.IsNull(1))
	assert.Equal(t, "short_records=1", r.Warnings())

	strict := NewReaderFrom(strings.NewReader(in), ReaderOptions{HasHeader: true, Strict: true})
	schema, _, err = strict.InferSchema()
	if err == nil {
		_, err = strict.ReadAll(schema)
	}
	assert.Error(t, err)
}

func TestEmptyInput(t *testing.T) {
	r := NewReaderFrom(strings.NewReader(""), ReaderOptions{HasHeader: true})
	_, _, err := r.InferSchema()
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	fr, _, err := ReadFile(filepath.FromSlash("testdata/students.csv"), ReaderOptions{HasHeader: true})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "nested", "out.csv.gz")
	require.NoError(t, WriteAll(out, fr, WriterOptions{}))
	_, err = os.Stat(out)
	require.NoError(t, err)

	back, _, err := ReadFile(out, ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	assert.Equal(t, fr.Names(), back.Names())
	assert.Equal(t, fr.Rows(), back.Rows())
	w, _ := back.ColumnByName("writing_score")
	assert.True(t, w.IsNull(3))
}

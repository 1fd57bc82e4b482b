package encode

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

func studentFrame(genders []string, scores []float64) *frame.Frame {
	f := frame.NewFrame(frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "gender", Type: frame.KindString, Nullable: true},
		{Name: "score", Type: frame.KindFloat, Nullable: true},
	}})
	for i := range genders {
		f.AppendNullRow()
		if genders[i] != "" {
			_ = f.SetCell(i, "gender", genders[i])
		}
		if !math.IsNaN(scores[i]) {
			_ = f.SetCell(i, "score", scores[i])
		}
	}
	return f
}

func TestOneHotSortedVocabulary(t *testing.T) {
	ctx := context.Background()
	train := studentFrame([]string{"male", "female", "male"}, []float64{1, 2, 3})
	enc := &OneHot{Columns: []string{"gender"}}
	require.NoError(t, enc.Fit(ctx, train))
	assert.Equal(t, [][]string{{"female", "male"}}, enc.Categories)
	assert.Equal(t, []string{"gender_female", "gender_male"}, enc.FeatureNames())

	m, err := enc.Encode(ctx, train)
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, []float64{0, 1}, m.RawRowView(0))
	assert.Equal(t, []float64{1, 0}, m.RawRowView(1))
}

func TestOneHotUnknownIsZeroRow(t *testing.T) {
	ctx := context.Background()
	enc := &OneHot{Columns: []string{"gender"}, HandleUnknown: UnknownIgnore}
	require.NoError(t, enc.Fit(ctx, studentFrame([]string{"male", "female"}, []float64{1, 2})))

	test := studentFrame([]string{"other", ""}, []float64{1, 2})
	m, err := enc.Encode(ctx, test)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, m.RawRowView(0))
	assert.Equal(t, []float64{0, 0}, m.RawRowView(1))

	strict := &OneHot{Columns: []string{"gender"}, HandleUnknown: UnknownError, Categories: enc.Categories}
	_, err = strict.Encode(ctx, test)
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestOneHotNoCategories(t *testing.T) {
	enc := &OneHot{Columns: []string{"gender"}}
	err := enc.Fit(context.Background(), studentFrame([]string{"", ""}, []float64{1, 2}))
	assert.Error(t, err)
}

func TestNumericPassThrough(t *testing.T) {
	ctx := context.Background()
	f := studentFrame([]string{"a", "b"}, []float64{70, math.NaN()})
	enc := &Numeric{Columns: []string{"score"}}
	require.NoError(t, enc.Fit(ctx, f))
	m, err := enc.Encode(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 70.0, m.At(0, 0))
	assert.True(t, math.IsNaN(m.At(1, 0)))

	bad := &Numeric{Columns: []string{"gender"}}
	assert.Error(t, bad.Fit(ctx, f))
	missing := &Numeric{Columns: []string{"nope"}}
	assert.True(t, errors.Is(missing.Fit(ctx, f), frame.ErrMissingColumn))
}

func TestNumericRejectsInfinity(t *testing.T) {
	ctx := context.Background()
	enc := &Numeric{Columns: []string{"score"}}

	err := enc.Fit(ctx, studentFrame([]string{"male", "female"}, []float64{70, math.Inf(1)}))
	assert.True(t, errors.Is(err, ErrNonFinite))

	require.NoError(t, enc.Fit(ctx, studentFrame([]string{"male", "female"}, []float64{70, 80})))
	_, err = enc.Encode(ctx, studentFrame([]string{"male"}, []float64{math.Inf(-1)}))
	assert.True(t, errors.Is(err, ErrNonFinite))
}

package preprocess

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/scoreprep/pkg/config"
)

func TestFillNaNPerColumn(t *testing.T) {
	nan := math.NaN()
	m := mat.NewDense(3, 3, []float64{
		1, 10, nan,
		nan, 20, nan,
		3, nan, nan,
	})
	n := FillNaN(m, config.NaNFillColumn)
	assert.Equal(t, 5, n)
	assert.Equal(t, 2.0, m.At(1, 0))
	assert.Equal(t, 15.0, m.At(2, 1))
	// all-NaN column takes the matrix median of {1, 3, 10, 20}
	assert.Equal(t, 6.5, m.At(0, 2))
	assert.False(t, hasNaN(m))
}

func TestFillNaNGlobal(t *testing.T) {
	nan := math.NaN()
	m := mat.NewDense(2, 2, []float64{
		1, nan,
		100, 4,
	})
	assert.Equal(t, 1, FillNaN(m, config.NaNFillGlobal))
	assert.Equal(t, 4.0, m.At(0, 1))
}

func TestFillNaNEdges(t *testing.T) {
	m := mat.NewDense(1, 2, []float64{math.NaN(), math.NaN()})
	assert.Equal(t, 2, FillNaN(m, config.NaNFillColumn))
	assert.Equal(t, []float64{0, 0}, m.RawRowView(0))

	clean := mat.NewDense(1, 1, []float64{7})
	assert.Zero(t, FillNaN(clean, config.NaNFillColumn))
	assert.Equal(t, 7.0, clean.At(0, 0))
}

package preprocess

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/scoreprep/pkg/config"
	"github.com/wdm0006/scoreprep/pkg/transform/impute"
)

// FillNaN is the last-resort guard run on each output matrix: it replaces
// every NaN in place and returns how many cells it touched.
//
// In config.NaNFillColumn mode a NaN takes the median of its own column; a
// column with no values falls back to the median of the whole matrix, and an
// all-NaN matrix to 0. config.NaNFillGlobal uses the whole-matrix median for
// every cell.
func FillNaN(m *mat.Dense, mode string) int {
	r, c := m.Dims()
	var all []float64
	var nan int
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := m.At(i, j); math.IsNaN(v) {
				nan++
			} else {
				all = append(all, v)
			}
		}
	}
	if nan == 0 {
		return 0
	}
	global := impute.MedianOf(all)
	if math.IsNaN(global) {
		global = 0
	}

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		fill := global
		if mode != config.NaNFillGlobal {
			mat.Col(col, j, m)
			vals := col[:0]
			for _, v := range col {
				if !math.IsNaN(v) {
					vals = append(vals, v)
				}
			}
			if med := impute.MedianOf(vals); !math.IsNaN(med) {
				fill = med
			}
		}
		for i := 0; i < r; i++ {
			if math.IsNaN(m.At(i, j)) {
				m.Set(i, j, fill)
			}
		}
	}
	return nan
}

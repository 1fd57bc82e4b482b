// Package profile summarizes the columns of a frame: counts, nulls, numeric
// ranges and the most frequent categories.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

// Mean is 0 for a column with no values.
func (s *NumStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

type StringStats struct {
	Count int            `json:"count"`
	Nulls int            `json:"nulls"`
	Freqs map[string]int `json:"-"`
}

// Freq is one category and how often it occurred.
type Freq struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type ColumnProfile struct {
	Name string       `json:"name"`
	Kind frame.Kind   `json:"-"`
	Num  *NumStats    `json:"num,omitempty"`
	Bool *BoolStats   `json:"bool,omitempty"`
	Str  *StringStats `json:"str,omitempty"`
}

// Collector accumulates column statistics over one or more frames sharing a
// schema.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
}

func NewCollector(schema frame.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case frame.KindFloat, frame.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case frame.KindBool:
			cp.Bool = &BoolStats{}
		default:
			cp.Str = &StringStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

// ConsumeFrame adds f's rows. Columns unknown to the collector are skipped.
func (c *Collector) ConsumeFrame(f *frame.Frame) {
	for _, cs := range f.Schema().Columns {
		idx, ok := c.index[cs.Name]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		col, _ := f.ColumnByName(cs.Name)
		switch {
		case cp.Num != nil:
			vals, err := frame.Float64s(col)
			if err != nil {
				continue
			}
			for _, v := range vals {
				if math.IsNaN(v) {
					cp.Num.Nulls++
					continue
				}
				cp.Num.Count++
				cp.Num.Min = math.Min(cp.Num.Min, v)
				cp.Num.Max = math.Max(cp.Num.Max, v)
				cp.Num.Sum += v
			}
		case cp.Bool != nil:
			bc, ok := col.(*frame.BoolColumn)
			if !ok {
				continue
			}
			for i := 0; i < bc.Len(); i++ {
				v, ok := bc.Get(i)
				switch {
				case !ok:
					cp.Bool.Nulls++
				case v:
					cp.Bool.Count++
					cp.Bool.True++
				default:
					cp.Bool.Count++
					cp.Bool.False++
				}
			}
		default:
			vals, valid := frame.Strings(col)
			for i, v := range vals {
				if !valid[i] {
					cp.Str.Nulls++
					continue
				}
				cp.Str.Count++
				if c.topK > 0 {
					cp.Str.Freqs[v]++
				}
			}
		}
	}
}

// Columns returns the profiles in schema order.
func (c *Collector) Columns() []ColumnProfile { return c.cols }

// Top returns up to topK categories of a string column, most frequent first,
// ties by value.
func (c *Collector) Top(name string) []Freq {
	idx, ok := c.index[name]
	if !ok || c.cols[idx].Str == nil {
		return nil
	}
	freqs := c.cols[idx].Str.Freqs
	arr := make([]Freq, 0, len(freqs))
	for k, v := range freqs {
		arr = append(arr, Freq{Value: k, Count: v})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].Count != arr[j].Count {
			return arr[i].Count > arr[j].Count
		}
		return arr[i].Value < arr[j].Value
	})
	if c.topK > 0 && len(arr) > c.topK {
		arr = arr[:c.topK]
	}
	return arr
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d\n", cp.Str.Count, cp.Str.Nulls)
			for _, fq := range c.Top(cp.Name) {
				fmt.Fprintf(&b, "  * %q: %d\n", fq.Value, fq.Count)
			}
		}
	}
	return b.String()
}

// Log writes one debug event per column.
func (c *Collector) Log(l zerolog.Logger, table string) {
	for _, cp := range c.cols {
		e := l.Debug().Str("table", table).Str("column", cp.Name).Stringer("kind", cp.Kind)
		switch {
		case cp.Num != nil:
			e = e.Int("count", cp.Num.Count).Int("nulls", cp.Num.Nulls)
			if cp.Num.Count > 0 {
				e = e.Float64("min", cp.Num.Min).Float64("max", cp.Num.Max).Float64("mean", cp.Num.Mean())
			}
		case cp.Bool != nil:
			e = e.Int("count", cp.Bool.Count).Int("nulls", cp.Bool.Nulls).Int("true", cp.Bool.True)
		default:
			e = e.Int("count", cp.Str.Count).Int("nulls", cp.Str.Nulls).Int("distinct", len(cp.Str.Freqs))
		}
		e.Msg("column profile")
	}
}

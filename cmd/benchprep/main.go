package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/wdm0006/scoreprep/pkg/config"
	"github.com/wdm0006/scoreprep/pkg/frame"
	"github.com/wdm0006/scoreprep/pkg/logger"
	"github.com/wdm0006/scoreprep/pkg/preprocess"
)

var categories = map[string][]string{
	"gender":                      {"female", "male"},
	"race_ethnicity":              {"group A", "group B", "group C", "group D", "group E"},
	"parental_level_of_education": {"some high school", "high school", "some college", "associate's degree", "bachelor's degree", "master's degree"},
	"lunch":                       {"standard", "free/reduced"},
	"test_preparation_course":     {"none", "completed"},
}

// genFrame builds n synthetic student rows. Feature cells go missing with
// probability missp; the target is always present.
func genFrame(cfg config.Config, n int, missp float64, rnd *rand.Rand) *frame.Frame {
	var cols []frame.ColumnSchema
	for _, c := range cfg.Columns.Numerical {
		cols = append(cols, frame.ColumnSchema{Name: c, Type: frame.KindFloat, Nullable: true})
	}
	for _, c := range cfg.Columns.Categorical {
		cols = append(cols, frame.ColumnSchema{Name: c, Type: frame.KindString, Nullable: true})
	}
	cols = append(cols, frame.ColumnSchema{Name: cfg.Columns.Target, Type: frame.KindFloat, Nullable: true})
	f := frame.NewFrame(frame.Schema{Columns: cols})

	for i := 0; i < n; i++ {
		f.AppendNullRow()
		for _, c := range cfg.Columns.Numerical {
			if rnd.Float64() < missp {
				continue
			}
			_ = f.SetCell(i, c, float64(rnd.Intn(101)))
		}
		for _, c := range cfg.Columns.Categorical {
			if rnd.Float64() < missp {
				continue
			}
			vals := categories[c]
			if len(vals) == 0 {
				vals = []string{"a", "b", "c"}
			}
			_ = f.SetCell(i, c, vals[rnd.Intn(len(vals))])
		}
		_ = f.SetCell(i, cfg.Columns.Target, float64(rnd.Intn(101)))
	}
	return f
}

func main() {
	var (
		trainRows = flag.Int("train-rows", 1_000_000, "train rows to generate")
		testRows  = flag.Int("test-rows", 250_000, "test rows to generate")
		missp     = flag.Float64("missing", 0.05, "probability of a missing feature cell")
		jsonOut   = flag.Bool("json", false, "emit JSON summary")
		seed      = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()
	_ = logger.SetLevel("warn")

	cfg := config.Default()
	p, err := preprocess.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rnd := rand.New(rand.NewSource(*seed))
	train := genFrame(cfg, *trainRows, *missp, rnd)
	test := genFrame(cfg, *testRows, *missp, rnd)

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	res, _, err := p.TransformFrames(context.Background(), train, test)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	_, width := res.Train.Dims()
	total := *trainRows + *testRows
	rowsPerSec := float64(total) / elapsed.Seconds()
	summary := map[string]any{
		"train_rows":            *trainRows,
		"test_rows":             *testRows,
		"columns":               width,
		"elapsed_ms":            elapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"missing_prob":          *missp,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows: %d (train %d, test %d)\n", total, *trainRows, *testRows)
	fmt.Printf("Output columns: %d\n", width)
	fmt.Printf("Elapsed: %s\n", elapsed)
	fmt.Printf("Throughput: %.0f rows/s\n", rowsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}

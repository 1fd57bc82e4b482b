package csvio

import (
	"path/filepath"
	"testing"
)

func BenchmarkReadStudents(b *testing.B) {
	p := filepath.FromSlash("testdata/students.csv")
	for n := 0; n < b.N; n++ {
		fr, _, err := ReadFile(p, ReaderOptions{HasHeader: true})
		if err != nil {
			b.Fatal(err)
		}
		if fr.Rows() == 0 {
			b.Fatal("no rows")
		}
	}
}

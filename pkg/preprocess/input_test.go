package preprocess

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/wdm0006/scoreprep/pkg/io/table"
	"github.com/wdm0006/scoreprep/pkg/transform/encode"
)

const studentHeader = "gender,race_ethnicity,parental_level_of_education,lunch,test_preparation_course,math_score,reading_score,writing_score\n"

func writeTable(t *testing.T, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	body := studentHeader + strings.Join(rows, "\n") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMalformedTablesFail(t *testing.T) {
	convey.Convey("Given a preprocessor and a well-formed test table", t, func() {
		p := newPreprocessor(t)
		ctx := context.Background()
		good := []string{
			"female,group B,some college,standard,none,72,72,74",
			"male,group A,high school,free/reduced,completed,47,57,44",
		}

		convey.Convey("A row with extra fields fails the run", func() {
			train := writeTable(t, "ragged.csv", append(good, "male,group A,high school,standard,none,60,65,70,EXTRA,FIELDS")...)
			_, err := p.Run(ctx, train, "testdata/test.csv")
			var pe *ProcessingError
			convey.So(errors.As(err, &pe), convey.ShouldBeTrue)
			convey.So(errors.Is(err, csv.ErrFieldCount), convey.ShouldBeTrue)
			_, statErr := os.Stat(p.Config().ArtifactPath)
			convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
		})

		convey.Convey("A non-numeric score fails the run", func() {
			train := writeTable(t, "badcell.csv", append(good, "male,group A,high school,standard,none,60,abc,70")...)
			_, err := p.Run(ctx, train, "testdata/test.csv")
			var pe *ProcessingError
			convey.So(errors.As(err, &pe), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "reading_score")
			_, statErr := os.Stat(p.Config().ArtifactPath)
			convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
		})

		convey.Convey("An infinite score fails the run", func() {
			train := writeTable(t, "inf.csv", append(good, "male,group A,high school,standard,none,60,65,inf")...)
			_, err := p.Run(ctx, train, "testdata/test.csv")
			var pe *ProcessingError
			convey.So(errors.As(err, &pe), convey.ShouldBeTrue)
			convey.So(errors.Is(err, encode.ErrNonFinite), convey.ShouldBeTrue)
		})
	})
}

func TestInfiniteValuesInFrames(t *testing.T) {
	convey.Convey("Given a two-row training table", t, func() {
		p := newPreprocessor(t)
		ctx := context.Background()
		ok := []any{"female", "group A", "high school", "standard", "none", 80.0, 75.0, 90.0}

		convey.Convey("An infinite feature in train is rejected", func() {
			train := students([]any{"male", "group A", "high school", "standard", "none", math.Inf(1), 65.0, 60.0}, ok)
			_, _, err := p.TransformFrames(ctx, train, train)
			convey.So(errors.Is(err, encode.ErrNonFinite), convey.ShouldBeTrue)
		})

		convey.Convey("An infinite feature in test is rejected", func() {
			train := students([]any{"male", "group A", "high school", "standard", "none", 70.0, 65.0, 60.0}, ok)
			test := students([]any{"male", "group A", "high school", "standard", "none", 70.0, math.Inf(-1), 60.0})
			_, _, err := p.TransformFrames(ctx, train, test)
			convey.So(errors.Is(err, encode.ErrNonFinite), convey.ShouldBeTrue)
		})

		convey.Convey("An infinite target is rejected", func() {
			train := students([]any{"male", "group A", "high school", "standard", "none", 70.0, 65.0, math.Inf(1)}, ok)
			_, _, err := p.TransformFrames(ctx, train, train)
			convey.So(errors.Is(err, ErrTarget), convey.ShouldBeTrue)
		})
	})
}

func TestRunFromParquet(t *testing.T) {
	convey.Convey("Given the train and test tables stored as parquet", t, func() {
		p := newPreprocessor(t)
		dir := t.TempDir()
		paths := map[string]string{}
		for _, name := range []string{"train", "test"} {
			f, err := p.ReadTable("testdata/" + name + ".csv")
			convey.So(err, convey.ShouldBeNil)
			paths[name] = filepath.Join(dir, name+".parquet")
			convey.So(table.Write(paths[name], f, ""), convey.ShouldBeNil)
		}

		res, err := p.Run(context.Background(), paths["train"], paths["test"])
		convey.So(err, convey.ShouldBeNil)
		_, c := res.Train.Dims()
		convey.So(c, convey.ShouldEqual, 2+15+1)
		convey.So(hasNaN(res.Test), convey.ShouldBeFalse)
		convey.So(lastColumn(res.Test), convey.ShouldResemble, []float64{65, 78, 50, 69, 88})
	})
}

// Package preprocess turns a train/test pair of student score tables into
// numeric matrices for a regression model.
//
// Numerical columns are median-imputed and standardized. Categorical columns
// are filled with their most frequent value, one-hot encoded and scaled
// without centering. The transform is fitted on the training table only,
// applied to both tables, and persisted so the same transform can be reused
// at inference time. The target column is appended to each matrix as the
// last column.
package preprocess

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/wdm0006/scoreprep/pkg/config"
	"github.com/wdm0006/scoreprep/pkg/frame"
	"github.com/wdm0006/scoreprep/pkg/io/table"
	"github.com/wdm0006/scoreprep/pkg/logger"
	"github.com/wdm0006/scoreprep/pkg/pipeline"
	"github.com/wdm0006/scoreprep/pkg/profile"
	"github.com/wdm0006/scoreprep/pkg/transform/encode"
	"github.com/wdm0006/scoreprep/pkg/transform/impute"
	"github.com/wdm0006/scoreprep/pkg/transform/scale"
)

// Branch names of the transformer.
const (
	NumericalBranch   = "num_pipeline"
	CategoricalBranch = "cat_pipelines"
)

// Result is the output of one fit-and-transform run. Columns of Train and
// Test follow FeatureNames, whose last entry is the target.
type Result struct {
	Train        *mat.Dense
	Test         *mat.Dense
	ArtifactPath string
	FeatureNames []string
	RunID        string
}

// Preprocessor builds, fits and applies the column transformer described by
// its config. It holds no fitted state between calls.
type Preprocessor struct {
	cfg   config.Config
	clean []pipeline.Transform
}

// New validates cfg and returns a Preprocessor bound to it.
func New(cfg config.Config) (*Preprocessor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, wrap("configure preprocessor", err)
	}
	steps, err := cfg.Steps()
	if err != nil {
		return nil, wrap("configure preprocessor", err)
	}
	return &Preprocessor{cfg: cfg, clean: steps}, nil
}

// Config returns the validated config the Preprocessor was built with.
func (p *Preprocessor) Config() config.Config { return p.cfg }

// BuildTransformer returns an unfitted transformer with the numerical branch
// first and the categorical branch second.
func (p *Preprocessor) BuildTransformer() (*pipeline.ColumnTransformer, error) {
	cols := p.cfg.Columns
	if len(cols.Numerical) == 0 || len(cols.Categorical) == 0 {
		return nil, wrap("build transformer", fmt.Errorf("%w: empty column list", config.ErrInvalid))
	}

	numPrep := pipeline.NewPipeline()
	for _, c := range cols.Numerical {
		switch p.cfg.Impute.Numerical {
		case config.StrategyMedian:
			numPrep.Add(&impute.Median{Column: c})
		case config.StrategyMean:
			numPrep.Add(&impute.Mean{Column: c})
		case config.StrategyConstant:
			numPrep.Add(&impute.Constant{Column: c, Value: p.cfg.Impute.NumericalFill})
		default:
			return nil, wrap("build transformer", fmt.Errorf("%w: numerical strategy %q", config.ErrInvalid, p.cfg.Impute.Numerical))
		}
	}
	catPrep := pipeline.NewPipeline()
	for _, c := range cols.Categorical {
		switch p.cfg.Impute.Categorical {
		case config.StrategyMostFrequent:
			catPrep.Add(&impute.Mode{Column: c})
		case config.StrategyConstant:
			catPrep.Add(&impute.Constant{Column: c, Value: p.cfg.Impute.CategoricalFill})
		default:
			return nil, wrap("build transformer", fmt.Errorf("%w: categorical strategy %q", config.ErrInvalid, p.cfg.Impute.Categorical))
		}
	}

	num := &pipeline.Branch{
		Name:    NumericalBranch,
		Columns: append([]string(nil), cols.Numerical...),
		Prep:    numPrep,
		Encoder: &encode.Numeric{Columns: append([]string(nil), cols.Numerical...)},
		Post:    []pipeline.MatrixStep{scale.NewStandard(true)},
	}
	cat := &pipeline.Branch{
		Name:    CategoricalBranch,
		Columns: append([]string(nil), cols.Categorical...),
		Prep:    catPrep,
		Encoder: &encode.OneHot{Columns: append([]string(nil), cols.Categorical...), HandleUnknown: p.cfg.HandleUnknown},
		Post:    []pipeline.MatrixStep{scale.NewStandard(false)},
	}
	logger.Infof("numerical columns: %v", cols.Numerical)
	logger.Infof("categorical columns: %v", cols.Categorical)
	return pipeline.NewColumnTransformer(num, cat), nil
}

// Kinds pins numeric columns and the target to float and categorical
// columns to string when reading tables.
func (p *Preprocessor) Kinds() map[string]frame.Kind {
	kinds := map[string]frame.Kind{p.cfg.Columns.Target: frame.KindFloat}
	for _, c := range p.cfg.Columns.Numerical {
		kinds[c] = frame.KindFloat
	}
	for _, c := range p.cfg.Columns.Categorical {
		kinds[c] = frame.KindString
	}
	return kinds
}

// ReadTable loads a whole table with the configured kinds and null spellings.
// Ragged rows and cells that do not parse as their column's kind fail the read.
func (p *Preprocessor) ReadTable(path string) (*frame.Frame, error) {
	f, _, err := table.Read(path, table.Options{Kinds: p.Kinds(), NullValues: p.cfg.NullValues, Strict: true})
	if err != nil {
		return nil, wrap("read table", err)
	}
	return f, nil
}

// Run loads both tables, fits on train, transforms both, persists the fitted
// transformer to the configured artifact path and returns the matrices.
func (p *Preprocessor) Run(ctx context.Context, trainPath, testPath string) (*Result, error) {
	runID := uuid.NewString()
	log := logger.Logger().With().Str("run_id", runID).Logger()

	log.Info().Str("train", trainPath).Str("test", testPath).Msg("reading tables")
	train, err := p.ReadTable(trainPath)
	if err != nil {
		return nil, wrap("load train table", err)
	}
	test, err := p.ReadTable(testPath)
	if err != nil {
		return nil, wrap("load test table", err)
	}
	log.Info().Int("train_rows", train.Rows()).Int("test_rows", test.Rows()).Msg("tables loaded")

	res, ct, err := p.transformFrames(ctx, log, runID, train, test)
	if err != nil {
		return nil, err
	}
	if err := SaveArtifact(p.cfg.ArtifactPath, ct); err != nil {
		return nil, err
	}
	res.ArtifactPath = p.cfg.ArtifactPath
	log.Info().Str("artifact", res.ArtifactPath).Msg("preprocessor saved")
	return res, nil
}

// TransformFrames does the work of Run on tables already in memory and
// without persisting. The fitted transformer is returned alongside.
func (p *Preprocessor) TransformFrames(ctx context.Context, train, test *frame.Frame) (*Result, *pipeline.ColumnTransformer, error) {
	runID := uuid.NewString()
	return p.transformFrames(ctx, logger.Logger().With().Str("run_id", runID).Logger(), runID, train, test)
}

func (p *Preprocessor) transformFrames(ctx context.Context, log zerolog.Logger, runID string, train, test *frame.Frame) (*Result, *pipeline.ColumnTransformer, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, wrap("transform", err)
	}
	train, err := p.cleanTable(ctx, train)
	if err != nil {
		return nil, nil, wrap("clean train table", err)
	}
	test, err = p.cleanTable(ctx, test)
	if err != nil {
		return nil, nil, wrap("clean test table", err)
	}

	ct, err := p.BuildTransformer()
	if err != nil {
		return nil, nil, err
	}
	if err := train.Has(ct.Columns()...); err != nil {
		return nil, nil, wrap("check train table", err)
	}
	if err := test.Has(ct.Columns()...); err != nil {
		return nil, nil, wrap("check test table", err)
	}
	trainX, trainY, err := p.splitTarget(train)
	if err != nil {
		return nil, nil, wrap("split train target", err)
	}
	testX, testY, err := p.splitTarget(test)
	if err != nil {
		return nil, nil, wrap("split test target", err)
	}

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		pc := profile.NewCollector(trainX.Schema(), 5)
		pc.ConsumeFrame(trainX)
		pc.Log(log, "train")
	}

	log.Info().Msg("fitting preprocessor on train features")
	trainM, err := ct.FitTransform(ctx, trainX)
	if err != nil {
		return nil, nil, wrap("fit transformer", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, wrap("transform", err)
	}
	log.Info().Msg("transforming test features")
	testM, err := ct.Transform(ctx, testX)
	if err != nil {
		return nil, nil, wrap("transform test table", err)
	}

	if n := FillNaN(trainM, p.cfg.NaNFill); n > 0 {
		log.Warn().Int("cells", n).Str("mode", p.cfg.NaNFill).Msg("filled NaN in train matrix")
	}
	if n := FillNaN(testM, p.cfg.NaNFill); n > 0 {
		log.Warn().Int("cells", n).Str("mode", p.cfg.NaNFill).Msg("filled NaN in test matrix")
	}

	names := append(ct.FeatureNames(), p.cfg.Columns.Target)
	res := &Result{
		Train:        appendColumn(trainM, trainY),
		Test:         appendColumn(testM, testY),
		FeatureNames: names,
		RunID:        runID,
	}
	_, w := res.Train.Dims()
	log.Info().Int("columns", w).Msg("preprocessing complete")
	return res, ct, nil
}

// Apply runs a fitted transformer over f for inference. The target column is
// dropped when present; cleaning steps and the NaN guard still run.
func (p *Preprocessor) Apply(ctx context.Context, ct *pipeline.ColumnTransformer, f *frame.Frame) (*mat.Dense, error) {
	if ct == nil {
		return nil, wrap("apply", pipeline.ErrNotFitted)
	}
	f, err := p.cleanTable(ctx, f)
	if err != nil {
		return nil, wrap("clean table", err)
	}
	m, err := ct.Transform(ctx, f.Drop(p.cfg.Columns.Target))
	if err != nil {
		return nil, wrap("apply transformer", err)
	}
	if n := FillNaN(m, p.cfg.NaNFill); n > 0 {
		logger.Warnf("filled %d NaN cells", n)
	}
	return m, nil
}

func (p *Preprocessor) cleanTable(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if len(p.clean) == 0 {
		return f, nil
	}
	return (&pipeline.Pipeline{Steps: p.clean}).Run(ctx, f)
}

// splitTarget separates the target from the features. The target must be
// present, numeric, finite and complete.
func (p *Preprocessor) splitTarget(f *frame.Frame) (*frame.Frame, []float64, error) {
	name := p.cfg.Columns.Target
	col, ok := f.ColumnByName(name)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %w: %s", ErrTarget, frame.ErrMissingColumn, name)
	}
	y, err := frame.Float64s(col)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrTarget, err)
	}
	missing := 0
	for i, v := range y {
		if math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("%w: %s row %d is %v", ErrTarget, name, i, v)
		}
		if math.IsNaN(v) {
			missing++
		}
	}
	if missing > 0 {
		return nil, nil, fmt.Errorf("%w: %s has %d missing of %d values", ErrTarget, name, missing, len(y))
	}
	return f.Drop(name), y, nil
}

// appendColumn returns m with y added as a last column.
func appendColumn(m *mat.Dense, y []float64) *mat.Dense {
	var out mat.Dense
	out.Augment(m, mat.NewDense(len(y), 1, y))
	return &out
}

// Package config holds the preprocessing settings: which columns play which
// role, the imputation strategies, the artifact location and the optional
// cleaning steps applied before fitting.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvArtifactPath = "SCOREPREP_ARTIFACT_PATH"
	EnvLogLevel     = "SCOREPREP_LOG_LEVEL"
	EnvNaNFill      = "SCOREPREP_NAN_FILL"
)

// Strategy and mode names.
const (
	StrategyMedian       = "median"
	StrategyMean         = "mean"
	StrategyMostFrequent = "most_frequent"
	StrategyConstant     = "constant"

	UnknownIgnore = "ignore"
	UnknownError  = "error"

	NaNFillColumn = "column"
	NaNFillGlobal = "global"
)

// DefaultArtifactPath is where Run saves the fitted preprocessor.
var DefaultArtifactPath = filepath.Join("artifacts", "preprocessor.gob")

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

type Columns struct {
	Numerical   []string `json:"numerical" yaml:"numerical" toml:"numerical"`
	Categorical []string `json:"categorical" yaml:"categorical" toml:"categorical"`
	Target      string   `json:"target" yaml:"target" toml:"target"`
}

// Impute selects the fill strategy per branch. The fill values are used only
// by the constant strategy.
type Impute struct {
	Numerical       string  `json:"numerical" yaml:"numerical" toml:"numerical"`
	Categorical     string  `json:"categorical" yaml:"categorical" toml:"categorical"`
	NumericalFill   float64 `json:"numerical_fill" yaml:"numerical_fill" toml:"numerical_fill"`
	CategoricalFill string  `json:"categorical_fill" yaml:"categorical_fill" toml:"categorical_fill"`
}

type Config struct {
	Columns       Columns  `json:"columns" yaml:"columns" toml:"columns"`
	Impute        Impute   `json:"impute" yaml:"impute" toml:"impute"`
	HandleUnknown string   `json:"handle_unknown" yaml:"handle_unknown" toml:"handle_unknown"`
	NaNFill       string   `json:"nan_fill" yaml:"nan_fill" toml:"nan_fill"`
	ArtifactPath  string   `json:"artifact_path" yaml:"artifact_path" toml:"artifact_path"`
	LogLevel      string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	NullValues    []string `json:"null_values" yaml:"null_values" toml:"null_values"`
	// Clean lists single-key step objects, e.g. {"trim": {"column": "gender"}}.
	Clean []map[string]StepArgs `json:"clean" yaml:"clean" toml:"clean"`
}

// Default returns the student exam-score layout.
func Default() Config {
	return Config{
		Columns: Columns{
			Numerical: []string{"writing_score", "reading_score"},
			Categorical: []string{
				"gender",
				"race_ethnicity",
				"parental_level_of_education",
				"lunch",
				"test_preparation_course",
			},
			Target: "math_score",
		},
		Impute: Impute{
			Numerical:       StrategyMedian,
			Categorical:     StrategyMostFrequent,
			CategoricalFill: "missing",
		},
		HandleUnknown: UnknownIgnore,
		NaNFill:       NaNFillColumn,
		ArtifactPath:  DefaultArtifactPath,
		LogLevel:      "info",
	}
}

// Load overlays the file at path onto Default. The format follows the
// extension: .json, .yaml/.yml or .toml.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overrides fields from SCOREPREP_* variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvArtifactPath); v != "" {
		c.ArtifactPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvNaNFill); v != "" {
		c.NaNFill = v
	}
}

// Features returns numerical then categorical column names.
func (c Config) Features() []string {
	out := make([]string, 0, len(c.Columns.Numerical)+len(c.Columns.Categorical))
	out = append(out, c.Columns.Numerical...)
	return append(out, c.Columns.Categorical...)
}

func (c Config) Validate() error {
	if len(c.Columns.Numerical) == 0 {
		return fmt.Errorf("%w: no numerical columns", ErrInvalid)
	}
	if len(c.Columns.Categorical) == 0 {
		return fmt.Errorf("%w: no categorical columns", ErrInvalid)
	}
	if strings.TrimSpace(c.Columns.Target) == "" {
		return fmt.Errorf("%w: no target column", ErrInvalid)
	}
	seen := map[string]bool{c.Columns.Target: true}
	for _, name := range c.Features() {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty column name", ErrInvalid)
		}
		if seen[name] {
			return fmt.Errorf("%w: column %q listed twice", ErrInvalid, name)
		}
		seen[name] = true
	}
	switch c.Impute.Numerical {
	case StrategyMedian, StrategyMean, StrategyConstant:
	default:
		return fmt.Errorf("%w: numerical strategy %q", ErrInvalid, c.Impute.Numerical)
	}
	switch c.Impute.Categorical {
	case StrategyMostFrequent, StrategyConstant:
	default:
		return fmt.Errorf("%w: categorical strategy %q", ErrInvalid, c.Impute.Categorical)
	}
	switch c.HandleUnknown {
	case UnknownIgnore, UnknownError:
	default:
		return fmt.Errorf("%w: handle_unknown %q", ErrInvalid, c.HandleUnknown)
	}
	switch c.NaNFill {
	case NaNFillColumn, NaNFillGlobal:
	default:
		return fmt.Errorf("%w: nan_fill %q", ErrInvalid, c.NaNFill)
	}
	if strings.TrimSpace(c.ArtifactPath) == "" {
		return fmt.Errorf("%w: empty artifact path", ErrInvalid)
	}
	_, err := c.Steps()
	return err
}

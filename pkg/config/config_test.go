package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"writing_score", "reading_score"}, cfg.Columns.Numerical)
	assert.Len(t, cfg.Columns.Categorical, 5)
	assert.Equal(t, "math_score", cfg.Columns.Target)
	assert.Equal(t, filepath.Join("artifacts", "preprocessor.gob"), cfg.ArtifactPath)
	assert.Equal(t, append(append([]string{}, cfg.Columns.Numerical...), cfg.Columns.Categorical...), cfg.Features())
}

func TestLoadFormatsAgree(t *testing.T) {
	for _, name := range []string{"prep.json", "prep.yaml", "prep.toml"} {
		t.Run(name, func(t *testing.T) {
			cfg, err := Load(filepath.Join("testdata", name))
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			assert.Equal(t, StrategyMean, cfg.Impute.Numerical)
			assert.Equal(t, StrategyMostFrequent, cfg.Impute.Categorical, "unset fields keep defaults")
			assert.Equal(t, NaNFillGlobal, cfg.NaNFill)
			assert.Equal(t, "out/prep.gob.gz", cfg.ArtifactPath)
			assert.Equal(t, "math_score", cfg.Columns.Target)

			steps, err := cfg.Steps()
			require.NoError(t, err)
			require.Len(t, steps, 3)
			assert.Equal(t, "trim", steps[0].Name())
			assert.Equal(t, "lower", steps[1].Name())
			assert.Equal(t, "cap_range", steps[2].Name())
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	dir := t.TempDir()
	ini := filepath.Join(dir, "prep.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0o644))
	_, err = Load(ini)
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"no numerical":      func(c *Config) { c.Columns.Numerical = nil },
		"no categorical":    func(c *Config) { c.Columns.Categorical = nil },
		"no target":         func(c *Config) { c.Columns.Target = " " },
		"target as feature": func(c *Config) { c.Columns.Numerical = append(c.Columns.Numerical, "math_score") },
		"duplicate":         func(c *Config) { c.Columns.Categorical = append(c.Columns.Categorical, "gender") },
		"numeric strategy":  func(c *Config) { c.Impute.Numerical = StrategyMostFrequent },
		"cat strategy":      func(c *Config) { c.Impute.Categorical = StrategyMedian },
		"handle unknown":    func(c *Config) { c.HandleUnknown = "drop" },
		"nan fill":          func(c *Config) { c.NaNFill = "zero" },
		"artifact":          func(c *Config) { c.ArtifactPath = "" },
		"unknown step":      func(c *Config) { c.Clean = []map[string]StepArgs{{"explode": {Column: "gender"}}} },
		"bad regex":         func(c *Config) { c.Clean = []map[string]StepArgs{{"regex_replace": {Column: "gender", Pattern: "("}}} },
		"constant no value": func(c *Config) { c.Clean = []map[string]StepArgs{{"impute_constant": {Column: "lunch"}}} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.True(t, errors.Is(cfg.Validate(), ErrInvalid))
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("SCOREPREP_ARTIFACT_PATH=from-env.gob\nSCOREPREP_NAN_FILL=global\n"), 0o644))
	t.Setenv(EnvArtifactPath, "")
	t.Setenv(EnvNaNFill, "")
	t.Setenv(EnvLogLevel, "debug")
	require.NoError(t, os.Unsetenv(EnvArtifactPath))
	require.NoError(t, os.Unsetenv(EnvNaNFill))

	require.NoError(t, LoadEnvFile(env))
	require.NoError(t, LoadEnvFile(filepath.Join(dir, "absent.env")))

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "from-env.gob", cfg.ArtifactPath)
	assert.Equal(t, NaNFillGlobal, cfg.NaNFill)
	assert.Equal(t, "debug", cfg.LogLevel)
}

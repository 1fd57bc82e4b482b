package config

import (
	"fmt"
	"sort"

	"github.com/wdm0006/scoreprep/pkg/pipeline"
	imp "github.com/wdm0006/scoreprep/pkg/transform/impute"
	outl "github.com/wdm0006/scoreprep/pkg/transform/outliers"
	std "github.com/wdm0006/scoreprep/pkg/transform/standardize"
)

// StepArgs is the union of arguments the cleaning steps take.
type StepArgs struct {
	Column  string            `json:"column" yaml:"column" toml:"column"`
	Value   any               `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Pattern string            `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty"`
	Replace string            `json:"replace,omitempty" yaml:"replace,omitempty" toml:"replace,omitempty"`
	Map     map[string]string `json:"map,omitempty" yaml:"map,omitempty" toml:"map,omitempty"`
	Min     *float64          `json:"min,omitempty" yaml:"min,omitempty" toml:"min,omitempty"`
	Max     *float64          `json:"max,omitempty" yaml:"max,omitempty" toml:"max,omitempty"`
}

// Steps builds the stateless cleaning transforms in file order. Keys inside
// one step object are taken in sorted order.
func (c Config) Steps() ([]pipeline.Transform, error) {
	var out []pipeline.Transform
	for i, step := range c.Clean {
		keys := make([]string, 0, len(step))
		for k := range step {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t, err := newStep(k, step[k])
			if err != nil {
				return nil, fmt.Errorf("%w: clean[%d]: %v", ErrInvalid, i, err)
			}
			out = append(out, t)
		}
	}
	return out, nil
}

func newStep(kind string, a StepArgs) (pipeline.Transform, error) {
	if a.Column == "" {
		return nil, fmt.Errorf("%s: missing column", kind)
	}
	switch kind {
	case "trim":
		return &std.Trim{Column: a.Column}, nil
	case "lower":
		return &std.Lower{Column: a.Column}, nil
	case "map_values":
		return &std.MapValues{Column: a.Column, Map: a.Map}, nil
	case "regex_replace":
		t, err := std.NewRegexReplace(a.Column, a.Pattern, a.Replace)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		return t, nil
	case "cap_range":
		return &outl.Cap{Column: a.Column, Min: a.Min, Max: a.Max}, nil
	case "impute_constant":
		if a.Value == nil {
			return nil, fmt.Errorf("%s: missing value", kind)
		}
		return &imp.Constant{Column: a.Column, Value: a.Value}, nil
	default:
		return nil, fmt.Errorf("unknown step %q", kind)
	}
}

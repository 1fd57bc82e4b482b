package standardize

import (
	"context"
	"strings"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

type Lower struct{ Column string }

func (t *Lower) Name() string { return "lower" }

func (t *Lower) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	return mapStrings(f, t.Column, strings.ToLower)
}

package standardize

import (
	"context"
	"strings"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

type Trim struct{ Column string }

func (t *Trim) Name() string { return "trim" }

func (t *Trim) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	return mapStrings(f, t.Column, strings.TrimSpace)
}

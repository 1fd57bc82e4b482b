package standardize

import (
	"context"
	"regexp"

	"github.com/wdm0006/scoreprep/pkg/frame"
)

type RegexReplace struct {
	Column  string
	Pattern string
	Replace string
	re      *regexp.Regexp
}

// NewRegexReplace compiles pattern up front so a bad expression fails at build time.
func NewRegexReplace(column, pattern, replace string) (*RegexReplace, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &RegexReplace{Column: column, Pattern: pattern, Replace: replace, re: re}, nil
}

func (t *RegexReplace) Name() string { return "regex_replace" }

func (t *RegexReplace) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	if t.re == nil {
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return nil, err
		}
		t.re = re
	}
	return mapStrings(f, t.Column, func(v string) string {
		return t.re.ReplaceAllString(v, t.Replace)
	})
}

package preprocess

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// ErrTarget marks a missing, non-numeric or incomplete target column.
var ErrTarget = errors.New("bad target column")

// ProcessingError is the one error kind returned by the preprocessor. It
// records the failed operation, where it was raised, and the cause.
type ProcessingError struct {
	Op   string
	File string
	Line int
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s (%s:%d): %v", e.Op, e.File, e.Line, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// wrap annotates err with op and the caller's position. Errors that are
// already a *ProcessingError pass through unchanged.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return err
	}
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file = "unknown"
	}
	return &ProcessingError{Op: op, File: filepath.Base(file), Line: line, Err: err}
}

package preprocess

import (
	"encoding/gob"
	"fmt"
	"os"

	iox "github.com/wdm0006/scoreprep/pkg/io/ioutils"
	"github.com/wdm0006/scoreprep/pkg/pipeline"
	"github.com/wdm0006/scoreprep/pkg/transform/encode"
	"github.com/wdm0006/scoreprep/pkg/transform/impute"
	"github.com/wdm0006/scoreprep/pkg/transform/scale"
)

func init() {
	// concrete types that may sit behind the transformer's interface fields
	gob.Register(&impute.Median{})
	gob.Register(&impute.Mean{})
	gob.Register(&impute.Mode{})
	gob.Register(&impute.Constant{})
	gob.Register(&encode.Numeric{})
	gob.Register(&encode.OneHot{})
	gob.Register(&scale.Standard{})
}

// SaveArtifact gob-encodes a fitted transformer to path, creating parent
// directories. A path ending in .gz is gzip-compressed. The file is closed on
// every path and a failed close is reported. On failure the partial file is
// removed.
func SaveArtifact(path string, ct *pipeline.ColumnTransformer) (err error) {
	if ct == nil || !ct.Fitted {
		return wrap("save artifact", fmt.Errorf("%s: %w", path, pipeline.ErrNotFitted))
	}
	w, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return wrap("save artifact", err)
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = wrap("close artifact", cerr)
		}
		if err != nil && path != "-" && path != "" {
			_ = os.Remove(path)
		}
	}()
	if err := gob.NewEncoder(w).Encode(ct); err != nil {
		return wrap("encode artifact", err)
	}
	return nil
}

// LoadArtifact reads a transformer written by SaveArtifact.
func LoadArtifact(path string) (*pipeline.ColumnTransformer, error) {
	r, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, wrap("load artifact", err)
	}
	defer func() { _ = r.Close() }()
	var ct pipeline.ColumnTransformer
	if err := gob.NewDecoder(r).Decode(&ct); err != nil {
		return nil, wrap("decode artifact", fmt.Errorf("%s: %w", path, err))
	}
	if !ct.Fitted {
		return nil, wrap("load artifact", fmt.Errorf("%s: %w", path, pipeline.ErrNotFitted))
	}
	return &ct, nil
}

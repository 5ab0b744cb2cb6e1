package scoring

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zipte-app/zipte-server/internal/types"
)

// Artifact is the persisted, trained model plus its provenance. It is the
// only shared resource between the offline training job and live inference.
type Artifact struct {
	Version   string
	TrainedAt time.Time
	RMSE      float64
	Model     *Model
}

// SaveArtifact persists the artifact with write-then-rename so a training
// run never tears the file under an in-flight reader.
func SaveArtifact(path string, artifact *Artifact) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*")
	if err != nil {
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(artifact); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads a persisted artifact. Missing or corrupt files surface
// as ErrModelUnavailable; inference never degrades to a zero score.
func LoadArtifact(path string) (*Artifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", types.ErrModelUnavailable, path, err)
	}
	defer f.Close()

	var artifact Artifact
	if err := gob.NewDecoder(f).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", types.ErrModelUnavailable, path, err)
	}
	if artifact.Model == nil {
		return nil, fmt.Errorf("%w: artifact %s has no model", types.ErrModelUnavailable, path)
	}
	return &artifact, nil
}

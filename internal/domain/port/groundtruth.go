package port

import (
	"context"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

// GroundTruthSource looks up the manually confirmed windows for one recording.
// A recording with no saved trims yields an empty slice, not an error.
type GroundTruthSource interface {
	Windows(ctx context.Context, stem string) ([]entity.ManualWindow, error)
}

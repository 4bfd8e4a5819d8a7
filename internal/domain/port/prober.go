package port

import (
	"context"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

type VideoProber interface {
	Probe(ctx context.Context, path string) (*entity.Video, error)
}

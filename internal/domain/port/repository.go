package port

import (
	"context"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

// CatalogRepository persists imported recordings and their reviewed segments.
type CatalogRepository interface {
	Init(ctx context.Context) error
	UpsertRecording(ctx context.Context, filename string) (int64, error)
	FindRecording(ctx context.Context, filename string) (*entity.Recording, error)
	InsertSegment(ctx context.Context, seg *entity.Segment) error
	// ListSegments returns segments whose parent recording was imported on
	// the given YYYY-MM-DD date, or all segments when importDate is empty.
	ListSegments(ctx context.Context, importDate string) ([]entity.Segment, error)
	Close() error
}

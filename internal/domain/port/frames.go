package port

import (
	"context"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

// Frame is one grayscale frame from the analysis stream. Index is the frame's
// position in the original video, so Time = Index / FPS even when the stream
// retains only every Nth frame.
type Frame struct {
	Index  int
	Time   float64
	Width  int
	Height int
	Pixels []byte
}

// FrameStream yields retained analysis frames in order. Next returns io.EOF
// once the underlying decoder is exhausted.
type FrameStream interface {
	Next() (*Frame, error)
	Close() error
}

// FrameSource opens a grayscale analysis stream over a video, scaled to
// analysisWidth and retaining every stride-th frame.
type FrameSource interface {
	Open(ctx context.Context, video *entity.Video, analysisWidth, stride int) (FrameStream, error)
}

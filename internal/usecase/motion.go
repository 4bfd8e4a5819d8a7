package usecase

import (
	"errors"
	"fmt"
	"io"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
	"github.com/swinglab/swinglab-detection-service/internal/domain/port"
)

// BuildMotionSeries drains a frame stream and scores motion between each pair
// of consecutive retained frames. The first retained frame has no predecessor
// and yields no sample, so a stream of fewer than two frames produces an
// empty series. The stream owns truncation: it reports io.EOF after a
// mid-stream decode failure and the series keeps whatever was collected.
func BuildMotionSeries(stream port.FrameStream, estimator port.FlowEstimator) (entity.MotionSeries, error) {
	var series entity.MotionSeries
	var prev *port.Frame

	for {
		frame, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return series, nil
		}
		if err != nil {
			return series, fmt.Errorf("read frame: %w", err)
		}

		if prev != nil {
			field, err := estimator.Estimate(prev, frame)
			if err != nil {
				return series, fmt.Errorf("estimate flow at frame %d: %w", frame.Index, err)
			}
			series = append(series, entity.MotionSample{
				Time:      frame.Time,
				Magnitude: field.MeanMagnitude(),
			})
		}
		prev = frame
	}
}

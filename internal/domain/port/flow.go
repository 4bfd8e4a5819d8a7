package port

import "math"

// FlowVector is one block's estimated displacement in pixels.
type FlowVector struct {
	DX float64
	DY float64
}

// FlowField is the dense motion estimate between two consecutive analysis
// frames, one vector per block.
type FlowField struct {
	Vectors []FlowVector
}

// MeanMagnitude averages the Euclidean magnitude over all vectors. An empty
// field averages to zero.
func (f *FlowField) MeanMagnitude() float64 {
	if len(f.Vectors) == 0 {
		return 0
	}
	var sum float64
	for _, v := range f.Vectors {
		sum += math.Hypot(v.DX, v.DY)
	}
	return sum / float64(len(f.Vectors))
}

// FlowEstimator computes dense motion between two frames of equal dimensions.
type FlowEstimator interface {
	Estimate(prev, curr *Frame) (*FlowField, error)
}

package entity

// MotionSample is one point of the motion-energy series: the mean optical-flow
// magnitude between a retained frame and its predecessor, stamped with the
// retained frame's time.
type MotionSample struct {
	Time      float64
	Magnitude float64
}

// MotionSeries is ordered by strictly increasing Time.
type MotionSeries []MotionSample

// Interval returns the sampling interval in seconds, derived from the first
// two samples. Zero when the series has fewer than two points.
func (s MotionSeries) Interval() float64 {
	if len(s) < 2 {
		return 0
	}
	return s[1].Time - s[0].Time
}

// Magnitudes copies out the magnitude column.
func (s MotionSeries) Magnitudes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Magnitude
	}
	return out
}

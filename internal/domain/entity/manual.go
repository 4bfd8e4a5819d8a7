package entity

// ManualWindow is a human-confirmed interval bounding one true action, sourced
// from previously saved trims. Used only for evaluation, never for detection.
type ManualWindow struct {
	Start float64
	End   float64
}

// Contains reports whether t falls inside the window, boundaries inclusive.
func (m ManualWindow) Contains(t float64) bool {
	return t >= m.Start && t <= m.End
}

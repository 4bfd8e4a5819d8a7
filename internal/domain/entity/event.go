package entity

import "fmt"

// Event is a detected impact timestamp in seconds. Events returned by one
// detection run are unique, strictly increasing and separated by at least the
// configured minimum separation.
type Event struct {
	Time float64
}

// Window is the extraction interval derived from an Event. Start is clamped at
// zero; the tail is never clamped against the video end, so a copy-mode cut
// may yield a shorter clip near end-of-file.
type Window struct {
	Start    float64
	Duration float64
}

// NewWindow derives the clip window for an event: leadIn seconds before the
// impact, leadOut after.
func NewWindow(ev Event, leadIn, leadOut float64) Window {
	start := ev.Time - leadIn
	if start < 0 {
		start = 0
	}
	return Window{Start: start, Duration: leadIn + leadOut}
}

// ClipName renders the output naming convention
// {stem}_{index:02d}_{start:.1f}s.mp4 with a 1-based, time-ordered index.
func (w Window) ClipName(stem string, index int) string {
	return fmt.Sprintf("%s_%02d_%.1fs.mp4", stem, index, w.Start)
}

// Clip records one successfully cut output file and the interval it covers.
// End is the requested bound; a copy-mode cut may deliver less when the
// window runs past end-of-file.
type Clip struct {
	Name  string
	Start float64
	End   float64
	Event float64
}

// ClipNames lists just the file names, for status messages and summaries.
func ClipNames(clips []Clip) []string {
	out := make([]string, 0, len(clips))
	for _, c := range clips {
		out = append(out, c.Name)
	}
	return out
}

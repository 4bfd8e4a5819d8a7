package entity

// Classification partitions one video's detected events against its manual
// windows. An event is correct when it lands inside any window (boundaries
// inclusive) and spurious otherwise; a window with no event inside is missed.
type Classification struct {
	Correct  []Event
	Spurious []Event
	Missed   []ManualWindow
}

// VideoReport pairs one video's stem with its classification.
type VideoReport struct {
	Stem           string
	Classification Classification
}

// BatchReport accumulates per-video classifications and corpus-wide totals.
type BatchReport struct {
	Videos []VideoReport

	TotalCorrect  int
	TotalSpurious int
	TotalMissed   int
}

func (r *BatchReport) Add(stem string, c Classification) {
	r.Videos = append(r.Videos, VideoReport{Stem: stem, Classification: c})
	r.TotalCorrect += len(c.Correct)
	r.TotalSpurious += len(c.Spurious)
	r.TotalMissed += len(c.Missed)
}

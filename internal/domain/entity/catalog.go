package entity

import "time"

// Recording is one imported source video in the catalog.
type Recording struct {
	ID         int64
	Filename   string
	ImportedAt time.Time
}

// Segment is one reviewed interval of a recording, bucketed by the reviewer.
type Segment struct {
	ID          int64
	RecordingID int64
	Filename    string
	StartSec    float64
	EndSec      float64
	Bucket      string
	Notes       string
	CreatedAt   time.Time
}

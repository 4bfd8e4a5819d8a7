// Package evaluate scores detected events against manually confirmed windows.
// It is purely diagnostic: nothing downstream changes based on the result.
package evaluate

import (
	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

// Classify partitions events for one video. An event inside any window
// (boundaries inclusive) is correct, otherwise spurious. A window containing
// no event is missed.
func Classify(events []entity.Event, windows []entity.ManualWindow) entity.Classification {
	var c entity.Classification
	for _, ev := range events {
		if insideAny(ev, windows) {
			c.Correct = append(c.Correct, ev)
		} else {
			c.Spurious = append(c.Spurious, ev)
		}
	}
	for _, w := range windows {
		if !covered(w, events) {
			c.Missed = append(c.Missed, w)
		}
	}
	return c
}

func insideAny(ev entity.Event, windows []entity.ManualWindow) bool {
	for _, w := range windows {
		if w.Contains(ev.Time) {
			return true
		}
	}
	return false
}

func covered(w entity.ManualWindow, events []entity.Event) bool {
	for _, ev := range events {
		if w.Contains(ev.Time) {
			return true
		}
	}
	return false
}

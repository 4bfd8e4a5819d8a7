// Package flow estimates dense motion between grayscale frames with
// block matching, standing in for a full optical-flow implementation.
// The mean vector magnitude is what the pipeline consumes, so per-block
// displacement at analysis resolution is plenty of precision.
package flow

import (
	"fmt"

	"github.com/swinglab/swinglab-detection-service/internal/domain/port"
)

const (
	DefaultBlockSize    = 16
	DefaultSearchRadius = 7
)

// BlockMatcher finds, for each full block of the previous frame, the
// displacement within the search radius that minimizes the sum of absolute
// differences against the current frame. Ties keep the smaller displacement,
// so identical frames produce a zero field.
type BlockMatcher struct {
	blockSize    int
	searchRadius int
}

func NewBlockMatcher(blockSize, searchRadius int) *BlockMatcher {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if searchRadius <= 0 {
		searchRadius = DefaultSearchRadius
	}
	return &BlockMatcher{blockSize: blockSize, searchRadius: searchRadius}
}

func (m *BlockMatcher) Estimate(prev, curr *port.Frame) (*port.FlowField, error) {
	if prev == nil || curr == nil {
		return nil, fmt.Errorf("estimate flow: nil frame")
	}
	if prev.Width != curr.Width || prev.Height != curr.Height {
		return nil, fmt.Errorf("estimate flow: frame size mismatch %dx%d vs %dx%d",
			prev.Width, prev.Height, curr.Width, curr.Height)
	}
	if len(prev.Pixels) != prev.Width*prev.Height || len(curr.Pixels) != curr.Width*curr.Height {
		return nil, fmt.Errorf("estimate flow: pixel buffer does not match frame size")
	}

	b := m.blockSize
	nbx := prev.Width / b
	nby := prev.Height / b
	field := &port.FlowField{Vectors: make([]port.FlowVector, 0, nbx*nby)}
	for by := 0; by < nby; by++ {
		for bx := 0; bx < nbx; bx++ {
			dx, dy := m.matchBlock(prev, curr, bx*b, by*b)
			field.Vectors = append(field.Vectors, port.FlowVector{DX: float64(dx), DY: float64(dy)})
		}
	}
	return field, nil
}

// matchBlock exhaustively scans every candidate displacement that keeps the
// block inside the frame. The zero displacement is seeded as the incumbent
// and only a strictly lower cost replaces it.
func (m *BlockMatcher) matchBlock(prev, curr *port.Frame, x0, y0 int) (int, int) {
	b := m.blockSize
	best := sad(prev, curr, x0, y0, 0, 0, b)
	bestDX, bestDY := 0, 0
	for dy := -m.searchRadius; dy <= m.searchRadius; dy++ {
		ty := y0 + dy
		if ty < 0 || ty+b > curr.Height {
			continue
		}
		for dx := -m.searchRadius; dx <= m.searchRadius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			tx := x0 + dx
			if tx < 0 || tx+b > curr.Width {
				continue
			}
			cost := sad(prev, curr, x0, y0, dx, dy, b)
			if cost < best {
				best = cost
				bestDX, bestDY = dx, dy
			}
		}
	}
	return bestDX, bestDY
}

// sad sums absolute pixel differences between the prev block at (x0, y0) and
// the curr block displaced by (dx, dy). Callers guarantee both stay in
// bounds.
func sad(prev, curr *port.Frame, x0, y0, dx, dy, b int) int {
	var sum int
	for row := 0; row < b; row++ {
		po := (y0+row)*prev.Width + x0
		co := (y0+dy+row)*curr.Width + x0 + dx
		p := prev.Pixels[po : po+b]
		c := curr.Pixels[co : co+b]
		for i := 0; i < b; i++ {
			d := int(p[i]) - int(c[i])
			if d < 0 {
				d = -d
			}
			sum += d
		}
	}
	return sum
}

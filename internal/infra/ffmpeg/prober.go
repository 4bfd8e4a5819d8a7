package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/swinglab/swinglab-detection-service/internal/domain/entity"
)

// Prober reads stream metadata with ffprobe. A video that cannot be probed,
// or that reports no usable frame rate, fails here before any decoding work
// is spent on it.
type Prober struct {
	ffprobePath string
	logger      *zap.Logger
}

func NewProber(ffprobePath string, logger *zap.Logger) *Prober {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Prober{ffprobePath: ffprobePath, logger: logger}
}

func (p *Prober) Probe(ctx context.Context, path string) (*entity.Video, error) {
	cmd := exec.CommandContext(ctx, p.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	video, err := parseProbe(output, path)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("probed video",
		zap.String("path", path),
		zap.Float64("fps", video.FPS),
		zap.Int("frames", video.FrameCount),
		zap.Float64("duration", video.Duration),
	)
	return video, nil
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	AvgFrameRate string `json:"avg_frame_rate"`
	RFrameRate   string `json:"r_frame_rate"`
	NBFrames     string `json:"nb_frames"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

func parseProbe(data []byte, path string) (*entity.Video, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse ffprobe output for %s: %w", path, err)
	}

	var stream *probeStream
	for i := range out.Streams {
		if out.Streams[i].CodecType == "video" {
			stream = &out.Streams[i]
			break
		}
	}
	if stream == nil {
		return nil, fmt.Errorf("%s has no video stream", path)
	}

	fps, err := ParseFrameRate(stream.AvgFrameRate)
	if err != nil || fps <= 0 {
		fps, err = ParseFrameRate(stream.RFrameRate)
	}
	if err != nil {
		return nil, fmt.Errorf("frame rate of %s: %w", path, err)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("%s reports zero frame rate", path)
	}

	video := &entity.Video{
		Path:   path,
		Width:  stream.Width,
		Height: stream.Height,
		FPS:    fps,
	}

	// Duration is frame count over rate when the container reports frames.
	// Some containers only carry a format duration, so fall back to that and
	// derive the count instead.
	if n, err := strconv.Atoi(stream.NBFrames); err == nil && n > 0 {
		video.FrameCount = n
		video.Duration = float64(n) / fps
	} else if d, err := strconv.ParseFloat(strings.TrimSpace(out.Format.Duration), 64); err == nil && d > 0 {
		video.Duration = d
		video.FrameCount = int(d * fps)
	} else {
		return nil, fmt.Errorf("%s reports no duration", path)
	}

	return video, nil
}

// ParseFrameRate converts ffprobe's fraction notation ("30000/1001") or a
// plain number into frames per second.
func ParseFrameRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty frame rate")
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil {
			return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
		}
		if d == 0 {
			return 0, nil
		}
		return n / d, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", s, err)
	}
	return v, nil
}

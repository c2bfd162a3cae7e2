package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mikel-p-h/PFG/internal/domain/port"
)

const (
	fallbackFPS     = 30.0
	targetSampleFPS = 10
)

// Sampler shells out to ffmpeg/ffprobe to decode a video and keep roughly
// ten frames per second of source, re-encoded as jpg stills. A source
// below 10 fps keeps every frame; sampling never upsamples.
type Sampler struct {
	logger *zap.Logger
}

func NewSampler(logger *zap.Logger) *Sampler {
	return &Sampler{logger: logger}
}

func (s *Sampler) SampleFrames(ctx context.Context, videoPath string, outputDir string) (*port.VideoSampleResult, error) {
	fps, err := s.probeFPS(ctx, videoPath)
	if err != nil {
		s.logger.Warn("could not probe frame rate, using fallback",
			zap.String("video", videoPath), zap.Error(err))
		fps = 0
	}
	if fps <= 0 {
		fps = fallbackFPS
	}

	interval := sampleInterval(fps)

	framePattern := filepath.Join(outputDir, "sample_%08d.jpg")
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf(`select=not(mod(n\,%d))`, interval),
		"-vsync", "vfr",
		"-q:v", "2",
		"-y",
		framePattern,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg error: %w, output: %s", err, string(output))
	}

	frames, err := filepath.Glob(filepath.Join(outputDir, "sample_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("glob sampled frames: %w", err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames sampled from video")
	}
	sort.Strings(frames)

	s.logger.Info("video sampled",
		zap.String("video", videoPath),
		zap.Float64("fps", fps),
		zap.Int("interval", interval),
		zap.Int("count", len(frames)),
	)

	return &port.VideoSampleResult{
		FramePaths: frames,
		FPS:        fps,
		Interval:   interval,
	}, nil
}

// sampleInterval keeps every interval-th decoded frame, targeting about
// ten sampled frames per second of source without ever upsampling.
func sampleInterval(fps float64) int {
	if fps < targetSampleFPS {
		return 1
	}
	return int(fps / targetSampleFPS)
}

// probeFPS reads the container frame rate, reported by ffprobe as a
// rational like "25/1".
func (s *Sampler) probeFPS(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	return parseRate(strings.TrimSpace(string(output)))
}

func parseRate(rate string) (float64, error) {
	num, den, found := strings.Cut(rate, "/")
	if !found {
		return strconv.ParseFloat(rate, 64)
	}

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", rate, err)
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, fmt.Errorf("parse frame rate %q: %w", rate, err)
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}

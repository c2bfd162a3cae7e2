package port

import "context"

type VideoSampleResult struct {
	// FramePaths are the sampled still images in temporal order.
	FramePaths []string
	FPS        float64
	Interval   int
}

// VideoSampler decodes a video and keeps roughly ten frames per second of
// source, re-encoded as still images.
type VideoSampler interface {
	SampleFrames(ctx context.Context, videoPath string, outputDir string) (*VideoSampleResult, error)
}

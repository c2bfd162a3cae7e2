package media

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mikel-p-h/PFG/internal/domain/port"
)

// DecodedFrame is one frame produced from a media unit: the still payload,
// its extension (with leading dot), and the sidecar annotation when the
// source image had one. Video-derived frames never carry an annotation.
type DecodedFrame struct {
	Payload    []byte
	Ext        string
	Annotation *string
}

// EmitFunc receives decoded frames one at a time, in source order.
type EmitFunc func(ctx context.Context, frame DecodedFrame) error

// Source streams decoded frames into emit exactly once; it is not
// restartable.
type Source func(ctx context.Context, emit EmitFunc) error

// Decoder turns uploaded media archives into ordered frame streams. Still
// images yield one frame each; videos are sampled down to roughly ten
// frames per second of source through the VideoSampler.
type Decoder struct {
	sampler port.VideoSampler
	logger  *zap.Logger
}

func NewDecoder(sampler port.VideoSampler, logger *zap.Logger) *Decoder {
	return &Decoder{sampler: sampler, logger: logger}
}

// ArchiveSource extracts the archive under workDir and returns a
// single-pass Source over its media files. Files are visited in lexical
// order within each directory; unrecognized extensions are skipped.
func (d *Decoder) ArchiveSource(archivePath string, workDir string) Source {
	return func(ctx context.Context, emit EmitFunc) error {
		extractDir := filepath.Join(workDir, "extracted")
		if err := os.MkdirAll(extractDir, 0o755); err != nil {
			return fmt.Errorf("create extraction dir: %w", err)
		}
		if err := ExtractArchive(archivePath, extractDir); err != nil {
			return err
		}

		videoSeq := 0
		return filepath.WalkDir(extractDir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			switch Classify(entry.Name()) {
			case KindStill:
				return d.emitStill(ctx, path, emit)
			case KindVideo:
				videoSeq++
				sampleDir := filepath.Join(workDir, fmt.Sprintf("sampled_%03d", videoSeq))
				return d.emitVideo(ctx, path, sampleDir, emit)
			default:
				return nil
			}
		})
	}
}

func (d *Decoder) emitStill(ctx context.Context, path string, emit EmitFunc) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image %s: %w", path, err)
	}

	frame := DecodedFrame{
		Payload: payload,
		Ext:     strings.ToLower(filepath.Ext(path)),
	}

	sidecar := strings.TrimSuffix(path, filepath.Ext(path)) + ".txt"
	if data, err := os.ReadFile(sidecar); err == nil {
		text := string(data)
		frame.Annotation = &text
	}

	return emit(ctx, frame)
}

func (d *Decoder) emitVideo(ctx context.Context, path string, sampleDir string, emit EmitFunc) error {
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("create sample dir: %w", err)
	}
	defer os.RemoveAll(sampleDir)

	result, err := d.sampler.SampleFrames(ctx, path, sampleDir)
	if err != nil {
		return fmt.Errorf("sample video %s: %w", filepath.Base(path), err)
	}

	d.logger.Info("video decoded",
		zap.String("video", filepath.Base(path)),
		zap.Int("sampled_frames", len(result.FramePaths)),
	)

	for _, framePath := range result.FramePaths {
		payload, err := os.ReadFile(framePath)
		if err != nil {
			return fmt.Errorf("read sampled frame: %w", err)
		}
		if err := emit(ctx, DecodedFrame{Payload: payload, Ext: ".jpg"}); err != nil {
			return err
		}
	}
	return nil
}

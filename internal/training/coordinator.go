package training

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
	"github.com/mikel-p-h/PFG/internal/domain/port"
)

// Trainer is the remote round trip, abstracted for tests.
type Trainer interface {
	TrainPredict(ctx context.Context, archivePath string, hp entity.Hyperparams) ([]Prediction, error)
}

// Coordinator archives an assembled bundle, runs the remote train/predict
// round trip, and merges the returned predictions back into the catalog
// as drafts.
type Coordinator struct {
	frames  port.FrameRepository
	trainer Trainer
	logger  *zap.Logger
}

func NewCoordinator(frames port.FrameRepository, trainer Trainer, logger *zap.Logger) *Coordinator {
	return &Coordinator{frames: frames, trainer: trainer, logger: logger}
}

// Run zips bundleRoot into workDir, calls the trainer, and writes each
// prediction onto its matching frame. The finished flag is never touched,
// so merged predictions stay drafts pending human review. Predictions for
// unknown image names are skipped silently. Merge-back commits per frame:
// a failure partway keeps the updates already applied, which is safe
// because re-running the round trip overwrites them.
func (c *Coordinator) Run(ctx context.Context, projectID uuid.UUID, bundleRoot string, workDir string, hp entity.Hyperparams) (int, error) {
	archivePath := filepath.Join(workDir, "dataset.zip")
	if err := ArchiveBundle(ctx, bundleRoot, archivePath); err != nil {
		return 0, err
	}

	predictions, err := c.trainer.TrainPredict(ctx, archivePath, hp)
	if err != nil {
		return 0, err
	}

	merged := 0
	for _, pred := range predictions {
		annotation := formatPrediction(pred.Labels)
		matched, err := c.frames.SetAnnotationByName(ctx, projectID, pred.Image, annotation)
		if err != nil {
			return merged, err
		}
		if !matched {
			c.logger.Warn("prediction for unknown frame ignored",
				zap.String("project_id", projectID.String()),
				zap.String("image", pred.Image),
			)
			continue
		}
		merged++
	}

	c.logger.Info("predictions merged back",
		zap.String("project_id", projectID.String()),
		zap.Int("merged", merged),
		zap.Int("returned", len(predictions)),
	)
	return merged, nil
}

// formatPrediction renders tuples one per line, fields space-separated.
// An empty prediction clears the annotation rather than storing "".
func formatPrediction(labels [][]float64) *string {
	lines := make([]string, 0, len(labels))
	for _, tuple := range labels {
		fields := make([]string, len(tuple))
		for i, v := range tuple {
			fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	if len(lines) == 0 {
		return nil
	}
	text := strings.Join(lines, "\n")
	return &text
}

package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
	"github.com/mikel-p-h/PFG/internal/domain/fault"
	"github.com/mikel-p-h/PFG/internal/domain/port"
)

const (
	SplitTrain   = "train"
	SplitVal     = "val"
	SplitPredict = "predict"

	// valFraction is the share of finished frames held out for
	// validation; the remainder trains.
	valFraction = 0.15

	// minFinished is the smallest finished set a few-shot run accepts.
	minFinished = 5
)

// Bundle is the assembled on-disk dataset: images and labels per split
// plus the manifest at the root. It is ephemeral; callers own Root and
// remove it when the request completes.
type Bundle struct {
	Root         string
	TrainCount   int
	ValCount     int
	PredictCount int
}

// Assembler builds training bundles from the frame catalog. It only reads
// persisted state.
type Assembler struct {
	projects port.ProjectRepository
	frames   port.FrameRepository
	logger   *zap.Logger
}

func NewAssembler(projects port.ProjectRepository, frames port.FrameRepository, logger *zap.Logger) *Assembler {
	return &Assembler{projects: projects, frames: frames, logger: logger}
}

// Assemble lays out the train/val/predict bundle for projectID under root.
// Finished frames are split 85/15 into train/val; unfinished frames become
// the predict partition verbatim.
func (a *Assembler) Assemble(ctx context.Context, projectID uuid.UUID, root string) (*Bundle, error) {
	project, err := a.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	finished := true
	finishedFrames, err := a.frames.ListByProject(ctx, projectID, port.FrameFilter{Finished: &finished})
	if err != nil {
		return nil, err
	}
	if len(finishedFrames) < minFinished {
		return nil, fault.Errorf(fault.InsufficientData,
			"not enough finished frames, just (%d provided)", len(finishedFrames))
	}

	unfinished := false
	predictFrames, err := a.frames.ListByProject(ctx, projectID, port.FrameFilter{Finished: &unfinished})
	if err != nil {
		return nil, err
	}

	for _, split := range []string{SplitTrain, SplitVal, SplitPredict} {
		if err := os.MkdirAll(filepath.Join(root, "images", split), 0o755); err != nil {
			return nil, fmt.Errorf("create bundle dirs: %w", err)
		}
	}
	for _, split := range []string{SplitTrain, SplitVal} {
		if err := os.MkdirAll(filepath.Join(root, "labels", split), 0o755); err != nil {
			return nil, fmt.Errorf("create bundle dirs: %w", err)
		}
	}

	train, val := SplitTrainVal(finishedFrames, valFraction)

	if err := a.writeSplit(root, SplitTrain, train, true); err != nil {
		return nil, err
	}
	if err := a.writeSplit(root, SplitVal, val, true); err != nil {
		return nil, err
	}
	if err := a.writeSplit(root, SplitPredict, predictFrames, false); err != nil {
		return nil, err
	}

	manifest := NewManifest(project.Labels)
	if err := manifest.WriteFile(filepath.Join(root, "data.yaml")); err != nil {
		return nil, err
	}

	a.logger.Info("dataset assembled",
		zap.String("project_id", projectID.String()),
		zap.Int("train", len(train)),
		zap.Int("val", len(val)),
		zap.Int("predict", len(predictFrames)),
	)

	return &Bundle{
		Root:         root,
		TrainCount:   len(train),
		ValCount:     len(val),
		PredictCount: len(predictFrames),
	}, nil
}

// writeSplit writes the payloads and, for labeled splits, one label file
// per image. A finished frame without annotation still gets an empty
// label file: it is a valid negative sample.
func (a *Assembler) writeSplit(root, split string, frames []*entity.Frame, labeled bool) error {
	for _, f := range frames {
		imgPath := filepath.Join(root, "images", split, f.Name)
		if err := os.WriteFile(imgPath, f.Payload, 0o644); err != nil {
			return fmt.Errorf("write %s image %s: %w", split, f.Name, err)
		}

		if !labeled {
			continue
		}
		labelPath := filepath.Join(root, "labels", split, f.BaseName()+".txt")
		if err := os.WriteFile(labelPath, []byte(f.AnnotationText()), 0o644); err != nil {
			return fmt.Errorf("write %s label %s: %w", split, f.Name, err)
		}
	}
	return nil
}

package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
	"github.com/mikel-p-h/PFG/internal/domain/fault"
	"github.com/mikel-p-h/PFG/internal/domain/port"
)

type stubProjectRepo struct {
	project *entity.Project
}

func (s *stubProjectRepo) Create(context.Context, *entity.Project) error { return nil }

func (s *stubProjectRepo) Get(_ context.Context, id uuid.UUID) (*entity.Project, error) {
	if s.project == nil || s.project.ID != id {
		return nil, fault.Errorf(fault.NotFound, "project %s not found", id)
	}
	return s.project, nil
}

func (s *stubProjectRepo) Rename(context.Context, uuid.UUID, string) error { return nil }

func (s *stubProjectRepo) UpdateLabels(context.Context, uuid.UUID, []string, []string) error {
	return nil
}

func (s *stubProjectRepo) UpdateStatus(context.Context, uuid.UUID, entity.ProjectStatus) error {
	return nil
}

func (s *stubProjectRepo) Delete(context.Context, uuid.UUID) error { return nil }

type stubFrameRepo struct {
	frames []*entity.Frame
}

func (s *stubFrameRepo) NewBatch(context.Context, uuid.UUID) (port.FrameBatch, error) {
	return nil, fault.New(fault.Storage, "not supported")
}

func (s *stubFrameRepo) Get(context.Context, int64) (*entity.Frame, error) {
	return nil, fault.New(fault.NotFound, "not supported")
}

func (s *stubFrameRepo) GetByNumber(context.Context, uuid.UUID, int) (*entity.Frame, error) {
	return nil, fault.New(fault.NotFound, "not supported")
}

func (s *stubFrameRepo) ListByProject(_ context.Context, projectID uuid.UUID, filter port.FrameFilter) ([]*entity.Frame, error) {
	var out []*entity.Frame
	for _, f := range s.frames {
		if f.ProjectID != projectID {
			continue
		}
		if filter.Finished != nil && f.Finished != *filter.Finished {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *stubFrameRepo) CountByProject(_ context.Context, projectID uuid.UUID) (int, error) {
	return len(s.frames), nil
}

func (s *stubFrameRepo) UpdateAnnotation(context.Context, int64, *string, bool) error {
	return nil
}

func (s *stubFrameRepo) SetAnnotationByName(context.Context, uuid.UUID, string, *string) (bool, error) {
	return false, nil
}

func testProject(id uuid.UUID) *entity.Project {
	return &entity.Project{
		ID:     id,
		Name:   "demo",
		Owner:  "owner@example.com",
		Labels: []string{"cat", "dog"},
		Colors: []string{"#ff0000", "#00ff00"},
	}
}

func finishedFrame(projectID uuid.UUID, number int, annotation string) *entity.Frame {
	f := &entity.Frame{
		ProjectID: projectID,
		Name:      entity.FrameName(number, ".jpg"),
		Payload:   []byte(fmt.Sprintf("payload-%d", number)),
		Finished:  true,
		Number:    number,
	}
	if annotation != "" {
		f.Annotation = &annotation
	}
	return f
}

func TestAssembleRejectsTooFewFinished(t *testing.T) {
	projectID := uuid.New()
	repo := &stubFrameRepo{}
	for i := 1; i <= 4; i++ {
		repo.frames = append(repo.frames, finishedFrame(projectID, i, "0 0.5 0.5 0.2 0.2"))
	}
	assembler := NewAssembler(&stubProjectRepo{project: testProject(projectID)}, repo, zap.NewNop())

	_, err := assembler.Assemble(context.Background(), projectID, t.TempDir())
	require.Error(t, err)
	assert.Equal(t, fault.InsufficientData, fault.KindOf(err))
	assert.Contains(t, err.Error(), "just (4 provided)")
}

func TestAssembleUnknownProject(t *testing.T) {
	assembler := NewAssembler(&stubProjectRepo{}, &stubFrameRepo{}, zap.NewNop())

	_, err := assembler.Assemble(context.Background(), uuid.New(), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, fault.NotFound, fault.KindOf(err))
}

func TestAssembleLayout(t *testing.T) {
	projectID := uuid.New()
	repo := &stubFrameRepo{}
	for i := 1; i <= 6; i++ {
		repo.frames = append(repo.frames, finishedFrame(projectID, i, "0 0.5 0.5 0.2 0.2"))
	}
	// a finished negative sample and two unfinished frames
	repo.frames = append(repo.frames, finishedFrame(projectID, 7, ""))
	repo.frames = append(repo.frames,
		&entity.Frame{ProjectID: projectID, Name: entity.FrameName(8, ".jpg"), Payload: []byte("p8"), Number: 8},
		&entity.Frame{ProjectID: projectID, Name: entity.FrameName(9, ".png"), Payload: []byte("p9"), Number: 9},
	)
	assembler := NewAssembler(&stubProjectRepo{project: testProject(projectID)}, repo, zap.NewNop())

	root := t.TempDir()
	bundle, err := assembler.Assemble(context.Background(), projectID, root)
	require.NoError(t, err)

	assert.Equal(t, 7, bundle.TrainCount+bundle.ValCount)
	assert.Equal(t, 2, bundle.PredictCount)

	// every finished frame has an image and a label in its partition
	for _, split := range []string{SplitTrain, SplitVal} {
		images, err := os.ReadDir(filepath.Join(root, "images", split))
		require.NoError(t, err)
		labels, err := os.ReadDir(filepath.Join(root, "labels", split))
		require.NoError(t, err)
		assert.Equal(t, len(images), len(labels), "one label file per %s image", split)
	}

	predictImages, err := os.ReadDir(filepath.Join(root, "images", SplitPredict))
	require.NoError(t, err)
	assert.Len(t, predictImages, 2)
	assert.NoDirExists(t, filepath.Join(root, "labels", SplitPredict))

	// the negative sample's label file exists and is empty
	negLabel := ""
	for _, split := range []string{SplitTrain, SplitVal} {
		path := filepath.Join(root, "labels", split, "frame_000007.txt")
		if data, err := os.ReadFile(path); err == nil {
			negLabel = split
			assert.Empty(t, data, "negative sample label file is empty")
		}
	}
	require.NotEmpty(t, negLabel, "negative sample must land in train or val")

	data, err := os.ReadFile(filepath.Join(root, "data.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "train: images/train")
	assert.Contains(t, string(data), "predict: images/predict")
	assert.Contains(t, string(data), "nc: 2")
	assert.Contains(t, string(data), "- cat")
	assert.Contains(t, string(data), "- dog")
}

func TestAssembleExactlyMinimumFinished(t *testing.T) {
	projectID := uuid.New()
	repo := &stubFrameRepo{}
	for i := 1; i <= 5; i++ {
		repo.frames = append(repo.frames, finishedFrame(projectID, i, "1 0.5 0.5 0.2 0.2"))
	}
	assembler := NewAssembler(&stubProjectRepo{project: testProject(projectID)}, repo, zap.NewNop())

	bundle, err := assembler.Assemble(context.Background(), projectID, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 5, bundle.TrainCount, "floor(0.15*5)=0 keeps everything in train")
	assert.Zero(t, bundle.ValCount)
	assert.Zero(t, bundle.PredictCount)
}

func TestManifestFieldOrder(t *testing.T) {
	m := NewManifest([]string{"cat"})
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "path: ./\ntrain: images/train\npredict: images/predict\nval: images/val\nnc: 1\nnames:\n    - cat\n", string(data))
}

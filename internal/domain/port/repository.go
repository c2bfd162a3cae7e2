package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
	UpdateLabels(ctx context.Context, id uuid.UUID, labels, colors []string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ProjectStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FrameFilter narrows ListByProject. Nil booleans mean "any"; Limit 0
// means no pagination.
type FrameFilter struct {
	Finished  *bool
	Synthetic *bool
	Offset    int
	Limit     int
}

type FrameRepository interface {
	// NewBatch opens a transaction scoped to one project. Frame numbers
	// allocated inside the batch come from the project's sequence row, so
	// concurrent batches for the same project serialize and numbers are
	// never reused.
	NewBatch(ctx context.Context, projectID uuid.UUID) (FrameBatch, error)

	Get(ctx context.Context, id int64) (*entity.Frame, error)
	GetByNumber(ctx context.Context, projectID uuid.UUID, number int) (*entity.Frame, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, filter FrameFilter) ([]*entity.Frame, error)
	CountByProject(ctx context.Context, projectID uuid.UUID) (int, error)

	// UpdateAnnotation overwrites both the annotation text (nil clears it)
	// and the finished flag.
	UpdateAnnotation(ctx context.Context, id int64, annotation *string, finished bool) error

	// SetAnnotationByName overwrites the annotation of the named frame
	// without touching the finished flag. Returns false when no frame with
	// that name exists in the project.
	SetAnnotationByName(ctx context.Context, projectID uuid.UUID, name string, annotation *string) (bool, error)
}

// FrameBatch is an all-or-nothing group of frame writes. Either Commit
// persists every inserted frame or Rollback discards them all.
type FrameBatch interface {
	NextNumber(ctx context.Context) (int, error)
	Insert(ctx context.Context, frame *entity.Frame) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

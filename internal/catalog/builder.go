package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
	"github.com/mikel-p-h/PFG/internal/domain/port"
	"github.com/mikel-p-h/PFG/internal/media"
)

// Builder turns a decoded frame stream into catalog records. Numbers come
// from the project's sequence one at a time, names are derived from the
// number, and the whole batch commits or rolls back together.
type Builder struct {
	frames port.FrameRepository
	logger *zap.Logger
}

func NewBuilder(frames port.FrameRepository, logger *zap.Logger) *Builder {
	return &Builder{frames: frames, logger: logger}
}

// Ingest consumes source once and persists every produced frame under
// projectID. Returns the number of frames added; on any error nothing is
// retained.
func (b *Builder) Ingest(ctx context.Context, projectID uuid.UUID, source media.Source) (int, error) {
	batch, err := b.frames.NewBatch(ctx, projectID)
	if err != nil {
		return 0, err
	}
	defer batch.Rollback(ctx)

	count := 0
	err = source(ctx, func(ctx context.Context, decoded media.DecodedFrame) error {
		number, err := batch.NextNumber(ctx)
		if err != nil {
			return err
		}

		frame := &entity.Frame{
			ProjectID: projectID,
			Name:      entity.FrameName(number, decoded.Ext),
			Payload:   decoded.Payload,
			Number:    number,
			CreatedAt: time.Now().UTC(),
		}
		// A sidecar annotation is imported verbatim but never marks the
		// frame finished; that takes an explicit human confirmation.
		if decoded.Annotation != nil && strings.TrimSpace(*decoded.Annotation) != "" {
			frame.Annotation = decoded.Annotation
		}

		if err := batch.Insert(ctx, frame); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := batch.Commit(ctx); err != nil {
		return 0, err
	}

	b.logger.Info("frames cataloged",
		zap.String("project_id", projectID.String()),
		zap.Int("count", count),
	)
	return count, nil
}

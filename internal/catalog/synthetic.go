package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
	"github.com/mikel-p-h/PFG/internal/domain/port"
	"github.com/mikel-p-h/PFG/internal/media"
)

// SyntheticUploader adds a single directly-uploaded image to the catalog,
// numbered by the same project sequence as ingested frames.
type SyntheticUploader struct {
	frames port.FrameRepository
}

func NewSyntheticUploader(frames port.FrameRepository) *SyntheticUploader {
	return &SyntheticUploader{frames: frames}
}

func (u *SyntheticUploader) Add(ctx context.Context, projectID uuid.UUID, payload []byte) (*entity.Frame, error) {
	ext, err := media.SniffImage(payload)
	if err != nil {
		return nil, err
	}

	batch, err := u.frames.NewBatch(ctx, projectID)
	if err != nil {
		return nil, err
	}
	defer batch.Rollback(ctx)

	number, err := batch.NextNumber(ctx)
	if err != nil {
		return nil, err
	}

	frame := &entity.Frame{
		ProjectID: projectID,
		Name:      entity.FrameName(number, ext),
		Payload:   payload,
		Synthetic: true,
		Number:    number,
		CreatedAt: time.Now().UTC(),
	}
	if err := batch.Insert(ctx, frame); err != nil {
		return nil, err
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, err
	}
	return frame, nil
}

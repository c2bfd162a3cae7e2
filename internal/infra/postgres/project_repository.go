package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
	"github.com/mikel-p-h/PFG/internal/domain/fault"
)

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, p *entity.Project) error {
	if err := entity.ValidateLabelColors(p.Labels, p.Colors); err != nil {
		return err
	}

	query := `
		INSERT INTO projects (id, name, owner, status, labels, colors, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Owner, string(p.Status), p.Labels, p.Colors, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fault.Wrap(fault.Storage, err, "insert project")
	}
	return nil
}

func (r *ProjectRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	query := `
		SELECT id, name, owner, status, labels, colors, created_at, updated_at
		FROM projects WHERE id=$1`

	p := &entity.Project{}
	var status string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Owner, &status, &p.Labels, &p.Colors, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.Errorf(fault.NotFound, "project %s not found", id)
	}
	if err != nil {
		return nil, fault.Wrap(fault.Storage, err, "find project by id")
	}
	p.Status = entity.ProjectStatus(status)
	return p, nil
}

func (r *ProjectRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET name=$2, updated_at=now() WHERE id=$1`, id, name)
	if err != nil {
		return fault.Wrap(fault.Storage, err, "rename project")
	}
	if tag.RowsAffected() == 0 {
		return fault.Errorf(fault.NotFound, "project %s not found", id)
	}
	return nil
}

func (r *ProjectRepository) UpdateLabels(ctx context.Context, id uuid.UUID, labels, colors []string) error {
	if err := entity.ValidateLabelColors(labels, colors); err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET labels=$2, colors=$3, updated_at=now() WHERE id=$1`,
		id, labels, colors)
	if err != nil {
		return fault.Wrap(fault.Storage, err, "update project labels")
	}
	if tag.RowsAffected() == 0 {
		return fault.Errorf(fault.NotFound, "project %s not found", id)
	}
	return nil
}

func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ProjectStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE projects SET status=$2, updated_at=now() WHERE id=$1`, id, string(status))
	if err != nil {
		return fault.Wrap(fault.Storage, err, "update project status")
	}
	if tag.RowsAffected() == 0 {
		return fault.Errorf(fault.NotFound, "project %s not found", id)
	}
	return nil
}

// Delete removes the project; frames cascade at the schema level.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id=$1`, id)
	if err != nil {
		return fault.Wrap(fault.Storage, err, "delete project")
	}
	if tag.RowsAffected() == 0 {
		return fault.Errorf(fault.NotFound, "project %s not found", id)
	}
	return nil
}

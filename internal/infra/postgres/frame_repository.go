package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mikel-p-h/PFG/internal/domain/entity"
	"github.com/mikel-p-h/PFG/internal/domain/fault"
	"github.com/mikel-p-h/PFG/internal/domain/port"
)

const uniqueViolation = "23505"

type FrameRepository struct {
	pool *pgxpool.Pool
}

func NewFrameRepository(pool *pgxpool.Pool) *FrameRepository {
	return &FrameRepository{pool: pool}
}

// frameBatch wraps one pgx transaction. NextNumber bumps the project's
// sequence row inside the transaction, so the row lock serializes
// concurrent ingests into the same project until Commit or Rollback.
type frameBatch struct {
	tx        pgx.Tx
	projectID uuid.UUID
	done      bool
}

func (r *FrameRepository) NewBatch(ctx context.Context, projectID uuid.UUID) (port.FrameBatch, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, err, "begin frame batch")
	}
	return &frameBatch{tx: tx, projectID: projectID}, nil
}

func (b *frameBatch) NextNumber(ctx context.Context) (int, error) {
	var number int
	err := b.tx.QueryRow(ctx,
		`UPDATE projects SET frame_seq = frame_seq + 1 WHERE id=$1 RETURNING frame_seq`,
		b.projectID,
	).Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fault.Errorf(fault.NotFound, "project %s not found", b.projectID)
	}
	if err != nil {
		return 0, fault.Wrap(fault.Storage, err, "allocate frame number")
	}
	return number, nil
}

func (b *frameBatch) Insert(ctx context.Context, f *entity.Frame) error {
	query := `
		INSERT INTO frames (project_id, name, payload, annotation, synthetic, finished, frame_number, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id`

	err := b.tx.QueryRow(ctx, query,
		f.ProjectID, f.Name, f.Payload, f.Annotation, f.Synthetic, f.Finished, f.Number, f.CreatedAt,
	).Scan(&f.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fault.Errorf(fault.Conflict,
				"frame number %d already exists in project %s", f.Number, f.ProjectID)
		}
		return fault.Wrap(fault.Storage, err, "insert frame")
	}
	return nil
}

func (b *frameBatch) Commit(ctx context.Context) error {
	if b.done {
		return nil
	}
	b.done = true
	if err := b.tx.Commit(ctx); err != nil {
		return fault.Wrap(fault.Storage, err, "commit frame batch")
	}
	return nil
}

func (b *frameBatch) Rollback(ctx context.Context) error {
	if b.done {
		return nil
	}
	b.done = true
	if err := b.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fault.Wrap(fault.Storage, err, "rollback frame batch")
	}
	return nil
}

const frameColumns = `id, project_id, name, payload, annotation, synthetic, finished, frame_number, created_at`

func scanFrame(row pgx.Row) (*entity.Frame, error) {
	f := &entity.Frame{}
	err := row.Scan(
		&f.ID, &f.ProjectID, &f.Name, &f.Payload, &f.Annotation,
		&f.Synthetic, &f.Finished, &f.Number, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FrameRepository) Get(ctx context.Context, id int64) (*entity.Frame, error) {
	f, err := scanFrame(r.pool.QueryRow(ctx,
		`SELECT `+frameColumns+` FROM frames WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.Errorf(fault.NotFound, "frame %d not found", id)
	}
	if err != nil {
		return nil, fault.Wrap(fault.Storage, err, "find frame by id")
	}
	return f, nil
}

func (r *FrameRepository) GetByNumber(ctx context.Context, projectID uuid.UUID, number int) (*entity.Frame, error) {
	f, err := scanFrame(r.pool.QueryRow(ctx,
		`SELECT `+frameColumns+` FROM frames WHERE project_id=$1 AND frame_number=$2`,
		projectID, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fault.Errorf(fault.NotFound, "frame %d not found in project %s", number, projectID)
	}
	if err != nil {
		return nil, fault.Wrap(fault.Storage, err, "find frame by number")
	}
	return f, nil
}

func (r *FrameRepository) ListByProject(ctx context.Context, projectID uuid.UUID, filter port.FrameFilter) ([]*entity.Frame, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + frameColumns + ` FROM frames WHERE project_id=$1`)
	args := []any{projectID}

	if filter.Finished != nil {
		args = append(args, *filter.Finished)
		fmt.Fprintf(&sb, " AND finished=$%d", len(args))
	}
	if filter.Synthetic != nil {
		args = append(args, *filter.Synthetic)
		fmt.Fprintf(&sb, " AND synthetic=$%d", len(args))
	}
	sb.WriteString(" ORDER BY frame_number")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fault.Wrap(fault.Storage, err, "list frames")
	}
	defer rows.Close()

	var frames []*entity.Frame
	for rows.Next() {
		f, err := scanFrame(rows)
		if err != nil {
			return nil, fault.Wrap(fault.Storage, err, "scan frame")
		}
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Wrap(fault.Storage, err, "list frames")
	}
	return frames, nil
}

func (r *FrameRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM frames WHERE project_id=$1`, projectID).Scan(&count)
	if err != nil {
		return 0, fault.Wrap(fault.Storage, err, "count frames")
	}
	return count, nil
}

func (r *FrameRepository) UpdateAnnotation(ctx context.Context, id int64, annotation *string, finished bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE frames SET annotation=$2, finished=$3 WHERE id=$1`,
		id, annotation, finished)
	if err != nil {
		return fault.Wrap(fault.Storage, err, "update annotation")
	}
	if tag.RowsAffected() == 0 {
		return fault.Errorf(fault.NotFound, "frame %d not found", id)
	}
	return nil
}

func (r *FrameRepository) SetAnnotationByName(ctx context.Context, projectID uuid.UUID, name string, annotation *string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE frames SET annotation=$3 WHERE project_id=$1 AND name=$2`,
		projectID, name, annotation)
	if err != nil {
		return false, fault.Wrap(fault.Storage, err, "set annotation by name")
	}
	return tag.RowsAffected() > 0, nil
}

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
)

var (
	_ repository.EventRepository       = (*eventRepo)(nil)
	_ repository.ActivityLogRepository = (*activityLogRepo)(nil)
)

const eventCols = `id, user_id, title, description, starts_at, ends_at, type, is_done, created_at`

type eventRepo struct {
	pool *pgxpool.Pool
}

func NewEventRepo(pool *pgxpool.Pool) *eventRepo {
	return &eventRepo{pool: pool}
}

func (r *eventRepo) Save(ctx context.Context, tx repository.Tx, e *model.Event) error {
	const q = `
INSERT INTO events (` + eventCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  title=$3, description=$4, starts_at=$5, ends_at=$6, type=$7, is_done=$8;`
	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.UserID, e.Title, e.Description, e.StartsAt, e.EndsAt, e.Type, e.IsDone, e.CreatedAt)
	return err
}

func (r *eventRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Event, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+eventCols+` FROM events WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanEvent(row)
}

func (r *eventRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Event, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+eventCols+` FROM events WHERE user_id=$1 ORDER BY starts_at ASC;`, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEvent)
}

func (r *eventRepo) ListUpcoming(ctx context.Context, tx repository.Tx, userID string, from time.Time, limit int) ([]*model.Event, error) {
	const q = `
SELECT ` + eventCols + `
  FROM events
 WHERE user_id=$1 AND starts_at >= $2 AND NOT is_done
 ORDER BY starts_at ASC
 LIMIT $3;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, from, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEvent)
}

func (r *eventRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM events WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanEvent(row scanner) (*model.Event, error) {
	e := &model.Event{}
	if err := row.Scan(&e.ID, &e.UserID, &e.Title, &e.Description, &e.StartsAt, &e.EndsAt,
		&e.Type, &e.IsDone, &e.CreatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	return e, nil
}

// --- activity logs ---

const activityCols = `id, user_id, action, details, ip, created_at`

type activityLogRepo struct {
	pool *pgxpool.Pool
}

func NewActivityLogRepo(pool *pgxpool.Pool) *activityLogRepo {
	return &activityLogRepo{pool: pool}
}

func (r *activityLogRepo) Save(ctx context.Context, tx repository.Tx, l *model.ActivityLog) error {
	const q = `INSERT INTO activity_logs (` + activityCols + `) VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := execSQL(ctx, r.pool, tx, q, l.ID, l.UserID, string(l.Action), l.Details, l.IP, l.CreatedAt)
	return err
}

func (r *activityLogRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.ActivityLog, int, error) {
	total, err := countRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM activity_logs;`)
	if err != nil {
		return nil, 0, err
	}
	const q = `SELECT ` + activityCols + ` FROM activity_logs ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	logs, err := collect(rows, scanActivityLog)
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func scanActivityLog(row scanner) (*model.ActivityLog, error) {
	l := &model.ActivityLog{}
	var action string
	if err := row.Scan(&l.ID, &l.UserID, &action, &l.Details, &l.IP, &l.CreatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	l.Action = model.ActivityAction(action)
	return l, nil
}

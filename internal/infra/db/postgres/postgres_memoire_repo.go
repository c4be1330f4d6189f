package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
)

var _ repository.MemoireRepository = (*memoireRepo)(nil)

const memoireCols = `id, student_id, coach_id, title, description, status, progress, current_step, due_date, created_at, updated_at`

type memoireRepo struct {
	pool *pgxpool.Pool
}

func NewMemoireRepo(pool *pgxpool.Pool) *memoireRepo {
	return &memoireRepo{pool: pool}
}

func (r *memoireRepo) Save(ctx context.Context, tx repository.Tx, m *model.Memoire) error {
	const q = `
INSERT INTO memoires (` + memoireCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  coach_id=$3, title=$4, description=$5, status=$6, progress=$7, current_step=$8, due_date=$9, updated_at=$11;`
	_, err := execSQL(ctx, r.pool, tx, q,
		m.ID, m.StudentID, m.CoachID, m.Title, m.Description, string(m.Status), m.Progress, m.CurrentStep, m.DueDate, m.CreatedAt, m.UpdatedAt)
	return err
}

func (r *memoireRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Memoire, error) {
	return r.queryOne(ctx, tx, `SELECT `+memoireCols+` FROM memoires WHERE id=$1`+forUpdate(tx)+`;`, id)
}

func (r *memoireRepo) FindByStudent(ctx context.Context, tx repository.Tx, studentID string) (*model.Memoire, error) {
	return r.queryOne(ctx, tx, `SELECT `+memoireCols+` FROM memoires WHERE student_id=$1`+forUpdate(tx)+`;`, studentID)
}

func (r *memoireRepo) ListByCoach(ctx context.Context, tx repository.Tx, coachID string) ([]*model.Memoire, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+memoireCols+` FROM memoires WHERE coach_id=$1 ORDER BY updated_at DESC;`, coachID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMemoire)
}

func (r *memoireRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Memoire, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+memoireCols+` FROM memoires ORDER BY updated_at DESC;`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMemoire)
}

func (r *memoireRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.Memoire, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanMemoire(row)
}

func scanMemoire(row scanner) (*model.Memoire, error) {
	m := &model.Memoire{}
	var status string
	if err := row.Scan(&m.ID, &m.StudentID, &m.CoachID, &m.Title, &m.Description, &status, &m.Progress,
		&m.CurrentStep, &m.DueDate, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	m.Status = model.MemoireStatus(status)
	return m, nil
}

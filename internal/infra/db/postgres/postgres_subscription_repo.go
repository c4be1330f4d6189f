package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
)

// Ensure subscriptionRepo implements repository.SubscriptionRepository
var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

const subCols = `id, user_id, pack_id, status, amount_paid, activated_at, created_at, updated_at`

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (` + subCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  status=$4, amount_paid=$5, activated_at=$6, updated_at=$8;`
	_, err := execSQL(ctx, r.pool, tx, q,
		s.ID, s.UserID, s.PackID, string(s.Status), s.AmountPaid, s.ActivatedAt, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	q := `SELECT ` + subCols + ` FROM subscriptions WHERE id=$1` + forUpdate(tx) + `;`
	return r.queryOne(ctx, tx, q, id)
}

func (r *subscriptionRepo) FindLatestPayable(ctx context.Context, tx repository.Tx, userID string) (*model.Subscription, error) {
	q := `
SELECT ` + subCols + `
  FROM subscriptions
 WHERE user_id=$1 AND status = ANY($2)
 ORDER BY created_at DESC
 LIMIT 1` + forUpdate(tx) + `;`
	return r.queryOne(ctx, tx, q, userID, statusStrings(model.PayableSubscriptionStatuses))
}

func (r *subscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	const q = `SELECT ` + subCols + ` FROM subscriptions WHERE user_id=$1 ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSub)
}

func (r *subscriptionRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Subscription, error) {
	const q = `SELECT ` + subCols + ` FROM subscriptions ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanSub)
}

func (r *subscriptionRepo) DeactivateLive(ctx context.Context, tx repository.Tx, userID, exceptID string) (int64, error) {
	const q = `
UPDATE subscriptions
   SET status='DEACTIVATED', updated_at=NOW()
 WHERE user_id=$1
   AND status <> ALL($2)
   AND ($3 = '' OR id::text <> $3);`
	tag, err := execSQL(ctx, r.pool, tx, q, userID, statusStrings(model.TerminalSubscriptionStatuses), exceptID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.SubscriptionStatus]int, error) {
	const q = `SELECT status, COUNT(*) FROM subscriptions GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.SubscriptionStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, mapReadErr(err)
		}
		counts[model.SubscriptionStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, mapReadErr(err)
	}
	return counts, nil
}

func (r *subscriptionRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.Subscription, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanSub(row)
}

func scanSub(row scanner) (*model.Subscription, error) {
	s := &model.Subscription{}
	var status string
	if err := row.Scan(&s.ID, &s.UserID, &s.PackID, &status, &s.AmountPaid, &s.ActivatedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	s.Status = model.SubscriptionStatus(status)
	return s, nil
}

func statusStrings(in []model.SubscriptionStatus) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

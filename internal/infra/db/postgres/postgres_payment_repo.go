package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
)

var _ repository.PaymentRepository = (*paymentRepo)(nil)

const paymentCols = `id, subscription_id, amount, method, reference, status, created_at`

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

// Save inserts a ledger row. Payments are never updated.
func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.Payment) error {
	const q = `INSERT INTO payments (` + paymentCols + `) VALUES ($1,$2,$3,$4,$5,$6,$7);`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.SubscriptionID, p.Amount, p.Method, p.Reference, string(p.Status), p.CreatedAt)
	return err
}

func (r *paymentRepo) ListBySubscription(ctx context.Context, tx repository.Tx, subscriptionID string) ([]*model.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE subscription_id=$1 ORDER BY created_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, subscriptionID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayment)
}

func (r *paymentRepo) ListBySubscriptions(ctx context.Context, tx repository.Tx, subscriptionIDs []string) ([]*model.Payment, error) {
	if len(subscriptionIDs) == 0 {
		return []*model.Payment{}, nil
	}
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE subscription_id = ANY($1::uuid[]) ORDER BY subscription_id, created_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, subscriptionIDs)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPayment)
}

func (r *paymentRepo) SumConfirmed(ctx context.Context, tx repository.Tx, subscriptionID string) (int64, error) {
	const q = `SELECT COALESCE(SUM(amount),0) FROM payments WHERE subscription_id=$1 AND status='CONFIRMED';`
	return r.scalar(ctx, tx, q, subscriptionID)
}

func (r *paymentRepo) TotalConfirmed(ctx context.Context, tx repository.Tx) (int64, error) {
	return r.scalar(ctx, tx, `SELECT COALESCE(SUM(amount),0) FROM payments WHERE status='CONFIRMED';`)
}

func (r *paymentRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.PaymentStatus) (int, error) {
	n, err := r.scalar(ctx, tx, `SELECT COUNT(*) FROM payments WHERE status=$1;`, string(status))
	return int(n), err
}

func (r *paymentRepo) scalar(ctx context.Context, tx repository.Tx, sql string, args ...any) (int64, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, mapReadErr(err)
	}
	return n, nil
}

func scanPayment(row scanner) (*model.Payment, error) {
	p := &model.Payment{}
	var status string
	if err := row.Scan(&p.ID, &p.SubscriptionID, &p.Amount, &p.Method, &p.Reference, &status, &p.CreatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	p.Status = model.PaymentStatus(status)
	return p, nil
}

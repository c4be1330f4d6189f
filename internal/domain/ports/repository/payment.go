package repository

import (
	"context"

	"cledumemoire/internal/domain/model"
)

// PaymentRepository is append-only: there is no update.
type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	ListBySubscription(ctx context.Context, tx Tx, subscriptionID string) ([]*model.Payment, error)
	// ListBySubscriptions returns the ledgers of several subscriptions in one
	// read, oldest first within each subscription.
	ListBySubscriptions(ctx context.Context, tx Tx, subscriptionIDs []string) ([]*model.Payment, error)
	SumConfirmed(ctx context.Context, tx Tx, subscriptionID string) (int64, error)

	// --- Statistics read-only methods ---
	TotalConfirmed(ctx context.Context, tx Tx) (int64, error)
	CountByStatus(ctx context.Context, tx Tx, status model.PaymentStatus) (int, error)
}

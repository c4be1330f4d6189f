package repository

import (
	"context"

	"cledumemoire/internal/domain/model"
)

// SubscriptionRepository is the port for pack subscriptions.
// Reads made with a transaction handle lock the returned rows.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)

	// FindLatestPayable returns the newest subscription of the user whose
	// status is PENDING, PARTIAL or DEACTIVATED.
	FindLatestPayable(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)

	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Subscription, error)

	// DeactivateLive moves every live subscription of the user except exceptID
	// to DEACTIVATED and returns how many rows changed. exceptID may be empty.
	DeactivateLive(ctx context.Context, tx Tx, userID, exceptID string) (int64, error)

	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int, error)
}

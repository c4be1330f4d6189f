package repository

import (
	"context"
	"time"

	"cledumemoire/internal/domain/model"
)

type EventRepository interface {
	Save(ctx context.Context, tx Tx, e *model.Event) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Event, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Event, error)
	ListUpcoming(ctx context.Context, tx Tx, userID string, from time.Time, limit int) ([]*model.Event, error)
	Delete(ctx context.Context, tx Tx, id string) error
}

type ActivityLogRepository interface {
	Save(ctx context.Context, tx Tx, l *model.ActivityLog) error
	// List returns one page, newest first, and the total row count.
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.ActivityLog, int, error)
}

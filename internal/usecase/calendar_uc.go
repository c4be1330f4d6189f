package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/logging"
)

const upcomingEventsLimit = 5

type EventInput struct {
	Title       string
	Description string
	Type        string
	StartsAt    time.Time
	EndsAt      *time.Time
}

// CalendarUseCase manages personal events. There are no reminders.
type CalendarUseCase interface {
	List(ctx context.Context, userID string) ([]*model.Event, error)
	Next(ctx context.Context, userID string) ([]*model.Event, error)
	Create(ctx context.Context, userID string, in EventInput) (*model.Event, error)
	Delete(ctx context.Context, userID, id string) error
	Toggle(ctx context.Context, userID, id string) (*model.Event, error)
}

var _ CalendarUseCase = (*calendarUC)(nil)

type calendarUC struct {
	events repository.EventRepository
	tx     repository.TransactionManager
	log    *zerolog.Logger
	now    func() time.Time
}

func NewCalendarUseCase(events repository.EventRepository, tx repository.TransactionManager, logger *zerolog.Logger) CalendarUseCase {
	return &calendarUC{events: events, tx: tx, log: logging.Component(loggerOrNop(logger), "CalendarUseCase"), now: time.Now}
}

func (c *calendarUC) List(ctx context.Context, userID string) ([]*model.Event, error) {
	list, err := c.events.ListByUser(ctx, repository.NoTX, userID)
	return list, logFailure(ctx, c.log, "list_events", err)
}

func (c *calendarUC) Next(ctx context.Context, userID string) ([]*model.Event, error) {
	list, err := c.events.ListUpcoming(ctx, repository.NoTX, userID, c.now(), upcomingEventsLimit)
	return list, logFailure(ctx, c.log, "next_events", err)
}

func (c *calendarUC) Create(ctx context.Context, userID string, in EventInput) (*model.Event, error) {
	ev, err := model.NewEvent(uuid.NewString(), userID, in.Title, in.Description, in.Type, in.StartsAt, in.EndsAt)
	if err != nil {
		return nil, err
	}
	if err := c.events.Save(ctx, repository.NoTX, ev); err != nil {
		return nil, logFailure(ctx, c.log, "create_event", err)
	}
	return ev, nil
}

func (c *calendarUC) Delete(ctx context.Context, userID, id string) error {
	err := c.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := c.owned(ctx, tx, userID, id); err != nil {
			return err
		}
		return c.events.Delete(ctx, tx, id)
	})
	return logFailure(ctx, c.log, "delete_event", err)
}

func (c *calendarUC) Toggle(ctx context.Context, userID, id string) (*model.Event, error) {
	var out *model.Event
	err := c.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ev, err := c.owned(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		ev.IsDone = !ev.IsDone
		out = ev
		return c.events.Save(ctx, tx, ev)
	})
	if err != nil {
		return nil, logFailure(ctx, c.log, "toggle_event", err)
	}
	return out, nil
}

// owned hides other users' events behind ErrNotFound.
func (c *calendarUC) owned(ctx context.Context, tx repository.Tx, userID, id string) (*model.Event, error) {
	ev, err := c.events.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if ev.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return ev, nil
}

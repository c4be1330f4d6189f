package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/i18n"
	"cledumemoire/internal/infra/logging"
)

// Notice is an in-app notification to create. TitleKey is a translation key
// formatted with Args.
type Notice struct {
	UserID   string
	Type     model.NotificationType
	TitleKey string
	Args     []any
	Body     string
	Link     string
}

// Notifier stores notices, inside the caller's transaction when tx is set.
type Notifier interface {
	Notify(ctx context.Context, tx repository.Tx, n Notice) error
}

// NotificationUseCase serves the notification inbox. Nothing is delivered
// outside the application.
type NotificationUseCase interface {
	Notifier
	List(ctx context.Context, userID string) ([]*model.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

const notificationListLimit = 50

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type notificationUC struct {
	notifications repository.NotificationRepository
	tr            *i18n.Translator
	log           *zerolog.Logger
}

// NewNotificationUseCase stores titles in the language of tr.
func NewNotificationUseCase(notifications repository.NotificationRepository, tr *i18n.Translator, logger *zerolog.Logger) NotificationUseCase {
	return &notificationUC{
		notifications: notifications,
		tr:            tr,
		log:           logging.Component(loggerOrNop(logger), "NotificationUseCase"),
	}
}

func (n *notificationUC) Notify(ctx context.Context, tx repository.Tx, in Notice) error {
	if in.UserID == "" || in.TitleKey == "" {
		return domain.ErrInvalidArgument
	}
	typ := in.Type
	if typ == "" {
		typ = model.NotificationTypeSystem
	}
	title := in.TitleKey
	if n.tr != nil {
		title = n.tr.T(in.TitleKey, in.Args...)
	}
	return n.notifications.Save(ctx, tx, &model.Notification{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Type:      typ,
		Title:     title,
		Body:      in.Body,
		Link:      in.Link,
		CreatedAt: time.Now(),
	})
}

func (n *notificationUC) List(ctx context.Context, userID string) ([]*model.Notification, error) {
	list, err := n.notifications.ListByUser(ctx, repository.NoTX, userID, notificationListLimit)
	return list, logFailure(ctx, n.log, "list_notifications", err)
}

func (n *notificationUC) MarkRead(ctx context.Context, userID, id string) error {
	if id == "" {
		return domain.ErrInvalidArgument
	}
	return logFailure(ctx, n.log, "mark_notification_read", n.notifications.MarkRead(ctx, repository.NoTX, userID, id))
}

func (n *notificationUC) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	c, err := n.notifications.MarkAllRead(ctx, repository.NoTX, userID)
	return c, logFailure(ctx, n.log, "mark_all_notifications_read", err)
}

func (n *notificationUC) UnreadCount(ctx context.Context, userID string) (int, error) {
	c, err := n.notifications.CountUnread(ctx, repository.NoTX, userID)
	return c, logFailure(ctx, n.log, "count_unread_notifications", err)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, repository.Tx, Notice) error { return nil }

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

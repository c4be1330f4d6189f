package repository

import (
	"context"
	"time"

	"cledumemoire/internal/domain/model"
)

type ConversationRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Conversation) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Conversation, error)
	FindByPair(ctx context.Context, tx Tx, a, b string) (*model.Conversation, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Conversation, error)
	Touch(ctx context.Context, tx Tx, id string, at time.Time) error
}

// MessageRepository stores message content as given; encryption happens above it.
type MessageRepository interface {
	Save(ctx context.Context, tx Tx, m *model.Message) error
	ListByConversation(ctx context.Context, tx Tx, conversationID string) ([]*model.Message, error)
	Last(ctx context.Context, tx Tx, conversationID string) (*model.Message, error)
	// MarkRead flags messages not sent by readerID as read.
	MarkRead(ctx context.Context, tx Tx, conversationID, readerID string) (int64, error)
	CountUnread(ctx context.Context, tx Tx, conversationID, readerID string) (int, error)
}

type NotificationRepository interface {
	Save(ctx context.Context, tx Tx, n *model.Notification) error
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, tx Tx, userID, id string) error
	MarkAllRead(ctx context.Context, tx Tx, userID string) (int64, error)
	CountUnread(ctx context.Context, tx Tx, userID string) (int, error)
}

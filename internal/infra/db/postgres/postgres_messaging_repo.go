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
	_ repository.ConversationRepository = (*conversationRepo)(nil)
	_ repository.MessageRepository      = (*messageRepo)(nil)
	_ repository.NotificationRepository = (*notificationRepo)(nil)
)

const conversationCols = `id, participant_a, participant_b, last_message_at, created_at`

type conversationRepo struct {
	pool *pgxpool.Pool
}

func NewConversationRepo(pool *pgxpool.Pool) *conversationRepo {
	return &conversationRepo{pool: pool}
}

func (r *conversationRepo) Save(ctx context.Context, tx repository.Tx, c *model.Conversation) error {
	const q = `
INSERT INTO conversations (` + conversationCols + `)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET last_message_at=$4;`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.ParticipantA, c.ParticipantB, c.LastMessageAt, c.CreatedAt)
	return err
}

func (r *conversationRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Conversation, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+conversationCols+` FROM conversations WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanConversation(row)
}

func (r *conversationRepo) FindByPair(ctx context.Context, tx repository.Tx, a, b string) (*model.Conversation, error) {
	a, b = model.OrderedPair(a, b)
	const q = `SELECT ` + conversationCols + ` FROM conversations WHERE participant_a=$1 AND participant_b=$2;`
	row, err := pickRow(ctx, r.pool, tx, q, a, b)
	if err != nil {
		return nil, err
	}
	return scanConversation(row)
}

func (r *conversationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Conversation, error) {
	const q = `
SELECT ` + conversationCols + `
  FROM conversations
 WHERE participant_a=$1 OR participant_b=$1
 ORDER BY last_message_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanConversation)
}

func (r *conversationRepo) Touch(ctx context.Context, tx repository.Tx, id string, at time.Time) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE conversations SET last_message_at=$2 WHERE id=$1;`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanConversation(row scanner) (*model.Conversation, error) {
	c := &model.Conversation{}
	if err := row.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &c.LastMessageAt, &c.CreatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	return c, nil
}

// --- messages ---

const messageCols = `id, conversation_id, sender_id, content, is_read, created_at`

type messageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *messageRepo {
	return &messageRepo{pool: pool}
}

func (r *messageRepo) Save(ctx context.Context, tx repository.Tx, m *model.Message) error {
	const q = `INSERT INTO messages (` + messageCols + `) VALUES ($1,$2,$3,$4,$5,$6);`
	_, err := execSQL(ctx, r.pool, tx, q, m.ID, m.ConversationID, m.SenderID, m.Content, m.IsRead, m.CreatedAt)
	return err
}

func (r *messageRepo) ListByConversation(ctx context.Context, tx repository.Tx, conversationID string) ([]*model.Message, error) {
	const q = `SELECT ` + messageCols + ` FROM messages WHERE conversation_id=$1 ORDER BY created_at ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, conversationID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMessage)
}

func (r *messageRepo) Last(ctx context.Context, tx repository.Tx, conversationID string) (*model.Message, error) {
	const q = `SELECT ` + messageCols + ` FROM messages WHERE conversation_id=$1 ORDER BY created_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, conversationID)
	if err != nil {
		return nil, err
	}
	return scanMessage(row)
}

func (r *messageRepo) MarkRead(ctx context.Context, tx repository.Tx, conversationID, readerID string) (int64, error) {
	const q = `UPDATE messages SET is_read=TRUE WHERE conversation_id=$1 AND sender_id<>$2 AND NOT is_read;`
	tag, err := execSQL(ctx, r.pool, tx, q, conversationID, readerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *messageRepo) CountUnread(ctx context.Context, tx repository.Tx, conversationID, readerID string) (int, error) {
	const q = `SELECT COUNT(*) FROM messages WHERE conversation_id=$1 AND sender_id<>$2 AND NOT is_read;`
	return countRow(ctx, r.pool, tx, q, conversationID, readerID)
}

func scanMessage(row scanner) (*model.Message, error) {
	m := &model.Message{}
	if err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	return m, nil
}

// --- notifications ---

const notificationCols = `id, user_id, type, title, body, link, is_read, created_at`

type notificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *notificationRepo {
	return &notificationRepo{pool: pool}
}

func (r *notificationRepo) Save(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	const q = `INSERT INTO notifications (` + notificationCols + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := execSQL(ctx, r.pool, tx, q, n.ID, n.UserID, string(n.Type), n.Title, n.Body, n.Link, n.IsRead, n.CreatedAt)
	return err
}

func (r *notificationRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + notificationCols + ` FROM notifications WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanNotification)
}

func (r *notificationRepo) MarkRead(ctx context.Context, tx repository.Tx, userID, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE notifications SET is_read=TRUE WHERE id=$1 AND user_id=$2;`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, tx repository.Tx, userID string) (int64, error) {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE notifications SET is_read=TRUE WHERE user_id=$1 AND NOT is_read;`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	return countRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND NOT is_read;`, userID)
}

func scanNotification(row scanner) (*model.Notification, error) {
	n := &model.Notification{}
	var typ string
	if err := row.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Body, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	n.Type = model.NotificationType(typ)
	return n, nil
}

func countRow(ctx context.Context, pool *pgxpool.Pool, tx repository.Tx, sql string, args ...any) (int, error) {
	row, err := pickRow(ctx, pool, tx, sql, args...)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, mapReadErr(err)
	}
	return n, nil
}

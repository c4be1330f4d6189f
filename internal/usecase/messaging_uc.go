package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/adapter"
	"cledumemoire/internal/domain/ports/repository"
	"cledumemoire/internal/infra/logging"
)

const maxMessageLen = 5000

// ConversationThread is a conversation with its messages, oldest first.
type ConversationThread struct {
	Conversation *model.Conversation
	Partner      *model.UserSummary
	Messages     []*model.Message
}

type MessagingUseCase interface {
	// Partners lists the users the actor may write to.
	Partners(ctx context.Context, actor Actor) ([]*model.UserSummary, error)
	Conversations(ctx context.Context, actor Actor) ([]*model.ConversationView, error)
	// Messages returns the thread and marks the actor's inbound messages read.
	Messages(ctx context.Context, actor Actor, conversationID string) (*ConversationThread, error)
	Send(ctx context.Context, actor Actor, recipientID, content string) (*model.Message, error)
}

var _ MessagingUseCase = (*messagingUC)(nil)

type messagingUC struct {
	users         repository.UserRepository
	memoires      repository.MemoireRepository
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	cipher        adapter.Cipher
	notifier      Notifier
	tx            repository.TransactionManager
	log           *zerolog.Logger
}

func NewMessagingUseCase(
	users repository.UserRepository,
	memoires repository.MemoireRepository,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	cipher adapter.Cipher,
	notifier Notifier,
	tx repository.TransactionManager,
	logger *zerolog.Logger,
) MessagingUseCase {
	return &messagingUC{
		users:         users,
		memoires:      memoires,
		conversations: conversations,
		messages:      messages,
		cipher:        cipher,
		notifier:      notifierOrNop(notifier),
		tx:            tx,
		log:           logging.Component(loggerOrNop(logger), "MessagingUseCase"),
	}
}

func (m *messagingUC) Partners(ctx context.Context, actor Actor) ([]*model.UserSummary, error) {
	var ids []string
	switch actor.Role {
	case model.RoleStudent:
		mem, err := m.memoires.FindByStudent(ctx, repository.NoTX, actor.ID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, logFailure(ctx, m.log, "partners", err)
		}
		if mem != nil && mem.CoachID != nil {
			ids = append(ids, *mem.CoachID)
		}
	case model.RoleAccompagnateur:
		list, err := m.memoires.ListByCoach(ctx, repository.NoTX, actor.ID)
		if err != nil {
			return nil, logFailure(ctx, m.log, "partners", err)
		}
		for _, mem := range list {
			ids = append(ids, mem.StudentID)
		}
	case model.RoleAdmin:
		all, err := m.users.List(ctx, repository.NoTX, repository.UserFilter{ActiveOnly: true})
		if err != nil {
			return nil, logFailure(ctx, m.log, "partners", err)
		}
		return summariesExcept(all, actor.ID), nil
	default:
		return nil, domain.ErrForbidden
	}

	admin := model.RoleAdmin
	admins, err := m.users.List(ctx, repository.NoTX, repository.UserFilter{Role: &admin, ActiveOnly: true})
	if err != nil {
		return nil, logFailure(ctx, m.log, "partners", err)
	}
	people, err := m.users.FindByIDs(ctx, repository.NoTX, uniq(ids))
	if err != nil {
		return nil, logFailure(ctx, m.log, "partners", err)
	}
	var active []*model.User
	for _, u := range people {
		if u.IsActive {
			active = append(active, u)
		}
	}
	return summariesExcept(append(active, admins...), actor.ID), nil
}

func (m *messagingUC) Conversations(ctx context.Context, actor Actor) ([]*model.ConversationView, error) {
	convs, err := m.conversations.ListByUser(ctx, repository.NoTX, actor.ID)
	if err != nil {
		return nil, logFailure(ctx, m.log, "list_conversations", err)
	}
	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.Other(actor.ID))
	}
	partners, err := m.summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*model.ConversationView, 0, len(convs))
	for _, c := range convs {
		v := &model.ConversationView{Conversation: c, Partner: partners[c.Other(actor.ID)]}
		last, err := m.messages.Last(ctx, repository.NoTX, c.ID)
		switch {
		case err == nil:
			if v.LastMessage, err = m.decrypt(last); err != nil {
				return nil, logFailure(ctx, m.log, "decrypt_message", err)
			}
		case !errors.Is(err, domain.ErrNotFound):
			return nil, logFailure(ctx, m.log, "last_message", err)
		}
		if v.UnreadCount, err = m.messages.CountUnread(ctx, repository.NoTX, c.ID, actor.ID); err != nil {
			return nil, logFailure(ctx, m.log, "count_unread", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *messagingUC) Messages(ctx context.Context, actor Actor, conversationID string) (*ConversationThread, error) {
	conv, err := m.conversations.FindByID(ctx, repository.NoTX, conversationID)
	if err != nil {
		return nil, logFailure(ctx, m.log, "get_conversation", err)
	}
	if !conv.Has(actor.ID) {
		return nil, domain.ErrForbidden
	}
	if _, err := m.messages.MarkRead(ctx, repository.NoTX, conv.ID, actor.ID); err != nil {
		return nil, logFailure(ctx, m.log, "mark_read", err)
	}
	list, err := m.messages.ListByConversation(ctx, repository.NoTX, conv.ID)
	if err != nil {
		return nil, logFailure(ctx, m.log, "list_messages", err)
	}
	out := make([]*model.Message, 0, len(list))
	for _, msg := range list {
		plain, err := m.decrypt(msg)
		if err != nil {
			return nil, logFailure(ctx, m.log, "decrypt_message", err)
		}
		out = append(out, plain)
	}
	partners, err := m.summaries(ctx, []string{conv.Other(actor.ID)})
	if err != nil {
		return nil, err
	}
	return &ConversationThread{Conversation: conv, Partner: partners[conv.Other(actor.ID)], Messages: out}, nil
}

func (m *messagingUC) Send(ctx context.Context, actor Actor, recipientID, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" || len([]rune(content)) > maxMessageLen || recipientID == "" || recipientID == actor.ID {
		return nil, domain.ErrInvalidArgument
	}
	recipient, err := m.users.FindByID(ctx, repository.NoTX, recipientID)
	if err != nil {
		return nil, logFailure(ctx, m.log, "send_recipient", err)
	}
	if !recipient.IsActive || !model.CanMessage(actor.Role, recipient.Role) {
		return nil, domain.ErrForbidden
	}
	sender, err := m.users.FindByID(ctx, repository.NoTX, actor.ID)
	if err != nil {
		return nil, logFailure(ctx, m.log, "send_sender", err)
	}
	sealed, err := m.cipher.Encrypt(content)
	if err != nil {
		return nil, logFailure(ctx, m.log, "encrypt_message", err)
	}

	now := time.Now()
	msg := &model.Message{ID: uuid.NewString(), SenderID: actor.ID, Content: sealed, CreatedAt: now}
	err = m.tx.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		conv, err := m.conversation(ctx, tx, actor.ID, recipientID, now)
		if err != nil {
			return err
		}
		msg.ConversationID = conv.ID
		if err := m.messages.Save(ctx, tx, msg); err != nil {
			return err
		}
		if err := m.conversations.Touch(ctx, tx, conv.ID, now); err != nil {
			return err
		}
		return m.notifier.Notify(ctx, tx, Notice{
			UserID:   recipientID,
			Type:     model.NotificationTypeMessage,
			TitleKey: "notification.message.title",
			Args:     []any{sender.FullName()},
			Link:     fmt.Sprintf("/messages/%s", conv.ID),
		})
	})
	if err != nil {
		return nil, logFailure(ctx, m.log, "send_message", err)
	}
	out := *msg
	out.Content = content
	return &out, nil
}

func (m *messagingUC) conversation(ctx context.Context, tx repository.Tx, a, b string, now time.Time) (*model.Conversation, error) {
	conv, err := m.conversations.FindByPair(ctx, tx, a, b)
	if err == nil || !errors.Is(err, domain.ErrNotFound) {
		return conv, err
	}
	pa, pb := model.OrderedPair(a, b)
	conv = &model.Conversation{ID: uuid.NewString(), ParticipantA: pa, ParticipantB: pb, LastMessageAt: now, CreatedAt: now}
	if err := m.conversations.Save(ctx, tx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (m *messagingUC) decrypt(msg *model.Message) (*model.Message, error) {
	plain, err := m.cipher.Decrypt(msg.Content)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", msg.ID, err)
	}
	out := *msg
	out.Content = plain
	return &out, nil
}

func (m *messagingUC) summaries(ctx context.Context, ids []string) (map[string]*model.UserSummary, error) {
	users, err := m.users.FindByIDs(ctx, repository.NoTX, uniq(ids))
	if err != nil {
		return nil, logFailure(ctx, m.log, "conversation_partners", err)
	}
	out := make(map[string]*model.UserSummary, len(users))
	for _, u := range users {
		out[u.ID] = u.Summary()
	}
	return out, nil
}

func summariesExcept(users []*model.User, self string) []*model.UserSummary {
	seen := map[string]bool{self: true}
	out := make([]*model.UserSummary, 0, len(users))
	for _, u := range users {
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u.Summary())
	}
	return out
}

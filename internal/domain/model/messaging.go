package model

import "time"

// Conversation is a two-party thread. ParticipantA < ParticipantB.
type Conversation struct {
	ID            string
	ParticipantA  string
	ParticipantB  string
	LastMessageAt time.Time
	CreatedAt     time.Time
}

// OrderedPair returns the two ids sorted, the key of a conversation.
func OrderedPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

func (c *Conversation) Has(userID string) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

func (c *Conversation) Other(userID string) string {
	if c.ParticipantA == userID {
		return c.ParticipantB
	}
	return c.ParticipantA
}

type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	IsRead         bool
	CreatedAt      time.Time
}

// ConversationView is the inbox row shown to one participant.
type ConversationView struct {
	*Conversation
	Partner     *UserSummary
	LastMessage *Message
	UnreadCount int
}

// CanMessage is the messaging eligibility rule between two roles.
func CanMessage(from, to Role) bool {
	switch from {
	case RoleAdmin:
		return to.Valid()
	case RoleStudent:
		return to == RoleAccompagnateur || to == RoleAdmin
	case RoleAccompagnateur:
		return to == RoleStudent || to == RoleAdmin
	}
	return false
}

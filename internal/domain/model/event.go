package model

import (
	"strings"
	"time"

	"cledumemoire/internal/domain"
)

const DefaultEventType = "REMINDER"

// Event is a personal calendar entry.
type Event struct {
	ID          string
	UserID      string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      *time.Time
	Type        string
	IsDone      bool
	CreatedAt   time.Time
}

func NewEvent(id, userID, title, description, typ string, startsAt time.Time, endsAt *time.Time) (*Event, error) {
	title = strings.TrimSpace(title)
	if id == "" || userID == "" || title == "" || startsAt.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	if endsAt != nil && endsAt.Before(startsAt) {
		return nil, domain.ErrInvalidArgument
	}
	typ = strings.ToUpper(strings.TrimSpace(typ))
	if typ == "" {
		typ = DefaultEventType
	}
	return &Event{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Type:        typ,
		CreatedAt:   time.Now(),
	}, nil
}

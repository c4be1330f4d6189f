package model

import (
	"fmt"
	"strings"
	"time"

	"cledumemoire/internal/domain"
)

type MemoireStatus string

const (
	MemoireStatusNotStarted MemoireStatus = "NOT_STARTED"
	MemoireStatusInProgress MemoireStatus = "IN_PROGRESS"
	MemoireStatusReview     MemoireStatus = "REVIEW"
	MemoireStatusCompleted  MemoireStatus = "COMPLETED"
)

func ParseMemoireStatus(s string) (MemoireStatus, error) {
	switch st := MemoireStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case MemoireStatusNotStarted, MemoireStatusInProgress, MemoireStatusReview, MemoireStatusCompleted:
		return st, nil
	}
	return "", domain.ErrInvalidArgument
}

// Memoire tracks the thesis of one student.
type Memoire struct {
	ID          string
	StudentID   string
	CoachID     *string
	Title       string
	Description string
	Status      MemoireStatus
	Progress    int
	CurrentStep string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MemoireView adds the people attached to a memoire.
type MemoireView struct {
	*Memoire
	Student *UserSummary
	Coach   *UserSummary
}

// NewMemoireFor creates the default memoire given to a new student.
func NewMemoireFor(id string, student *User) (*Memoire, error) {
	if id == "" || student.IsZero() || student.Role != RoleStudent {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Memoire{
		ID:        id,
		StudentID: student.ID,
		Title:     fmt.Sprintf("Mémoire de %s %s", student.FirstName, student.LastName),
		Status:    MemoireStatusNotStarted,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanEdit reports whether u may change the memoire.
func (m *Memoire) CanEdit(userID string, role Role) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleStudent:
		return m.StudentID == userID
	case RoleAccompagnateur:
		return m.CoachID != nil && *m.CoachID == userID
	}
	return false
}

func ValidProgress(p int) bool { return p >= 0 && p <= 100 }

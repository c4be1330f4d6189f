package model

import (
	"net/mail"
	"strings"
	"time"

	"cledumemoire/internal/domain"

	"github.com/google/uuid"
)

type Role string

const (
	RoleStudent        Role = "STUDENT"
	RoleAccompagnateur Role = "ACCOMPAGNATEUR"
	RoleAdmin          Role = "ADMIN"
)

// ParseRole accepts only the three known roles, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleStudent, RoleAccompagnateur, RoleAdmin:
		return r, nil
	}
	return "", domain.ErrInvalidArgument
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// User is an account of the coaching platform.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	Role         Role
	AvatarURL    string
	University   string
	Field        string
	Level        string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserSummary is the public projection embedded in other resources.
type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

func NewUser(id, email, firstName, lastName string, role Role) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidArgument
	}
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" || !role.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		ID:        id,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (u *User) IsZero() bool     { return u == nil || u.ID == "" }
func (u *User) FullName() string { return strings.TrimSpace(u.FirstName + " " + u.LastName) }

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}

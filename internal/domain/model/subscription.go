package model

import (
	"time"

	"cledumemoire/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending     SubscriptionStatus = "PENDING"
	SubscriptionStatusPartial     SubscriptionStatus = "PARTIAL"
	SubscriptionStatusActive      SubscriptionStatus = "ACTIVE"
	SubscriptionStatusDeactivated SubscriptionStatus = "DEACTIVATED"
	SubscriptionStatusCancelled   SubscriptionStatus = "CANCELLED"
	SubscriptionStatusExpired     SubscriptionStatus = "EXPIRED"
)

// AllSubscriptionStatuses lists every status, used for gauges and validation.
var AllSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusPending,
	SubscriptionStatusPartial,
	SubscriptionStatusActive,
	SubscriptionStatusDeactivated,
	SubscriptionStatusCancelled,
	SubscriptionStatusExpired,
}

// TerminalSubscriptionStatuses are the statuses that do not count as live.
var TerminalSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusCancelled,
	SubscriptionStatusExpired,
	SubscriptionStatusDeactivated,
}

// PayableSubscriptionStatuses are the statuses a user may still pay toward.
// DEACTIVATED is included so a superseded pack can be resumed.
var PayableSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusPending,
	SubscriptionStatusPartial,
	SubscriptionStatusDeactivated,
}

// IsLive reports whether the status counts toward the one-live-subscription rule.
func (s SubscriptionStatus) IsLive() bool {
	for _, t := range TerminalSubscriptionStatuses {
		if s == t {
			return false
		}
	}
	return s != ""
}

// Subscription binds one user to one pack.
// AmountPaid is a cached total; the CONFIRMED payment ledger is authoritative.
type Subscription struct {
	ID          string
	UserID      string
	PackID      string
	Status      SubscriptionStatus
	AmountPaid  int64
	ActivatedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SubscriptionView is a subscription joined with what the API shows next to it.
type SubscriptionView struct {
	*Subscription
	Pack     *Pack
	Payments []*Payment
	User     *UserSummary
}

// NewSubscription creates a PENDING subscription with nothing paid.
func NewSubscription(id, userID string, pack *Pack) (*Subscription, error) {
	if id == "" || userID == "" || pack.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:         id,
		UserID:     userID,
		PackID:     pack.ID,
		Status:     SubscriptionStatusPending,
		AmountPaid: 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *Subscription) IsLive() bool { return s.Status.IsLive() }

// ApplyClaim applies the provisional installment rule for a payment the
// user reported but nobody confirmed yet. It returns true when s changed.
func (s *Subscription) ApplyClaim(pack *Pack, amount int64, now time.Time) bool {
	if s.Status != SubscriptionStatusPending || pack == nil || !pack.HasInstallments() {
		return false
	}
	if amount < *pack.Installment1 {
		return false
	}
	s.Status = SubscriptionStatusPartial
	s.AmountPaid = amount
	s.UpdatedAt = now
	return true
}

// ApplyConfirmedTotal recomputes status from the confirmed ledger total.
// An ACTIVE subscription keeps its first activation time and is never demoted.
func (s *Subscription) ApplyConfirmedTotal(pack *Pack, confirmed int64, now time.Time) error {
	if pack == nil {
		return domain.ErrInvalidArgument
	}
	if s.Status == SubscriptionStatusCancelled || s.Status == SubscriptionStatusExpired {
		return domain.ErrSubscriptionClosed
	}
	s.AmountPaid = confirmed
	switch {
	case confirmed >= pack.Price:
		if s.Status != SubscriptionStatusActive || s.ActivatedAt == nil {
			t := now
			s.ActivatedAt = &t
		}
		s.Status = SubscriptionStatusActive
	case confirmed > 0 && s.Status != SubscriptionStatusActive:
		s.Status = SubscriptionStatusPartial
	}
	s.UpdatedAt = now
	return nil
}

// ForceActivate moves s to ACTIVE regardless of what was paid.
func (s *Subscription) ForceActivate(now time.Time) {
	t := now
	s.Status = SubscriptionStatusActive
	s.ActivatedAt = &t
	s.UpdatedAt = now
}

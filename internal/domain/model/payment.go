package model

import (
	"strings"
	"time"

	"cledumemoire/internal/domain"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"   // reported by the user, awaiting an admin
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED" // recorded by an admin
)

// PaymentMethodManual marks payments entered by an admin.
const PaymentMethodManual = "MANUAL"

// Payment is an append-only ledger entry of one subscription.
type Payment struct {
	ID             string
	SubscriptionID string
	Amount         int64
	Method         string
	Reference      *string
	Status         PaymentStatus
	CreatedAt      time.Time
}

func NewPayment(id, subscriptionID string, amount int64, method string, reference *string, status PaymentStatus) (*Payment, error) {
	method = strings.TrimSpace(method)
	if id == "" || subscriptionID == "" || amount <= 0 || method == "" {
		return nil, domain.ErrInvalidArgument
	}
	if status != PaymentStatusPending && status != PaymentStatusConfirmed {
		return nil, domain.ErrInvalidArgument
	}
	if reference != nil {
		r := strings.TrimSpace(*reference)
		if r == "" {
			reference = nil
		} else {
			reference = &r
		}
	}
	return &Payment{
		ID:             id,
		SubscriptionID: subscriptionID,
		Amount:         amount,
		Method:         method,
		Reference:      reference,
		Status:         status,
		CreatedAt:      time.Now(),
	}, nil
}

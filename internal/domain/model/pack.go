package model

import (
	"strings"
	"time"

	"cledumemoire/internal/domain"
)

// Pack is a purchasable coaching offering. Prices are whole FCFA.
type Pack struct {
	ID           string
	Name         string
	Description  string
	Price        int64
	Installment1 *int64
	Installment2 *int64
	Features     []string
	IsActive     bool
	SortOrder    int
	CreatedAt    time.Time
}

func (p *Pack) IsZero() bool { return p == nil || p.ID == "" }

// HasInstallments reports whether the pack can be paid in two tranches.
func (p *Pack) HasInstallments() bool { return p.Installment1 != nil && *p.Installment1 > 0 }

// NewPack validates and constructs an active pack.
// Installments must be given together and add up to the price.
func NewPack(id, name, description string, price int64, inst1, inst2 *int64, features []string, sortOrder int) (*Pack, error) {
	name = strings.TrimSpace(name)
	if id == "" || name == "" || price <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if err := validateInstallments(price, inst1, inst2); err != nil {
		return nil, err
	}
	if features == nil {
		features = []string{}
	}
	return &Pack{
		ID:           id,
		Name:         name,
		Description:  strings.TrimSpace(description),
		Price:        price,
		Installment1: inst1,
		Installment2: inst2,
		Features:     features,
		IsActive:     true,
		SortOrder:    sortOrder,
		CreatedAt:    time.Now(),
	}, nil
}

// Validate re-checks the pack after an administrative edit.
func (p *Pack) Validate() error {
	if p.IsZero() || strings.TrimSpace(p.Name) == "" || p.Price <= 0 {
		return domain.ErrInvalidArgument
	}
	return validateInstallments(p.Price, p.Installment1, p.Installment2)
}

func validateInstallments(price int64, inst1, inst2 *int64) error {
	if inst1 == nil && inst2 == nil {
		return nil
	}
	if inst1 == nil || inst2 == nil || *inst1 <= 0 || *inst2 <= 0 {
		return domain.ErrInvalidArgument
	}
	if *inst1+*inst2 != price {
		return domain.ErrInvalidArgument
	}
	return nil
}

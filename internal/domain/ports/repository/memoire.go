package repository

import (
	"context"

	"cledumemoire/internal/domain/model"
)

type MemoireRepository interface {
	Save(ctx context.Context, tx Tx, m *model.Memoire) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Memoire, error)
	FindByStudent(ctx context.Context, tx Tx, studentID string) (*model.Memoire, error)
	ListByCoach(ctx context.Context, tx Tx, coachID string) ([]*model.Memoire, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Memoire, error)
}

package repository

import (
	"context"

	"cledumemoire/internal/domain/model"
)

type UserFilter struct {
	Role       *model.Role
	ActiveOnly bool
}

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	FindByIDs(ctx context.Context, tx Tx, ids []string) ([]*model.User, error)
	List(ctx context.Context, tx Tx, f UserFilter) ([]*model.User, error)
	ListRecent(ctx context.Context, tx Tx, limit int) ([]*model.User, error)
	CountByRole(ctx context.Context, tx Tx) (map[model.Role]int, error)
}

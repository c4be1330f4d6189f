package repository

import (
	"context"

	"cledumemoire/internal/domain/model"
)

type PackRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Pack) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Pack, error)
	// ListActive returns active packs ordered by sort order.
	ListActive(ctx context.Context, tx Tx) ([]*model.Pack, error)
}

package repository

import (
	"context"

	"cledumemoire/internal/domain/model"
)

type DocumentRepository interface {
	Save(ctx context.Context, tx Tx, d *model.Document) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Document, error)
	ListByMemoires(ctx context.Context, tx Tx, memoireIDs []string) ([]*model.Document, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Document, error)
	// LastVersion returns 0 when the memoire has no document in category.
	LastVersion(ctx context.Context, tx Tx, memoireID, category string) (int, error)
}

type ResourceRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Resource) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Resource, error)
	// List filters by category when category is non-empty.
	List(ctx context.Context, tx Tx, category string) ([]*model.Resource, error)
	Delete(ctx context.Context, tx Tx, id string) error
}

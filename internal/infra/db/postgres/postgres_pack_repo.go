package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4/pgxpool"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
)

var _ repository.PackRepository = (*packRepo)(nil)

const packCols = `id, name, description, price, installment1, installment2, features, is_active, sort_order, created_at`

type packRepo struct {
	pool *pgxpool.Pool
}

func NewPackRepo(pool *pgxpool.Pool) *packRepo {
	return &packRepo{pool: pool}
}

func (r *packRepo) Save(ctx context.Context, tx repository.Tx, p *model.Pack) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO packs (` + packCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  name=$2, description=$3, price=$4, installment1=$5, installment2=$6, features=$7, is_active=$8, sort_order=$9;`
	_, err = execSQL(ctx, r.pool, tx, q,
		p.ID, p.Name, p.Description, p.Price, p.Installment1, p.Installment2, features, p.IsActive, p.SortOrder, p.CreatedAt)
	return err
}

func (r *packRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Pack, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+packCols+` FROM packs WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanPack(row)
}

func (r *packRepo) ListActive(ctx context.Context, tx repository.Tx) ([]*model.Pack, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+packCols+` FROM packs WHERE is_active ORDER BY sort_order ASC, created_at ASC;`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanPack)
}

func scanPack(row scanner) (*model.Pack, error) {
	p := &model.Pack{}
	var features []byte
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Installment1, &p.Installment2,
		&features, &p.IsActive, &p.SortOrder, &p.CreatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return p, nil
}

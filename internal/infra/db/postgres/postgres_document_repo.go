package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
)

var (
	_ repository.DocumentRepository = (*documentRepo)(nil)
	_ repository.ResourceRepository = (*resourceRepo)(nil)
)

const documentCols = `id, memoire_id, uploader_id, name, url, storage_key, mime_type, size, category, version, status, feedback, created_at`

type documentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *documentRepo {
	return &documentRepo{pool: pool}
}

func (r *documentRepo) Save(ctx context.Context, tx repository.Tx, d *model.Document) error {
	const q = `
INSERT INTO documents (` + documentCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (id) DO UPDATE SET status=$11, feedback=$12;`
	_, err := execSQL(ctx, r.pool, tx, q,
		d.ID, d.MemoireID, d.UploaderID, d.Name, d.URL, d.StorageKey, d.MimeType, d.Size,
		d.Category, d.Version, string(d.Status), d.Feedback, d.CreatedAt)
	return err
}

func (r *documentRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Document, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+documentCols+` FROM documents WHERE id=$1`+forUpdate(tx)+`;`, id)
	if err != nil {
		return nil, err
	}
	return scanDocument(row)
}

func (r *documentRepo) ListByMemoires(ctx context.Context, tx repository.Tx, memoireIDs []string) ([]*model.Document, error) {
	if len(memoireIDs) == 0 {
		return []*model.Document{}, nil
	}
	const q = `SELECT ` + documentCols + ` FROM documents WHERE memoire_id = ANY($1::uuid[]) ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, memoireIDs)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDocument)
}

func (r *documentRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Document, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+documentCols+` FROM documents ORDER BY created_at DESC;`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDocument)
}

func (r *documentRepo) LastVersion(ctx context.Context, tx repository.Tx, memoireID, category string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COALESCE(MAX(version),0) FROM documents WHERE memoire_id=$1 AND category=$2;`, memoireID, category)
	if err != nil {
		return 0, err
	}
	var v int
	if err := row.Scan(&v); err != nil {
		return 0, mapReadErr(err)
	}
	return v, nil
}

func scanDocument(row scanner) (*model.Document, error) {
	d := &model.Document{}
	var status string
	if err := row.Scan(&d.ID, &d.MemoireID, &d.UploaderID, &d.Name, &d.URL, &d.StorageKey, &d.MimeType, &d.Size,
		&d.Category, &d.Version, &status, &d.Feedback, &d.CreatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	d.Status = model.DocumentStatus(status)
	return d, nil
}

// --- resources ---

const resourceCols = `id, title, description, category, file_type, url, storage_key, created_by, created_at`

type resourceRepo struct {
	pool *pgxpool.Pool
}

func NewResourceRepo(pool *pgxpool.Pool) *resourceRepo {
	return &resourceRepo{pool: pool}
}

func (r *resourceRepo) Save(ctx context.Context, tx repository.Tx, res *model.Resource) error {
	const q = `
INSERT INTO resources (` + resourceCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,'')::uuid,$9)
ON CONFLICT (id) DO UPDATE SET title=$2, description=$3, category=$4;`
	_, err := execSQL(ctx, r.pool, tx, q,
		res.ID, res.Title, res.Description, res.Category, string(res.FileType), res.URL, res.StorageKey, res.CreatedBy, res.CreatedAt)
	return err
}

func (r *resourceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Resource, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+resourceCols+` FROM resources WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanResource(row)
}

func (r *resourceRepo) List(ctx context.Context, tx repository.Tx, category string) ([]*model.Resource, error) {
	const q = `SELECT ` + resourceCols + ` FROM resources WHERE ($1 = '' OR category = $1) ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, category)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanResource)
}

func (r *resourceRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM resources WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanResource(row scanner) (*model.Resource, error) {
	res := &model.Resource{}
	var fileType string
	var createdBy *string
	if err := row.Scan(&res.ID, &res.Title, &res.Description, &res.Category, &fileType, &res.URL,
		&res.StorageKey, &createdBy, &res.CreatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	res.FileType = model.FileType(fileType)
	if createdBy != nil {
		res.CreatedBy = *createdBy
	}
	return res, nil
}

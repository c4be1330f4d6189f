package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"

	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

const userCols = `id, email, password_hash, first_name, last_name, phone, role, avatar_url, university, field, level, is_active, created_at, updated_at`

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (` + userCols + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (id) DO UPDATE SET
  email=$2, password_hash=$3, first_name=$4, last_name=$5, phone=$6, role=$7, avatar_url=$8,
  university=$9, field=$10, level=$11, is_active=$12, updated_at=$14;`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, string(u.Role), u.AvatarURL,
		u.University, u.Field, u.Level, u.IsActive, u.CreatedAt, u.UpdatedAt)
	return err
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	return r.queryOne(ctx, tx, `SELECT `+userCols+` FROM users WHERE id=$1;`, id)
}

func (r *userRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	return r.queryOne(ctx, tx, `SELECT `+userCols+` FROM users WHERE email=$1;`, model.NormalizeEmail(email))
}

func (r *userRepo) FindByIDs(ctx context.Context, tx repository.Tx, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+userCols+` FROM users WHERE id = ANY($1::uuid[]);`, ids)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

func (r *userRepo) List(ctx context.Context, tx repository.Tx, f repository.UserFilter) ([]*model.User, error) {
	var (
		where []string
		args  []any
	)
	if f.Role != nil {
		args = append(args, string(*f.Role))
		where = append(where, "role=$1")
	}
	if f.ActiveOnly {
		where = append(where, "is_active")
	}
	q := `SELECT ` + userCols + ` FROM users`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

func (r *userRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.User, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+userCols+` FROM users ORDER BY created_at DESC LIMIT $1;`, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanUser)
}

func (r *userRepo) CountByRole(ctx context.Context, tx repository.Tx) (map[model.Role]int, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT role, COUNT(*) FROM users GROUP BY role;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[model.Role]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, mapReadErr(err)
		}
		out[model.Role(role)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, mapReadErr(err)
	}
	return out, nil
}

func (r *userRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func scanUser(row scanner) (*model.User, error) {
	u := &model.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &role, &u.AvatarURL,
		&u.University, &u.Field, &u.Level, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapReadErr(err)
	}
	u.Role = model.Role(role)
	return u, nil
}

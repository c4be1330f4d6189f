package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside one database transaction and hands the
// transaction handle to fn as tx. Repositories receiving that handle must run
// on it; repositories receiving NoTX fall back to the pool.
//
// The concrete type of tx is infra-defined (pgx.Tx for Postgres).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}

// UserLocker serializes work on one user's rows until tx ends.
type UserLocker interface {
	LockUser(ctx context.Context, tx Tx, userID string) error
}

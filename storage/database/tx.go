package database

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
)

type txRunner struct {
	db core.DB
}

var _ core.TxRunner = (*txRunner)(nil) // interface compliance check

func NewTxRunner(db core.DB) core.TxRunner {
	return &txRunner{db: db}
}

// RunInTx commits when fn returns nil and rolls back on error or panic.
func (r *txRunner) RunInTx(ctx context.Context, fn func(ctx context.Context, exec core.DBExecutor) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Wrap(err, fmt.Sprintf("rolling back: %v", rbErr))
			}
			return
		}
		err = errors.Wrap(tx.Commit(), "committing transaction")
	}()

	return fn(ctx, tx)
}

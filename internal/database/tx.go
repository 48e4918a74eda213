package database

import (
	"context"
	"fmt"

	"github.com/locsync/locsync/internal/database/sqldb"
)

// TxFunc is the body of a transaction. Every statement must go through q.
type TxFunc func(ctx context.Context, q *sqldb.Queries) error

// RunInTx runs fn in a transaction, committing when it returns nil and
// rolling back otherwise.
func (c *Context) RunInTx(ctx context.Context, fn TxFunc) error {
	if c == nil || c.DB == nil {
		return fmt.Errorf("database: missing database context")
	}

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	queries := queriesFromContext(c).WithTx(tx)

	if err := fn(ctx, queries); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return nil
}

// Q returns the non-transactional query helper.
func (c *Context) Q() (*sqldb.Queries, error) {
	q := queriesFromContext(c)
	if q == nil {
		return nil, fmt.Errorf("database: missing database context")
	}
	return q, nil
}

package sqldb

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// Dialect names the SQL flavour the queries are rendered for.
type Dialect string

const (
	// SQLite renders "?" placeholders.
	SQLite Dialect = "sqlite"
	// Postgres renders "$n" placeholders and enables row locks.
	Postgres Dialect = "postgres"
)

// DBTX is the subset of *sql.DB and *sql.Tx the queries run on.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries wraps a DBTX and renders every statement for one dialect.
type Queries struct {
	db      DBTX
	dialect Dialect
	sb      sq.StatementBuilderType
}

// New constructs a new Queries helper around the provided DB interface.
func New(db DBTX, dialect Dialect) *Queries {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if dialect == Postgres {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &Queries{db: db, dialect: dialect, sb: sb}
}

// WithTx returns a copy of the Queries helper scoped to the supplied transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect, sb: q.sb}
}

// Dialect reports the dialect the helper renders for.
func (q *Queries) Dialect() Dialect {
	return q.dialect
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (q *Queries) queryRow(ctx context.Context, b sq.Sqlizer) (*sql.Row, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.db.QueryRowContext(ctx, query, args...), nil
}

func (q *Queries) query(ctx context.Context, b sq.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.db.QueryContext(ctx, query, args...)
}

func (q *Queries) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return q.db.ExecContext(ctx, query, args...)
}

// insertReturningID runs an insert and returns the generated primary key.
// Both SQLite (3.35+) and PostgreSQL support RETURNING.
func (q *Queries) insertReturningID(ctx context.Context, b sq.InsertBuilder) (int64, error) {
	row, err := q.queryRow(ctx, b.Suffix("RETURNING id"))
	if err != nil {
		return 0, err
	}
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// execOne runs an update that must touch exactly one row.
func (q *Queries) execOne(ctx context.Context, b sq.Sqlizer) error {
	res, err := q.exec(ctx, b)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// forUpdate locks the selected rows until the surrounding transaction ends.
// SQLite has no row locks; its writers are serialised by BEGIN IMMEDIATE.
func (q *Queries) forUpdate(b sq.SelectBuilder) sq.SelectBuilder {
	if q.dialect == Postgres {
		return b.Suffix("FOR UPDATE")
	}
	return b
}

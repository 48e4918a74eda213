package sqldb

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var userColumns = []string{"id", "username", "email", "created_at"}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	return u, err
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row, err := q.queryRow(ctx, q.sb.Select(userColumns...).From("users").Where(sq.Eq{"username": username}))
	if err != nil {
		return User{}, err
	}
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row, err := q.queryRow(ctx, q.sb.Select(userColumns...).From("users").Where(sq.Eq{"id": id}))
	if err != nil {
		return User{}, err
	}
	return scanUser(row)
}

type InsertUserParams struct {
	Username  string
	Email     sql.NullString
	CreatedAt time.Time
}

func (q *Queries) InsertUser(ctx context.Context, arg InsertUserParams) (int64, error) {
	return q.insertReturningID(ctx, q.sb.Insert("users").
		Columns("username", "email", "created_at").
		Values(arg.Username, arg.Email, arg.CreatedAt))
}

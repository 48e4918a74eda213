package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/locsync/locsync/internal/errors"
)

// NotFound maps sql.ErrNoRows to a NotFoundError for the resource and passes
// any other error through unchanged.
func NotFound(err error, resource string, id any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError(resource, fmt.Sprint(id))
	}
	return err
}

// IsFatal reports errors after which no further statement can succeed: a
// cancelled context or a lost connection.
func IsFatal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone)
}

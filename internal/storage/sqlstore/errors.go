package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"hotel_booking/internal/domain"
)

// classify maps a driver error onto the domain taxonomy. nil means the
// cause is not one we can name (bad SQL, missing table, ...).
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, mysql.ErrInvalidConn),
		strings.HasSuffix(err.Error(), "database is closed"): // database/sql keeps this one unexported
		return domain.ErrUnavailable
	}

	var my *mysql.MySQLError
	if errors.As(err, &my) {
		return classifyMySQL(my.Number)
	}
	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		return classifyPostgres(pg.Code)
	}
	var lite *sqlite.Error
	if errors.As(err, &lite) {
		return classifySQLite(lite.Code())
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return domain.ErrUnavailable
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return domain.ErrUnavailable
	}
	return nil
}

func classifyMySQL(n uint16) error {
	switch n {
	case 1062, 1451, 1452, 1644: // duplicate key, FK parent/child, SIGNAL from a procedure
		return domain.ErrConflict
	case 1048, 1292, 1264, 1364, 1366, 1406: // null, bad date, out of range, no default, bad value, too long
		return domain.ErrInvalid
	case 1040, 1053, 1205, 2002, 2003, 2006, 2013: // too many conns, shutdown, lock wait, gone away
		return domain.ErrUnavailable
	}
	return nil
}

func classifyPostgres(code string) error {
	switch code {
	case "23505", "23503", "23P01", "40001", "40P01", "P0001":
		return domain.ErrConflict
	case "23502", "23514":
		return domain.ErrInvalid
	}
	switch {
	case strings.HasPrefix(code, "22"): // data exception
		return domain.ErrInvalid
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"), strings.HasPrefix(code, "57P"):
		return domain.ErrUnavailable
	}
	return nil
}

func classifySQLite(code int) error {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return domain.ErrConflict
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
		return domain.ErrInvalid
	}
	switch code & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return domain.ErrUnavailable
	case sqlite3.SQLITE_MISMATCH:
		return domain.ErrInvalid
	case sqlite3.SQLITE_CONSTRAINT:
		return domain.ErrConflict
	}
	return nil
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.StoreError{Op: op, Kind: classify(err), Err: err}
}

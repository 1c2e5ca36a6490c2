package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

// Open connects with the dialect's driver, sizes the pool and verifies the
// connection. The caller owns the returned pool and must Close it.
func Open(ctx context.Context, d Dialect, dsn string, pc PoolConfig) (*sql.DB, error) {
	if d.Name == SQLite.Name {
		dsn = sqliteDSN(dsn)
	}
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}

	if d.Name == SQLite.Name && strings.Contains(dsn, ":memory:") {
		// every connection to :memory: is a separate database
		pc.MaxOpenConns, pc.MaxIdleConns, pc.ConnMaxLifetime = 1, 1, 0
	}
	if pc.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pc.MaxOpenConns)
	}
	if pc.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pc.MaxIdleConns)
	}
	db.SetConnMaxLifetime(pc.ConnMaxLifetime)

	timeout := pc.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name, err)
	}
	return db, nil
}

// sqliteDSN adds the per-connection pragmas the schema relies on. The driver
// applies _pragma parameters to every connection it opens, so foreign keys
// and cascades hold for the whole pool.
func sqliteDSN(dsn string) string {
	var add []string
	if !strings.Contains(dsn, "foreign_keys") {
		add = append(add, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		add = append(add, "_pragma=busy_timeout(5000)")
	}
	if len(add) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(add, "&")
}

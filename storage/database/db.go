package database

import (
	"context"
	"database/sql"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/sems/core"
	appfs "github.com/trezcool/sems/fs"
)

const driverName = "postgres"

// DSN builds the connection string from the configured url, accepting the
// `jdbc:postgresql://` form found in database.properties files.
func DSN(conf core.DatabaseConfig) (string, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(conf.URL), "jdbc:")
	if raw == "" {
		return "", errors.New("database url is not configured")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrap(err, "parsing database url")
	}
	if u.Scheme == "postgresql" {
		u.Scheme = driverName
	}
	if u.Scheme != driverName {
		return "", errors.Errorf("unsupported database url scheme %q", u.Scheme)
	}

	if conf.User != "" {
		u.User = url.UserPassword(conf.User, conf.Password)
	}

	sslMode := "require"
	if conf.DisableTLS {
		sslMode = "disable"
	}
	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", sslMode)
	}
	q.Set("timezone", "utc")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Open opens the connection pool and waits for the database to answer.
func Open(ctx context.Context, conf core.DatabaseConfig) (*sqlx.DB, error) {
	dsn, err := DSN(conf)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(conf.MaxOpenConns)
	db.SetMaxIdleConns(conf.MaxIdleConns)
	db.SetConnMaxLifetime(conf.ConnMaxLifetime)

	if err = ping(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "DB ping cancelled")
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func init() {
	goose.SetBaseFS(appfs.FS)
}

func Migrate(db *sql.DB) error {
	if err := goose.SetDialect(driverName); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// Reset truncates every table and restarts their ids.
func Reset(ctx context.Context, exec core.DBExecutor) error {
	q := "TRUNCATE results, exam_registrations, exams, examinees, users RESTART IDENTITY CASCADE"
	if _, err := exec.ExecContext(ctx, q); err != nil {
		return errors.Wrap(err, "truncating tables")
	}
	return nil
}

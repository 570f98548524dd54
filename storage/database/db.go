package database

import (
	"database/sql"
	"embed"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/raresamza/mythesis/core"
)

//go:embed migrations/*.sql
var migrations embed.FS

func open(dbName string, admin bool, conf *core.Config) (*sqlx.DB, error) {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPass)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return sqlx.Open(conf.Database.Engine, u.String())
}

func Open(conf *core.Config) (*sqlx.DB, error) {
	return open(conf.Database.Name, false, conf)
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// CreateIfNotExist creates the application database when an admin user is
// configured and the database is missing. No-op otherwise.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.AdminUser == "" {
		return nil
	}

	db, err := open("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening admin connection")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return err
	}

	var exists bool
	err = db.QueryRow("SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return errors.Wrap(err, "checking database")
	}
	if !exists {
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %s", conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// Migrate applies all pending migrations.
func Migrate(db *sqlx.DB) error {
	return RunMigrationCommand(db, "up")
}

// RunMigrationCommand runs an arbitrary goose command ("up", "down", "status", ...)
// against the embedded migrations.
func RunMigrationCommand(db *sqlx.DB, command string, args ...string) error {
	if err := ping(db); err != nil {
		return err
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	if err := goose.Run(command, db.DB, "migrations", args...); err != nil {
		return errors.Wrapf(err, "running migration command %q", command)
	}
	return nil
}

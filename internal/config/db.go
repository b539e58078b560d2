package config

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	zlog "github.com/rs/zerolog/log"
)

// Pool limits for the accounts database.
const (
	dbMaxOpen     = 20
	dbMaxIdle     = 10
	dbIdleTimeout = 5 * time.Minute
	dbMaxLifetime = time.Hour
	dbPingTimeout = 3 * time.Second
)

// NewDB opens a pgx-backed pool and fails fast when the server is unreachable.
func NewDB(dsn string, debug bool) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("config: empty DB DSN")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(dbMaxOpen)
	db.SetMaxIdleConns(dbMaxIdle)
	db.SetConnMaxIdleTime(dbIdleTimeout)
	db.SetConnMaxLifetime(dbMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if debug {
		var user, name, version string
		err := db.QueryRowContext(ctx,
			`SELECT current_user, current_database(), current_setting('server_version')`,
		).Scan(&user, &name, &version)
		if err != nil {
			zlog.Warn().Err(err).Msg("db connected; session info unavailable")
		} else {
			zlog.Info().Str("user", user).Str("db", name).Str("version", version).Msg("db connected")
		}
	}

	return db, nil
}

package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	pkgctx "github.com/baechuer/account-service/internal/pkg/context"
)

const serviceName = "account-service"

var Logger zerolog.Logger

func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter configures the package and global loggers from
// LOG_LEVEL (default info) and LOG_FORMAT (json|console, default console).
func InitWithWriter(w io.Writer) {
	if os.Getenv("LOG_FORMAT") != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(w).
		Level(levelFromEnv()).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	zlog.Logger = Logger
}

func levelFromEnv() zerolog.Level {
	lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// WithCtx returns the package logger tagged with the request and caller ids found in ctx.
func WithCtx(ctx context.Context) *zerolog.Logger {
	rid, acc := pkgctx.GetRequestID(ctx), pkgctx.GetAccountID(ctx)
	if rid == "" && acc == "" {
		l := Logger
		return &l
	}

	c := Logger.With()
	if rid != "" {
		c = c.Str("request_id", rid)
	}
	if acc != "" {
		c = c.Str("account_id", acc)
	}
	l := c.Logger()
	return &l
}

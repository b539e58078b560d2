package audit

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	pkgctx "github.com/baechuer/account-service/internal/pkg/context"
)

// Logger provides structured audit logging for account business events.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// warnActions are logged at warn level; everything else is info.
var warnActions = map[string]bool{
	"login_failed":        true,
	"signup_conflict":     true,
	"admin_create_denied": true,
	"account_deleted":     true,
}

// Record logs one audit event. Fields named "email" are masked.
func (l *Logger) Record(ctx context.Context, action string, fields map[string]string) {
	ev := l.log.Info()
	if warnActions[action] {
		ev = l.log.Warn()
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ev = ev.Str("action", action)
	for _, k := range keys {
		v := fields[k]
		switch k {
		case "email":
			v = maskEmail(v)
		case "identifier":
			v = maskIdentifier(v)
		}
		ev = ev.Str(k, v)
	}
	if _, ok := fields["request_id"]; !ok {
		if rid := pkgctx.GetRequestID(ctx); rid != "" {
			ev = ev.Str("request_id", rid)
		}
	}
	ev.Msg("audit")
}

// Func adapts Record to the service's audit hook.
// The service passes the request id as a field.
func (l *Logger) Func() func(action string, fields map[string]string) {
	return func(action string, fields map[string]string) {
		l.Record(context.Background(), action, fields)
	}
}

// maskEmail partially masks email for privacy in logs
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := 0
	for i, c := range email {
		if c == '@' {
			at = i
			break
		}
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}

// maskIdentifier handles login identifiers, which are either an email or a phone.
func maskIdentifier(id string) string {
	for _, c := range id {
		if c == '@' {
			return maskEmail(id)
		}
	}
	if len(id) <= 4 {
		return "***"
	}
	return "***" + id[len(id)-4:]
}

package ctx

import (
	"context"

	"github.com/krakosik/pollbot/internal/dto"
	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserContextKey   contextKey = "user"
	LoggerContextKey contextKey = "logger"
)

type User = dto.APIUser

func GetUserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(UserContextKey).(User)
	return user, ok
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// WithLogger attaches a request scoped log entry.
func WithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, LoggerContextKey, entry)
}

// Logger returns the request scoped entry, or one bound to the standard logger.
func Logger(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if entry, ok := ctx.Value(LoggerContextKey).(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

package ctx

import (
	"context"
	"testing"

	"github.com/krakosik/pollbot/internal/dto"
	"github.com/sirupsen/logrus"
)

func TestLoggerFallsBackToStandardLogger(t *testing.T) {
	entry := Logger(context.Background())
	if entry == nil || entry.Logger != logrus.StandardLogger() {
		t.Fatalf("expected an entry bound to the standard logger, got %+v", entry)
	}
}

func TestLoggerReturnsAttachedEntry(t *testing.T) {
	entry := logrus.WithField("request_id", "abc")
	got := Logger(WithLogger(context.Background(), entry))
	if got.Data["request_id"] != "abc" {
		t.Fatalf("expected request_id field, got %v", got.Data)
	}
}

func TestUserRoundTrip(t *testing.T) {
	c := WithUser(context.Background(), dto.APIUser{UID: "u1", Email: "a@b.c"})
	user, ok := GetUserFromContext(c)
	if !ok || user.UID != "u1" {
		t.Fatalf("unexpected user %+v ok=%v", user, ok)
	}
	if _, ok := GetUserFromContext(context.Background()); ok {
		t.Fatal("expected no user in empty context")
	}
}

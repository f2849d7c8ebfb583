package service

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/krakosik/pollbot/internal/dto"
)

type fakeAuthClient struct {
	token *auth.Token
	err   error
}

func (f fakeAuthClient) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return f.token, f.err
}

var errExpired = errors.New("token expired")

func isExpired(err error) bool {
	return errors.Is(err, errExpired)
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		name    string
		client  fakeAuthClient
		token   string
		want    error
		wantUID string
	}{
		{
			name:    "valid",
			client:  fakeAuthClient{token: &auth.Token{UID: "abc", Claims: map[string]interface{}{"email": "a@b.c"}}},
			token:   "t",
			wantUID: "abc",
		},
		{"missing token", fakeAuthClient{}, "", dto.ErrNotAuthorized, ""},
		{"expired", fakeAuthClient{err: errExpired}, "t", dto.ErrNotAuthorized, ""},
		{"verification error", fakeAuthClient{err: errors.New("boom")}, "t", dto.ErrInternalFailure, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newAuthService(tt.client, isExpired)
			user, err := service.ValidateToken(context.Background(), tt.token)
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}
				return
			}
			if err != nil || user.UID != tt.wantUID || user.Email != "a@b.c" {
				t.Fatalf("unexpected user %+v (%v)", user, err)
			}
		})
	}
}

func TestValidateTokenWithoutClient(t *testing.T) {
	service := newAuthService(nil, isExpired)
	if service.Enabled() {
		t.Fatal("expected disabled auth")
	}
	if _, err := service.ValidateToken(context.Background(), "t"); !errors.Is(err, dto.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

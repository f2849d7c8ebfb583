package client

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// AuthClient verifies Firebase ID tokens presented to the admin API.
type AuthClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type TokenExpireVerifier func(err error) bool

func newFirebaseAuthClient(ctx context.Context, credentials []byte) (AuthClient, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, err
	}
	return app.Auth(ctx)
}

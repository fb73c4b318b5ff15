package auth

import (
	"context"
	"net/http"

	"google.golang.org/api/drive/v3"
)

const (
	DEFAULT_CREDENTIALS_PATH = "credentials.json"
	DEFAULT_TOKEN_PATH       = "token.json"
)

// Continuation receives the authorized client once a token is available.
type Continuation func(ctx context.Context, client *http.Client) error

type Authenticator interface {
	Authorize(ctx context.Context, next Continuation) error
}

type Config struct {
	CredentialsPath string
	TokenPath       string
	Scopes          []string
}

func (c Config) withDefaults() Config {
	if c.CredentialsPath == "" {
		c.CredentialsPath = DEFAULT_CREDENTIALS_PATH
	}
	if c.TokenPath == "" {
		c.TokenPath = DEFAULT_TOKEN_PATH
	}
	if len(c.Scopes) == 0 {
		c.Scopes = []string{drive.DriveReadonlyScope}
	}
	return c
}

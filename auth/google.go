package auth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"fieldops-drive/log"
)

type GoogleAuthenticator struct {
	config    *oauth2.Config
	tokenPath string
	prompter  Prompter
	logger    logrus.FieldLogger
}

var _ Authenticator = (*GoogleAuthenticator)(nil)

func NewGoogleAuthenticator(cfg Config, prompter Prompter, logger logrus.FieldLogger) (*GoogleAuthenticator, error) {
	cfg = cfg.withDefaults()

	b, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials: %w", err)
	}

	config, err := google.ConfigFromJSON(b, cfg.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	if logger == nil {
		logger = log.Discard()
	}

	return &GoogleAuthenticator{
		config:    config,
		tokenPath: cfg.TokenPath,
		prompter:  prompter,
		logger:    logger,
	}, nil
}

// Authorize runs next with an authorized client. A cached token is used
// as-is; otherwise the operator is prompted for a code. If the code
// exchange fails the error is logged and next is never called.
func (g *GoogleAuthenticator) Authorize(ctx context.Context, next Continuation) error {
	tok, err := LoadToken(g.tokenPath)
	if err == nil {
		g.logger.WithField("path", g.tokenPath).Debug("using cached oauth token")
		return next(ctx, g.config.Client(ctx, tok))
	}
	if !errors.Is(err, fs.ErrNotExist) {
		g.logger.WithError(err).Warn("ignoring unreadable token file")
	}

	tok, err = g.getTokenFromWeb(ctx)
	if err != nil {
		g.logger.WithError(err).Error("Error retrieving access token")
		return nil
	}

	if err := SaveToken(g.tokenPath, tok); err != nil {
		return err
	}
	g.logger.WithField("path", g.tokenPath).Info("token stored")

	return next(ctx, g.config.Client(ctx, tok))
}

func (g *GoogleAuthenticator) AuthCodeURL() string {
	return g.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

func (g *GoogleAuthenticator) getTokenFromWeb(ctx context.Context) (*oauth2.Token, error) {
	authCode, err := g.prompter.PromptCode(g.AuthCodeURL())
	if err != nil {
		return nil, err
	}

	tok, err := g.config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}

	return tok, nil
}

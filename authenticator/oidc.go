package authenticator

import (
	"context"
	"errors"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/blogem/defect-tracker/config"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/models"
)

// UserLookup resolves an SSO identity to a local user, which owns the role.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// OIDCAuthenticator verifies ID tokens from an external OpenID Connect provider
// and drives the authorization-code login flow.
type OIDCAuthenticator struct {
	verifier *oidc.IDTokenVerifier
	config   oauth2.Config
	users    UserLookup
}

// NewOIDCAuthenticator discovers the provider and creates an OIDC authenticator
func NewOIDCAuthenticator(ctx context.Context, cfg config.OIDCConfig, users UserLookup) (*OIDCAuthenticator, error) {
	// Validate required configuration
	if cfg.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, err
	}

	conf := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	verifier := provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	return newOIDCAuthenticator(verifier, conf, users), nil
}

func newOIDCAuthenticator(verifier *oidc.IDTokenVerifier, conf oauth2.Config, users UserLookup) *OIDCAuthenticator {
	return &OIDCAuthenticator{verifier: verifier, config: conf, users: users}
}

// GetAuthURL returns the provider's authorization URL
func (a *OIDCAuthenticator) GetAuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for tokens
func (a *OIDCAuthenticator) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	oauth2Token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, &errs.Error{Kind: errs.KindUnauthenticated, Message: "failed to exchange authorization code", Err: err}
	}

	token := &Token{
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
		Expiry:       oauth2Token.Expiry.Unix(),
	}

	// Extract ID token if present
	if idToken, ok := oauth2Token.Extra("id_token").(string); ok {
		token.IDToken = idToken
	}
	if token.IDToken == "" {
		return nil, errs.Unauthenticated("no id_token in token response")
	}

	return token, nil
}

type oidcClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
}

// Authenticate verifies a raw ID token and maps its email to a local user
func (a *OIDCAuthenticator) Authenticate(ctx context.Context, rawIDToken string) (*models.Principal, error) {
	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, &errs.Error{Kind: errs.KindUnauthenticated, Message: "invalid id token", Err: err}
	}

	var claims oidcClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, &errs.Error{Kind: errs.KindUnauthenticated, Message: "unreadable id token claims", Err: err}
	}
	if claims.Email == "" {
		return nil, errs.Unauthenticated("id token has no email claim")
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return nil, errs.Unauthenticated("email not verified by identity provider")
	}

	user, err := a.users.GetByEmail(ctx, strings.ToLower(claims.Email))
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.Unauthenticated("no local account for " + claims.Email)
	}
	if err != nil {
		return nil, err
	}

	p := models.PrincipalOf(user)
	return &p, nil
}

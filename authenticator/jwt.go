package authenticator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/blogem/defect-tracker/config"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/models"
)

// Claims carried by locally issued tokens
type Claims struct {
	UserID string      `json:"userId"`
	Role   models.Role `json:"role"`
	Name   string      `json:"name"`
	jwt.RegisteredClaims
}

// JWTAuthenticator issues and verifies HS256 bearer tokens
type JWTAuthenticator struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewJWTAuthenticator creates a JWT authenticator from configuration
func NewJWTAuthenticator(cfg config.JWTConfig) (*JWTAuthenticator, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("jwt ttl must be positive")
	}
	return &JWTAuthenticator{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the principal and returns it with its expiry
func (a *JWTAuthenticator) Issue(p models.Principal) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)

	claims := &Claims{
		UserID: p.UserID,
		Role:   p.Role,
		Name:   p.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}

// Authenticate verifies signature, issuer and expiry, then returns the embedded principal
func (a *JWTAuthenticator) Authenticate(_ context.Context, tokenString string) (*models.Principal, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, &errs.Error{Kind: errs.KindUnauthenticated, Message: "invalid or expired token", Err: err}
	}

	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, errs.Unauthenticated("token does not carry a valid principal")
	}

	return &models.Principal{UserID: claims.UserID, Name: claims.Name, Role: claims.Role}, nil
}

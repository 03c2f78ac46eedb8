package authenticator

import (
	"context"
	"errors"

	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/models"
)

// Authenticator resolves a bearer token to the principal it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Principal, error)
}

// Token represents tokens returned by an external identity provider
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       int64
}

// Chain tries each authenticator in order and returns the first principal resolved.
type Chain []Authenticator

// Authenticate implements Authenticator
func (c Chain) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	if token == "" {
		return nil, errs.Unauthenticated("missing bearer token")
	}

	var failures []error
	for _, a := range c {
		if a == nil {
			continue
		}
		p, err := a.Authenticate(ctx, token)
		if err == nil {
			return p, nil
		}
		// Storage trouble is not the caller's fault; surface it instead of a 401.
		if errs.KindOf(err) == errs.KindStore {
			return nil, err
		}
		failures = append(failures, err)
	}

	return nil, &errs.Error{
		Kind:    errs.KindUnauthenticated,
		Message: "invalid or expired token",
		Err:     errors.Join(failures...),
	}
}

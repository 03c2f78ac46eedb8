package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/repositories"
)

// TokenIssuer signs bearer tokens for authenticated principals
type TokenIssuer interface {
	Issue(p models.Principal) (string, time.Time, error)
}

// LoginResult is returned by a successful password login
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// AuthService interface defines credential checks and token issuance
type AuthService interface {
	Login(ctx context.Context, form *models.LoginForm) (*LoginResult, error)
	// IssueFor signs a token for a principal identified elsewhere, such as SSO.
	IssueFor(ctx context.Context, p models.Principal) (*LoginResult, error)
}

type authService struct {
	userRepo repositories.UserRepository
	tokens   TokenIssuer
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, tokens TokenIssuer) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

// compared against when the email is unknown so both failures cost the same
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.MinCost)

func invalidCredentials() error {
	return errs.Unauthenticated("invalid credentials")
}

func (s *authService) Login(ctx context.Context, form *models.LoginForm) (*LoginResult, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(form.Email)))
	if errors.Is(err, errs.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(form.Password))
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		return nil, invalidCredentials()
	}

	return s.issue(user)
}

func (s *authService) IssueFor(ctx context.Context, p models.Principal) (*LoginResult, error) {
	user, err := s.userRepo.GetByID(ctx, p.UserID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.Unauthenticated("account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *authService) issue(user *models.User) (*LoginResult, error) {
	if s.tokens == nil {
		return nil, errors.New("no token issuer configured")
	}
	token, expiresAt, err := s.tokens.Issue(models.PrincipalOf(user))
	if err != nil {
		return nil, errs.Wrap(err, "failed to issue token")
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

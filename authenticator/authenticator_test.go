package authenticator

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/blogem/defect-tracker/config"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/models"
)

func newTestJWT(t *testing.T) *JWTAuthenticator {
	t.Helper()
	a, err := NewJWTAuthenticator(config.JWTConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "defect-tracker"})
	require.NoError(t, err)
	return a
}

func TestNewJWTAuthenticator_RequiresSecret(t *testing.T) {
	_, err := NewJWTAuthenticator(config.JWTConfig{TTL: time.Hour})
	assert.Error(t, err)

	_, err = NewJWTAuthenticator(config.JWTConfig{Secret: "s"})
	assert.Error(t, err)
}

func TestJWT_IssueAndAuthenticate(t *testing.T) {
	a := newTestJWT(t)
	p := models.Principal{UserID: "u-1", Name: "Sam Supervisor", Role: models.RoleSupervisor}

	token, expiresAt, err := a.Issue(p)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	got, err := a.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, p, *got)
}

func TestJWT_RejectsExpiredToken(t *testing.T) {
	a := newTestJWT(t)
	issuedAt := time.Now().Add(-2 * time.Hour)
	a.now = func() time.Time { return issuedAt }

	token, _, err := a.Issue(models.Principal{UserID: "u-1", Role: models.RoleOperator})
	require.NoError(t, err)

	a.now = time.Now
	_, err = a.Authenticate(context.Background(), token)
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
}

func TestJWT_RejectsForeignSignature(t *testing.T) {
	a := newTestJWT(t)
	other, err := NewJWTAuthenticator(config.JWTConfig{Secret: "other-secret", TTL: time.Hour, Issuer: "defect-tracker"})
	require.NoError(t, err)

	token, _, err := other.Issue(models.Principal{UserID: "u-1", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), token)
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
}

func TestJWT_RejectsWrongIssuer(t *testing.T) {
	a := newTestJWT(t)
	other, err := NewJWTAuthenticator(config.JWTConfig{Secret: "test-secret", TTL: time.Hour, Issuer: "someone-else"})
	require.NoError(t, err)

	token, _, err := other.Issue(models.Principal{UserID: "u-1", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), token)
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
}

func TestJWT_RejectsUnknownRole(t *testing.T) {
	a := newTestJWT(t)
	token, _, err := a.Issue(models.Principal{UserID: "u-1", Role: models.Role("Janitor")})
	require.NoError(t, err)

	_, err = a.Authenticate(context.Background(), token)
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
}

func TestJWT_RejectsGarbage(t *testing.T) {
	_, err := newTestJWT(t).Authenticate(context.Background(), "not-a-token")
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
}

type stubAuthenticator struct {
	principal *models.Principal
	err       error
	calls     int
}

func (s *stubAuthenticator) Authenticate(context.Context, string) (*models.Principal, error) {
	s.calls++
	return s.principal, s.err
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	want := &models.Principal{UserID: "u-2", Role: models.RoleQuality}

	t.Run("empty token", func(t *testing.T) {
		_, err := Chain{&stubAuthenticator{principal: want}}.Authenticate(ctx, "")
		assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
	})

	t.Run("falls through to next", func(t *testing.T) {
		first := &stubAuthenticator{err: errs.Unauthenticated("nope")}
		second := &stubAuthenticator{principal: want}
		got, err := Chain{first, nil, second}.Authenticate(ctx, "tok")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 1, first.calls)
	})

	t.Run("all fail", func(t *testing.T) {
		_, err := Chain{
			&stubAuthenticator{err: errs.Unauthenticated("a")},
			&stubAuthenticator{err: errs.Unauthenticated("b")},
		}.Authenticate(ctx, "tok")
		assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
		assert.Equal(t, "invalid or expired token", errs.PublicMessage(err))
	})

	t.Run("store failure stops the chain", func(t *testing.T) {
		storeErr := errs.Store(errors.New("disk full"), "lookup failed")
		next := &stubAuthenticator{principal: want}
		_, err := Chain{&stubAuthenticator{err: storeErr}, next}.Authenticate(ctx, "tok")
		assert.Equal(t, errs.KindStore, errs.KindOf(err))
		assert.Zero(t, next.calls)
	})
}

type stubUsers map[string]*models.User

func (s stubUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := s[email]; ok {
		return u, nil
	}
	return nil, errs.NotFound("user %s not found", email)
}

const testIssuer = "https://idp.example.test"

type oidcFixture struct {
	key  *rsa.PrivateKey
	auth *OIDCAuthenticator
}

func newOIDCFixture(t *testing.T) *oidcFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	verifier := oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: "defect-tracker"})

	users := stubUsers{
		"qa@plant.test": {ID: "u-qa", Name: "Quinn QA", Email: "qa@plant.test", Role: models.RoleQuality},
	}
	conf := oauth2.Config{
		ClientID:    "defect-tracker",
		RedirectURL: "http://localhost:8080/api/auth/oidc/callback",
		Endpoint:    oauth2.Endpoint{AuthURL: testIssuer + "/authorize", TokenURL: testIssuer + "/token"},
		Scopes:      []string{oidc.ScopeOpenID, "email"},
	}
	return &oidcFixture{key: key, auth: newOIDCAuthenticator(verifier, conf, users)}
}

func (f *oidcFixture) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(f.key)
	require.NoError(t, err)
	return token
}

func idClaims(email string) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":   testIssuer,
		"aud":   "defect-tracker",
		"sub":   "idp|123",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
		"email": email,
	}
}

func TestOIDC_GetAuthURL(t *testing.T) {
	f := newOIDCFixture(t)
	u := f.auth.GetAuthURL("state-123")
	assert.Contains(t, u, testIssuer+"/authorize")
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "client_id=defect-tracker")
}

func TestOIDC_AuthenticateMapsLocalUser(t *testing.T) {
	f := newOIDCFixture(t)
	token := f.sign(t, idClaims("QA@plant.test"))

	p, err := f.auth.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u-qa", p.UserID)
	assert.Equal(t, models.RoleQuality, p.Role)
}

func TestOIDC_UnknownEmail(t *testing.T) {
	f := newOIDCFixture(t)
	_, err := f.auth.Authenticate(context.Background(), f.sign(t, idClaims("stranger@plant.test")))
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
}

func TestOIDC_UnverifiedEmail(t *testing.T) {
	f := newOIDCFixture(t)
	claims := idClaims("qa@plant.test")
	claims["email_verified"] = false

	_, err := f.auth.Authenticate(context.Background(), f.sign(t, claims))
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
}

func TestOIDC_WrongAudience(t *testing.T) {
	f := newOIDCFixture(t)
	claims := idClaims("qa@plant.test")
	claims["aud"] = "another-app"

	_, err := f.auth.Authenticate(context.Background(), f.sign(t, claims))
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
}

func TestOIDC_RejectsLocalHS256Token(t *testing.T) {
	f := newOIDCFixture(t)
	local, _, err := newTestJWT(t).Issue(models.Principal{UserID: "u-1", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = f.auth.Authenticate(context.Background(), local)
	assert.Equal(t, errs.KindUnauthenticated, errs.KindOf(err))
}

func TestChain_LocalThenOIDC(t *testing.T) {
	f := newOIDCFixture(t)
	chain := Chain{newTestJWT(t), f.auth}

	p, err := chain.Authenticate(context.Background(), f.sign(t, idClaims("qa@plant.test")))
	require.NoError(t, err)
	assert.Equal(t, "u-qa", p.UserID)
}

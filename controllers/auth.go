package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/http"

	"gitea.com/go-chi/session"

	"github.com/blogem/defect-tracker/authenticator"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/middleware"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/services"
)

const sessionStateKey = "oidc_state"

type AuthController struct {
	auth services.AuthService
	sso  *authenticator.OIDCAuthenticator
}

func NewAuthController(auth services.AuthService, sso *authenticator.OIDCAuthenticator) *AuthController {
	return &AuthController{auth: auth, sso: sso}
}

// Login handles POST /api/auth/login with an email and password
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var form models.LoginForm
	if err := decodeJSON(w, r, &form); err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	result, err := ac.auth.Login(r.Context(), &form)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, result)
}

// Me handles GET /api/auth/me
func (ac *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, principal(r))
}

// SSOLogin initiates the OpenID Connect authorization-code flow
func (ac *AuthController) SSOLogin(w http.ResponseWriter, r *http.Request) {
	if ac.sso == nil {
		middleware.WriteError(w, r, errs.NotFound("single sign-on is not configured"))
		return
	}

	// Generate random state
	state, err := generateRandomState()
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	// Save the state in the session to validate in callback
	sess := session.GetSession(r)
	if err := sess.Set(sessionStateKey, state); err != nil {
		middleware.WriteError(w, r, errs.Wrap(err, "failed to store login state"))
		return
	}

	http.Redirect(w, r, ac.sso.GetAuthURL(state), http.StatusTemporaryRedirect)
}

// SSOCallback handles the identity provider's redirect and returns a local token
func (ac *AuthController) SSOCallback(w http.ResponseWriter, r *http.Request) {
	if ac.sso == nil {
		middleware.WriteError(w, r, errs.NotFound("single sign-on is not configured"))
		return
	}

	// Verify state
	sess := session.GetSession(r)
	storedState, _ := sess.Get(sessionStateKey).(string)
	if storedState == "" {
		middleware.WriteError(w, r, errs.Validation("login state not found in session"))
		return
	}
	if r.URL.Query().Get("state") != storedState {
		middleware.WriteError(w, r, errs.Validation("invalid state parameter"))
		return
	}
	_ = sess.Delete(sessionStateKey)

	// Exchange the code for a token
	token, err := ac.sso.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	p, err := ac.sso.Authenticate(r.Context(), token.IDToken)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	result, err := ac.auth.IssueFor(r.Context(), *p)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	middleware.Logger(r.Context()).Info("sso login", slog.String("user", p.UserID), slog.String("role", string(p.Role)))
	middleware.WriteJSON(w, http.StatusOK, result)
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/blogem/defect-tracker/authenticator"
	"github.com/blogem/defect-tracker/errs"
	"github.com/blogem/defect-tracker/models"
	"github.com/blogem/defect-tracker/services"
	"github.com/blogem/defect-tracker/userctx"
)

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// Controllers holds all controller instances
type Controllers struct {
	Auth      *AuthController
	Defects   *DefectController
	Capa      *CapaController
	Audit     *AuditController
	Analytics *AnalyticsController
	Seed      *SeedController
	Health    *HealthController
}

// NewControllers creates and initializes all controller instances.
// sso may be nil when single sign-on is not configured.
func NewControllers(services *services.Services, sso *authenticator.OIDCAuthenticator) *Controllers {
	return &Controllers{
		Auth:      NewAuthController(services.Auth, sso),
		Defects:   NewDefectController(services.Defects),
		Capa:      NewCapaController(services.Capa),
		Audit:     NewAuditController(services.Audit),
		Analytics: NewAnalyticsController(services.Analytics),
		Seed:      NewSeedController(services.Seed),
		Health:    NewHealthController(),
	}
}

// decodeJSON reads the request body into dst. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errs.Validation("request body is required")
		case errors.As(err, &maxErr):
			return errs.Validation("request body too large")
		default:
			return &errs.Error{Kind: errs.KindValidation, Message: "malformed JSON body", Err: err}
		}
	}
	return nil
}

// principal returns the authenticated caller. Routes behind RequireAuth always have one.
func principal(r *http.Request) models.Principal {
	p, _ := userctx.GetPrincipal(r.Context())
	return p
}

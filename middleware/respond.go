package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/blogem/defect-tracker/errs"
)

type errorBody struct {
	Code    errs.Kind         `json:"code"`
	Message string            `json:"message"`
	Fields  []errs.FieldError `json:"fields,omitempty"`
}

// WriteJSON writes v as the JSON response body with the given status code
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("err", err))
	}
}

// WriteError maps err onto its HTTP status and the {error:{code,message,fields}} body.
// Store and unknown failures are logged with their full chain; the caller only
// sees a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	status := errs.HTTPStatus(kind)

	logger := Logger(r.Context())
	switch kind {
	case errs.KindStore, errs.KindUnknown:
		logger.Error("request failed", slog.Any("err", errs.Loggable(err)))
	default:
		logger.Debug("request rejected", slog.Any("err", errs.Loggable(err)))
	}

	WriteJSON(w, status, map[string]errorBody{
		"error": {
			Code:    kind,
			Message: errs.PublicMessage(err),
			Fields:  errs.PublicFields(err),
		},
	})
}

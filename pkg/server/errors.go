package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aletheon/eleutherios-mvp-sub002/pkg/engine"
	ruleerrors "github.com/aletheon/eleutherios-mvp-sub002/pkg/rule/errors"
	"github.com/aletheon/eleutherios-mvp-sub002/pkg/store"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`

	// Code names the error category for clients that branch on it.
	Code string `json:"code"`

	// Details carries per-line rule errors for document rejections.
	Details []ruleDetail `json:"details,omitempty"`
}

type ruleDetail struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Location   string `json:"location,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

type clientError struct {
	cause error
}

func (e *clientError) Error() string { return e.cause.Error() }
func (e *clientError) Unwrap() error { return e.cause }

// badRequest marks a malformed request so writeError answers 400 instead
// of 500.
func badRequest(err error) error {
	return &clientError{cause: err}
}

// writeError translates an engine or storage error into an HTTP status and
// a JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, body := classify(err)

	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		// Do not leak internals on server-side failures.
		body.Error = "internal server error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func classify(err error) (int, errorBody) {
	var (
		notFound  *engine.NotFoundError
		denied    *engine.PermissionDeniedError
		guard     *engine.GuardNotSatisfiedError
		execution *engine.ExecutionError
		ruleErr   *ruleerrors.Error
		ruleList  *ruleerrors.ErrorList
		client    *clientError
	)

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, errorBody{Error: err.Error(), Code: "not_found"}

	case errors.As(err, &denied):
		return http.StatusForbidden, errorBody{Error: err.Error(), Code: "permission_denied"}

	case errors.As(err, &guard):
		return http.StatusConflict, errorBody{Error: err.Error(), Code: "guard_not_satisfied"}

	case errors.As(err, &ruleList):
		body := errorBody{Error: "rule document rejected", Code: "invalid_document"}
		for _, e := range ruleList.Errors {
			body.Details = append(body.Details, toDetail(e))
		}
		return http.StatusUnprocessableEntity, body

	case errors.As(err, &ruleErr):
		return http.StatusUnprocessableEntity, errorBody{
			Error:   "rule rejected",
			Code:    "invalid_rule",
			Details: []ruleDetail{toDetail(ruleErr)},
		}

	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, errorBody{Error: err.Error(), Code: "conflict"}

	case errors.As(err, &execution):
		// Dispatch failures keep their underlying classification: a Policy
		// rule naming a missing template is the client's 404, not our 500.
		code, body := classify(execution.Cause)
		if code < http.StatusInternalServerError {
			return code, body
		}
		return http.StatusInternalServerError, errorBody{Error: err.Error(), Code: "execution_failed"}

	case errors.As(err, &client):
		return http.StatusBadRequest, errorBody{Error: err.Error(), Code: "bad_request"}

	default:
		return http.StatusInternalServerError, errorBody{Error: err.Error(), Code: "internal"}
	}
}

func toDetail(e *ruleerrors.Error) ruleDetail {
	d := ruleDetail{
		Type:       string(e.Type),
		Message:    e.Message,
		Suggestion: e.Suggestion,
	}
	if e.Location.IsValid() {
		d.Location = e.Location.String()
	}
	return d
}

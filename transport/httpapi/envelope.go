// Package httpapi is the ledger's HTTP/JSON transport: one handler-group
// struct per resource over a stdlib net/http.ServeMux, the
// {success,data,error} envelope, and structured request logging.
//
// Grounded on certenIO-certen-validator/pkg/server/*_handlers.go — the
// same shape (explicit method checks, a writeJSONError-style helper,
// manual path-segment parsing rather than a router dependency) applied to
// the ledger's resources instead of validator/proof/ledger endpoints.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/crasofuentes-hub/irrl/apierr"
)

// envelopeError is the wire shape of Envelope.Error.
type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the bit-exact response shape every endpoint returns.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *envelopeError `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Success: true, Data: data})
}

// writeError renders err as the envelope's error branch, mapping its
// apierr.Code to the matching HTTP status. Errors that are not an
// *apierr.Error are reported as a generic 500, never leaking their
// message to the caller.
func writeError(w http.ResponseWriter, err error) {
	code := apierr.CodeOf(err)
	if code == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(Envelope{
			Success: false,
			Error:   &envelopeError{Code: string(apierr.CodeInternal), Message: "internal error"},
		})
		return
	}

	var details any
	var apiErr *apierr.Error
	if e, ok := err.(*apierr.Error); ok {
		apiErr = e
		details = apiErr.Details
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(Envelope{
		Success: false,
		Error:   &envelopeError{Code: string(code), Message: err.Error(), Details: details},
	})
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_ = json.NewEncoder(w).Encode(Envelope{
		Success: false,
		Error:   &envelopeError{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"},
	})
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apierr.New(apierr.CodeValidation, "request body is required")
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return apierr.Wrap(apierr.CodeValidation, "request body is not valid JSON", err)
	}
	return nil
}

// Package httpx holds the JSON reply helpers every UKonnect handler uses.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error envelope: a short machine-readable code such as
// task_not_found or validation_failed, plus optional field-level details
// (usually a validation.Violations map).
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload as the response body with the given status. The payload
// is marshalled up front so a marshal failure never leaves half-written JSON
// on the wire.
func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// JSONError writes an ErrorResponse with the given status and error code.
func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

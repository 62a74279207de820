package web

import (
	"encoding/json"
	"net/http"

	"github.com/staffdir/orgimport/internal/logging"
	"github.com/staffdir/orgimport/internal/orgimport"
)

// ErrorResponse is the JSON body for all error replies.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code,omitempty"`
}

// respondError maps err to a user-facing message and writes it with the given
// status. The technical error goes to the log, not the client.
func respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	msg := orgimport.MapError(err)
	logging.FromContext(r.Context()).Error("request failed",
		"status", status,
		"code", msg.Code,
		"error", err,
	)
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondBadRequest writes a 400 with an explicit client-facing message.
func respondBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   http.StatusText(http.StatusBadRequest),
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package web

// errors.go turns service errors into HTTP responses. The technical error
// is logged with the request ID; the client sees the mapped user message
// and its support code.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/barcodegen/internal/core"
	"github.com/JonMunkholm/barcodegen/internal/logging"
)

// ErrorResponse is the JSON body of an error for clients that ask for JSON.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case core.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyJobs):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing message with a status
// derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	level := logger.Warn
	if status >= http.StatusInternalServerError {
		level = logger.Error
	}
	level("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if id := requestID(r); id != "" {
		w.Header().Set("X-Request-Id", id)
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		writeJSON(w, status, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}
	http.Error(w, core.FormatUserError(err), status)
}

// wantsJSON reports whether the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// requestID is the chi request ID, echoed so users can quote it.
func requestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}

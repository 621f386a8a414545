package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/dbsauth/internal/common"
)

const msgInternal = "Internal server error"

// errorResponses maps domain errors to the status and fixed message sent to
// the client. Order matters only for wrapped errors matching several entries.
var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{common.ErrValidation, http.StatusBadRequest, "Invalid request body"},
	{common.ErrUserExists, http.StatusBadRequest, "User exists"},
	{common.ErrInvalidCredentials, http.StatusBadRequest, "Invalid credentials"},
	{common.ErrRefreshTokenRequired, http.StatusUnauthorized, "Refresh token required"},
	{common.ErrInvalidToken, http.StatusForbidden, "Invalid or expired refresh token"},
}

// statusFor returns the HTTP status and client message for err.
func statusFor(err error) (int, string) {
	for _, e := range errorResponses {
		if errors.Is(err, e.err) {
			return e.status, e.message
		}
	}
	return http.StatusInternalServerError, msgInternal
}

// writeError answers with the mapped status. Internal details never reach
// the client.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		s.logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "status", status)
	}
	writeJSON(w, status, messageResponse{Message: msg})
}

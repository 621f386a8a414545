package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/dbsauth/internal/common"
	"github.com/dmitrijs2005/dbsauth/internal/server/models"
	"github.com/dmitrijs2005/dbsauth/internal/server/services"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 100 << 10

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User        models.UserSummary `json:"user"`
	AccessToken string             `json:"accessToken"`
}

type accessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeSession(w, http.StatusCreated, sess)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeSession(w, http.StatusOK, sess)
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
		token = c.Value
	}

	access, err := s.users.Refresh(r.Context(), token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accessTokenResponse{AccessToken: access})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearRefreshCookie(w, s.opts.Production)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("DBS App API is running"))
}

func (s *HTTPServer) writeSession(w http.ResponseWriter, status int, sess *services.Session) {
	setRefreshCookie(w, sess.RefreshToken, s.opts.RefreshTTL, s.opts.Production)
	writeJSON(w, status, sessionResponse{User: sess.User, AccessToken: sess.AccessToken})
}

// decodeJSON reads a single JSON object from the body into dst. Any decoding
// problem, including an oversized body, is reported as common.ErrValidation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: body larger than %d bytes", common.ErrValidation, maxErr.Limit)
		}
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package httpapi

import (
	"fmt"
	"net/http"

	"github.com/avolkov/askpdf/internal/common"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeFailure(w, r, fmt.Errorf("%w: email and password are required", common.ErrInvalidInput))
		return
	}

	user, err := s.identity.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "userId", user.ID)
	writeJSON(w, http.StatusCreated, map[string]string{
		"userId": user.ID,
		"email":  user.Email,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		s.writeFailure(w, r, fmt.Errorf("%w: email and password are required", common.ErrInvalidInput))
		return
	}

	session, err := s.identity.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

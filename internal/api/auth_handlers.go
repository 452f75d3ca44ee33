package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"jobtrack/internal/lib/password"
)

type signupRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (r *signupRequest) validate() (field, message string) {
	if f, m := validateEmail(r.Email); f != "" {
		return f, m
	}
	username := strings.TrimSpace(r.Username)
	if len(username) < 3 || len(username) > 50 {
		return "username", "must be between 3 and 50 characters"
	}
	if r.FirstName == "" || len(r.FirstName) > 100 {
		return "first_name", "must be between 1 and 100 characters"
	}
	if r.LastName == "" || len(r.LastName) > 100 {
		return "last_name", "must be between 1 and 100 characters"
	}
	return validatePassword(r.Password)
}

func (r *loginRequest) validate() (field, message string) {
	if f, m := validateEmail(r.Email); f != "" {
		return f, m
	}
	return validatePassword(r.Password)
}

func validateEmail(email string) (field, message string) {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return "email", "must be a valid email address"
	}
	return "", ""
}

func validatePassword(plain string) (field, message string) {
	if len(plain) < 8 {
		return "password", "must be at least 8 characters"
	}
	if len(plain) > password.MaxLength {
		return "password", "must be at most 72 characters"
	}
	return "", ""
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "body", "invalid JSON body")
		return
	}
	if field, message := req.validate(); field != "" {
		writeValidationError(w, field, message)
		return
	}

	pair, err := s.auth.Signup(r.Context(), req.Email, req.Username, req.FirstName, req.LastName, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "body", "invalid JSON body")
		return
	}
	if field, message := req.validate(); field != "" {
		writeValidationError(w, field, message)
		return
	}

	pair, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "body", "invalid JSON body")
		return
	}
	if req.RefreshToken == "" {
		writeValidationError(w, "refresh_token", "is required")
		return
	}

	pair, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "body", "invalid JSON body")
		return
	}
	if req.RefreshToken == "" {
		writeValidationError(w, "refresh_token", "is required")
		return
	}

	if err := s.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
}

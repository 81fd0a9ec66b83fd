package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/eshop/internal/auth"
	"go.uber.org/zap"
)

// LoginHandler godoc
// @Summary Authenticate the administrator and return a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "username and password"
// @Success 200 {object} LoginResult
// @Failure 400 {string} string "Invalid input"
// @Failure 401 {string} string "Unauthorized"
// @Router /login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var credentials CredentialsRequest
	if err := readJSON(w, r, &credentials); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if err := s.admin.Authenticate(credentials.Username, credentials.Password); err != nil {
		s.lggr.Info("Login rejected", zap.String("username", credentials.Username))
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := s.issuer.GenerateToken(credentials.Username, auth.RoleAdmin)
	if err != nil {
		s.lggr.Error("Could not generate token", zap.Error(err))
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, LoginResult{Token: token})
}

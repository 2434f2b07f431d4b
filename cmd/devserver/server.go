package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vitalpath/authkit/pkg/api"
	"github.com/vitalpath/authkit/pkg/auth"
)

const devPassword = "password"

type server struct {
	cfg config
	log *slog.Logger

	mu              sync.Mutex
	users           map[string]*auth.User // by email
	refreshTokens   map[string]string     // refresh token -> email
	challenges      map[string]string     // 2fa session id -> email
	refreshFailures int
}

func newServer(cfg config, log *slog.Logger) *server {
	s := &server{
		cfg:             cfg,
		log:             log,
		users:           make(map[string]*auth.User),
		refreshTokens:   make(map[string]string),
		challenges:      make(map[string]string),
		refreshFailures: cfg.RefreshFailures,
	}

	s.users["demo@example.com"] = &auth.User{
		ID: uuid.NewString(), Email: "demo@example.com",
		FirstName: "Demo", LastName: "Patient", Role: "patient",
	}
	s.users["locked@example.com"] = &auth.User{
		ID: uuid.NewString(), Email: "locked@example.com",
		FirstName: "Locked", LastName: "Out",
	}
	s.users["2fa@example.com"] = &auth.User{
		ID: uuid.NewString(), Email: "2fa@example.com",
		FirstName: "Two", LastName: "Factor", TwoFactorEnabled: true,
	}

	return s
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[strings.ToLower(req.Email)]
	if !ok || req.Password != devPassword {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if user.Email == "locked@example.com" {
		writeError(w, http.StatusLocked, "account locked")
		return
	}

	if user.TwoFactorEnabled {
		sessionID := uuid.NewString()
		s.challenges[sessionID] = user.Email
		writeJSON(w, api.AuthResponse{
			Success:       true,
			RequiresTwoFA: true,
			SessionID:     sessionID,
			User:          user,
		})
		return
	}

	s.writeTokens(w, user)
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(req.Email)
	if _, exists := s.users[email]; exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if !req.AcceptTerms {
		writeError(w, http.StatusBadRequest, "terms must be accepted")
		return
	}

	user := &auth.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
		Role:      "patient",
	}
	s.users[email] = user

	s.writeTokens(w, user)
}

func (s *server) handleTwoFactorSetup(w http.ResponseWriter, r *http.Request) {
	var req api.TwoFactorSetupRequest
	if !decode(w, r, &req) {
		return
	}

	if _, ok := s.authenticate(r); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	writeJSON(w, api.TwoFactorSetupResponse{
		Success:     true,
		Secret:      "JBSWY3DPEHPK3PXP",
		BackupCodes: []string{"1111-2222", "3333-4444", "5555-6666"},
	})
}

func (s *server) handleTwoFactorVerify(w http.ResponseWriter, r *http.Request) {
	var req api.TwoFactorVerifyRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.challenges[req.SessionID]
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown or expired challenge")
		return
	}
	if len(req.Code) != 6 && !req.IsBackupCode {
		writeError(w, http.StatusBadRequest, "invalid code")
		return
	}

	delete(s.challenges, req.SessionID)
	s.writeTokens(w, s.users[email])
}

func (s *server) handleTwoFactorDisable(w http.ResponseWriter, r *http.Request) {
	var req api.TwoFactorDisableRequest
	if !decode(w, r, &req) {
		return
	}

	user, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if req.Password != devPassword {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	s.mu.Lock()
	user.TwoFactorEnabled = false
	s.mu.Unlock()

	writeJSON(w, api.AuthResponse{Success: true, User: user})
}

func (s *server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req api.RefreshRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshFailures > 0 {
		s.refreshFailures--
		writeError(w, http.StatusServiceUnavailable, "simulated refresh failure")
		return
	}

	email, ok := s.refreshTokens[req.RefreshToken]
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown refresh token")
		return
	}

	delete(s.refreshTokens, req.RefreshToken)
	user := s.users[email]

	accessToken, err := s.mintToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token minting failed")
		return
	}
	refreshToken := uuid.NewString()
	s.refreshTokens[refreshToken] = email

	writeJSON(w, api.RefreshResponse{
		Success:      true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (s *server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req api.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	// Same reply whether or not the account exists.
	s.log.Info("password reset requested", "email", req.Email)
	writeJSON(w, api.ForgotPasswordResponse{Success: true, EmailSent: true})
}

func (s *server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	var req api.GoogleAuthRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AuthorizationCode == "" && req.IDToken == "" && req.AccessToken == "" {
		writeError(w, http.StatusBadRequest, "missing google credential")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeTokens(w, s.users["demo@example.com"])
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, api.MeResponse{Success: true, User: user})
}

// writeTokens mints a token pair for user and writes the shared auth
// response. Callers hold s.mu.
func (s *server) writeTokens(w http.ResponseWriter, user *auth.User) {
	accessToken, err := s.mintToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token minting failed")
		return
	}

	refreshToken := uuid.NewString()
	s.refreshTokens[refreshToken] = user.Email

	writeJSON(w, api.AuthResponse{
		Success:      true,
		Token:        accessToken,
		RefreshToken: refreshToken,
		User:         user,
	})
}

func (s *server) mintToken(user *auth.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		Issuer:    "devserver",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SigningKey))
}

// authenticate resolves the bearer token to its user.
func (s *server) authenticate(r *http.Request) (*auth.User, bool) {
	header := r.Header.Get("Authorization")
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, false
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.cfg.SigningKey), nil
	})
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == claims.Subject {
			return user, true
		}
	}
	return nil, false
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

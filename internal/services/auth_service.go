package services

import (
	"errors"
	"net/http"
	"time"

	"github.com/snapedit/backend/internal/ledger"
	"github.com/snapedit/backend/internal/logger"
	"github.com/snapedit/backend/internal/middleware"
	"github.com/snapedit/backend/internal/models"
	"github.com/snapedit/backend/internal/session"
)

type AuthService struct {
	ledger   *ledger.Service
	sessions *session.Manager
	guard    *session.LoginGuard
	validate *ValidationHelper
}

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"alice"`  // Account username
	Password string `json:"password" validate:"required" example:"secret"` // Account password
}

// RegisterRequest represents the registration request payload
// @Description Registration request structure
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64" example:"alice"` // Desired username
	Password string `json:"password" validate:"required" example:"secret"`       // At least 4 characters
}

// AuthResponse represents the authentication response
// @Description Authentication response structure
type AuthResponse struct {
	Success   bool                   `json:"success" example:"true"`
	Message   string                 `json:"message" example:"Login successful!"`
	Token     string                 `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."` // JWT token
	ExpiresAt time.Time              `json:"expires_at"`
	Account   models.AccountSnapshot `json:"account"`
}

func NewAuthService(ledgerService *ledger.Service, sessions *session.Manager, guard *session.LoginGuard) *AuthService {
	return &AuthService{
		ledger:   ledgerService,
		sessions: sessions,
		guard:    guard,
		validate: NewValidationHelper(),
	}
}

// Register handles account registration
// @Summary Register a new account
// @Description Create an account in pending state. An admin must approve it before login.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} MessageResponse "Registration successful"
// @Failure 400 {object} ErrorResponse "Invalid username or weak password"
// @Failure 409 {object} ErrorResponse "Username already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (s *AuthService) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.Component(logger.FromContext(r.Context()), "auth")
	log.Info().Str("remote_addr", r.RemoteAddr).Msg("registration attempt")

	var req RegisterRequest
	if !s.validate.DecodeJSON(w, r, &req) {
		return
	}

	msg, err := s.ledger.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Info().Str("username", req.Username).Str("kind", string(ledger.KindOf(err))).Msg("registration rejected")
		WriteLedgerError(w, r, err)
		return
	}

	log.Info().Str("username", req.Username).Msg("account registered")
	writeJSON(w, http.StatusCreated, MessageResponse{Success: true, Message: msg})
}

// Login handles account authentication
// @Summary Login
// @Description Authenticate with username and password. Only approved accounts receive a token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} AuthResponse "Login successful"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 403 {object} ErrorResponse "Account pending approval or blocked"
// @Failure 429 {object} ErrorResponse "Too many failed attempts"
// @Router /auth/login [post]
func (s *AuthService) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.Component(logger.FromContext(r.Context()), "auth")

	var req LoginRequest
	if !s.validate.DecodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()

	if err := s.guard.Check(ctx, req.Username); err != nil {
		if errors.Is(err, session.ErrLockedOut) {
			log.Warn().Str("username", req.Username).Msg("login locked out")
			SendErrorResponse(w, "Too many failed login attempts. Try again later.", http.StatusTooManyRequests, nil)
			return
		}
		// redis trouble should not block logins
		log.Error().Err(err).Msg("login guard unavailable")
	}

	snap, err := s.ledger.Login(ctx, req.Username, req.Password)
	if err != nil {
		if ledger.KindOf(err) == ledger.KindInvalidCredentials {
			if gerr := s.guard.RecordFailure(ctx, req.Username); gerr != nil {
				log.Error().Err(gerr).Msg("failed to record login failure")
			}
		}
		log.Info().Str("username", req.Username).Str("kind", string(ledger.KindOf(err))).Msg("login rejected")
		WriteLedgerError(w, r, err)
		return
	}

	if err := s.guard.Reset(ctx, req.Username); err != nil {
		log.Error().Err(err).Msg("failed to reset login failures")
	}

	token, expiresAt, err := s.sessions.Issue(snap)
	if err != nil {
		log.Error().Err(err).Str("username", snap.Username).Msg("token generation failed")
		SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	log.Info().Str("username", snap.Username).Msg("login successful")
	writeJSON(w, http.StatusOK, AuthResponse{
		Success:   true,
		Message:   "Login successful!",
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   snap,
	})
}

// Logout handles logout
// @Summary Logout
// @Description Revoke the current bearer token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse "Logout successful"
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Router /auth/logout [post]
func (s *AuthService) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	if token == "" {
		SendErrorResponse(w, "Authentication required", http.StatusUnauthorized, nil)
		return
	}

	if err := s.sessions.Revoke(r.Context(), token); err != nil {
		lg := logger.Component(logger.FromContext(r.Context()), "auth")
		lg.Error().Err(err).Msg("token revocation failed")
		SendErrorResponse(w, "Failed to revoke token", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Logout successful"})
}

// Session returns the caller's current account
// @Summary Current session
// @Description Return the caller's account with a fresh balance. Blocked accounts are rejected.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AccountSnapshot "Current account"
// @Failure 401 {object} ErrorResponse "Not authenticated"
// @Failure 403 {object} ErrorResponse "Account blocked"
// @Router /auth/session [get]
func (s *AuthService) Session(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	snap, err := s.ledger.Session(r.Context(), principal)
	if err != nil {
		WriteLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/session"
)

// SessionManager creates and destroys API sessions. *session.Store
// implements it.
type SessionManager interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// UserAuthenticator looks up users and verifies their passwords.
// *store.UserStore implements it.
type UserAuthenticator interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions SessionManager
	users    UserAuthenticator
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions SessionManager, users UserAuthenticator) *Auth {
	return &Auth{
		sessions: sessions,
		users:    users,
	}
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and opens a session. The session id is set as
// a cookie and also returned as a bearer token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required.")
		return
	}

	user, err := a.users.FindByEmail(r.Context(), email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Same message for unknown email and wrong password.
	if user == nil || !a.users.CheckPassword(user, in.Password) {
		slog.Warn("login failed", "email", email, "ip", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	token, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("user logged in", "user_id", user.ID, "role", user.Role)
	writeData(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	}, "Logged in")
}

// Logout destroys the current session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Logged out"})
}

// Me returns the session of the authenticated caller.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	writeData(w, http.StatusOK, sess, "")
}

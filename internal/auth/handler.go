package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/incline-app/incline-backend/internal/models"
	"github.com/incline-app/incline-backend/internal/web"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, nu models.NewUser) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(id, role string) (string, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	users  UserStore
	tokens TokenIssuer
	logger *zap.Logger
}

func NewHandler(users UserStore, tokens TokenIssuer, logger *zap.Logger) *Handler {
	return &Handler{users: users, tokens: tokens, logger: logger}
}

// Signup creates a new user and returns a token so the client can go
// straight to its dashboard.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.Role == "" {
		web.WriteMessage(w, http.StatusBadRequest, "please provide email, password and role")
		return
	}
	if !models.ValidRole(req.Role) {
		web.WriteMessage(w, http.StatusBadRequest, "invalid role")
		return
	}

	hashed, err := HashPassword(req.Password)
	if errors.Is(err, ErrPasswordTooLong) {
		web.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("hash password", zap.Error(err))
		web.WriteMessage(w, http.StatusInternalServerError, "server error")
		return
	}

	user, err := h.users.CreateUser(r.Context(), models.NewUser{
		FullName:       req.FullName,
		Email:          req.Email,
		HashedPassword: hashed,
		Role:           req.Role,
	})
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "", "email already in use")
		return
	}
	h.logger.Info("user signed up", zap.String("user_id", user.ID), zap.String("role", user.Role))

	h.respondWithToken(w, http.StatusCreated, "Signup successful", user)
}

// Login checks credentials and issues a fresh token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		web.WriteMessage(w, http.StatusBadRequest, "please provide email and password")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			web.WriteMessage(w, http.StatusBadRequest, "invalid credentials")
			return
		}
		web.WriteStoreError(w, h.logger, err, "", "")
		return
	}

	if err := CheckPassword(user.Password, req.Password); err != nil {
		web.WriteMessage(w, http.StatusBadRequest, "invalid credentials")
		return
	}

	h.respondWithToken(w, http.StatusOK, "Login successful", user)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, status int, msg string, user *models.User) {
	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		h.logger.Error("issue token", zap.String("user_id", user.ID), zap.Error(err))
		web.WriteMessage(w, http.StatusInternalServerError, "server error")
		return
	}
	web.WriteJSON(w, status, models.AuthResponse{
		Message: msg,
		Token:   token,
		Role:    user.Role,
		User:    user,
	})
}

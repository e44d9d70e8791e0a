package user

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/incline-app/incline-backend/internal/middleware"
	"github.com/incline-app/incline-backend/internal/models"
	"github.com/incline-app/incline-backend/internal/web"
)

// Store defines the user operations the profile routes need.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
}

// FileStore defines the interface for avatar object storage.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
	Remove(ctx context.Context, key string) error
}

// Handler holds profile and dashboard HTTP handlers.
type Handler struct {
	users  Store
	files  FileStore
	logger *zap.Logger
}

func NewHandler(users Store, files FileStore, logger *zap.Logger) *Handler {
	return &Handler{users: users, files: files, logger: logger}
}

// Me returns the currently authenticated user wrapped as {user}.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": u})
}

// Profile returns the currently authenticated user.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	web.WriteJSON(w, http.StatusOK, u)
}

// UpdateProfile changes dob, course, gender and profilePic. Omitted keys
// are kept; empty strings clear the field. An inline data URI picture is
// uploaded and replaced by its object key. Object keys are only ever set
// by the server, never accepted from the client.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())

	var upd models.ProfileUpdate
	if err := web.DecodeJSON(w, r, &upd); err != nil {
		web.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if upd.ProfilePic != nil && !isDataURI(*upd.ProfilePic) && IsAvatarKey(*upd.ProfilePic) {
		web.WriteMessage(w, http.StatusBadRequest, ErrReservedPicture.Error())
		return
	}

	current, err := h.users.GetUserByID(r.Context(), caller.ID)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "user not found", "")
		return
	}
	if upd.Empty() {
		web.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Nothing to update",
			"user":    current,
		})
		return
	}

	var uploaded string
	if upd.ProfilePic != nil && isDataURI(*upd.ProfilePic) {
		img, err := parseDataURI(*upd.ProfilePic)
		if err != nil {
			web.WriteMessage(w, http.StatusBadRequest, ErrUnsupportedImage.Error())
			return
		}
		uploaded = newAvatarKey(caller.ID, img.ext)
		if err := h.files.Upload(r.Context(), uploaded, img.data, img.contentType); err != nil {
			h.logger.Error("avatar upload failed", zap.String("user_id", caller.ID), zap.Error(err))
			web.WriteMessage(w, http.StatusInternalServerError, "server error")
			return
		}
		upd.ProfilePic = &uploaded
	}

	u, err := h.users.UpdateProfile(r.Context(), caller.ID, upd)
	if err != nil {
		if uploaded != "" {
			h.removeAvatar(r.Context(), uploaded)
		}
		web.WriteStoreError(w, h.logger, err, "user not found", "")
		return
	}
	if ownsAvatar(caller.ID, current.ProfilePic) && current.ProfilePic != u.ProfilePic {
		h.removeAvatar(r.Context(), current.ProfilePic)
	}

	web.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    u,
	})
}

// Avatar streams a user's uploaded profile picture.
func (h *Handler) Avatar(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "user not found", "")
		return
	}
	if !ownsAvatar(u.ID, u.ProfilePic) {
		web.WriteMessage(w, http.StatusNotFound, "no uploaded profile picture")
		return
	}

	data, ct, err := h.files.Download(r.Context(), u.ProfilePic)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "no uploaded profile picture", "")
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(data)
}

func (h *Handler) StudentDashboard(w http.ResponseWriter, _ *http.Request) {
	web.WriteMessage(w, http.StatusOK, "Welcome to the student dashboard")
}

func (h *Handler) ProfessionalDashboard(w http.ResponseWriter, _ *http.Request) {
	web.WriteMessage(w, http.StatusOK, "Welcome to the professional dashboard")
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	caller, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		web.WriteMessage(w, http.StatusUnauthorized, "not authenticated")
		return nil, false
	}
	u, err := h.users.GetUserByID(r.Context(), caller.ID)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "user not found", "")
		return nil, false
	}
	return u, true
}

func (h *Handler) removeAvatar(ctx context.Context, key string) {
	if err := h.files.Remove(ctx, key); err != nil && !errors.Is(err, models.ErrNotFound) {
		h.logger.Warn("avatar cleanup failed", zap.String("key", key), zap.Error(err))
	}
}

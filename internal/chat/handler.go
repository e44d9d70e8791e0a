// Package chat serves direct messages between two users. Clients poll the
// conversation endpoint; nothing is pushed.
package chat

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/incline-app/incline-backend/internal/middleware"
	"github.com/incline-app/incline-backend/internal/models"
	"github.com/incline-app/incline-backend/internal/web"
)

// MessageStore defines the interface for message persistence.
type MessageStore interface {
	Send(ctx context.Context, senderID, receiverID, body string) (*models.Message, error)
	Conversation(ctx context.Context, a, b string) ([]models.Message, error)
}

// UserLookup checks that a receiver exists.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Handler holds chat HTTP handlers.
type Handler struct {
	messages MessageStore
	users    UserLookup
	logger   *zap.Logger
}

func NewHandler(messages MessageStore, users UserLookup, logger *zap.Logger) *Handler {
	return &Handler{messages: messages, users: users, logger: logger}
}

// Send stores a message from the caller. The sender is always the
// authenticated user; a differing senderId in the body is refused.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())

	var req models.SendMessageRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.SenderID = strings.TrimSpace(req.SenderID)
	req.ReceiverID = strings.TrimSpace(req.ReceiverID)

	if req.SenderID != "" && req.SenderID != caller.ID {
		h.logger.Warn("chat sender mismatch",
			zap.String("caller_id", caller.ID), zap.String("sender_id", req.SenderID))
		web.WriteMessage(w, http.StatusForbidden, "cannot send messages as another user")
		return
	}
	if req.ReceiverID == "" || strings.TrimSpace(req.Message) == "" {
		web.WriteMessage(w, http.StatusBadRequest, "missing fields")
		return
	}
	if req.ReceiverID == caller.ID {
		web.WriteMessage(w, http.StatusBadRequest, "cannot send a message to yourself")
		return
	}
	if _, err := h.users.GetUserByID(r.Context(), req.ReceiverID); err != nil {
		web.WriteStoreError(w, h.logger, err, "receiver not found", "")
		return
	}

	msg, err := h.messages.Send(r.Context(), caller.ID, req.ReceiverID, req.Message)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "", "")
		return
	}
	web.WriteJSON(w, http.StatusCreated, msg)
}

// Conversation returns the messages between the two users in the path,
// oldest first. The caller must be one of them.
func (h *Handler) Conversation(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())
	a, b := chi.URLParam(r, "user1Id"), chi.URLParam(r, "user2Id")
	if caller.ID != a && caller.ID != b {
		web.WriteMessage(w, http.StatusForbidden, "you are not part of this conversation")
		return
	}

	msgs, err := h.messages.Conversation(r.Context(), a, b)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "", "")
		return
	}
	web.WriteJSON(w, http.StatusOK, msgs)
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single direct message stored in MongoDB.
type Message struct {
	ID         primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	SenderID   string             `json:"senderId"   bson:"sender_id"`
	ReceiverID string             `json:"receiverId" bson:"receiver_id"`
	Body       string             `json:"message"    bson:"message"`
	Pair       string             `json:"-"          bson:"pair"`
	CreatedAt  time.Time          `json:"createdAt"  bson:"created_at"`
}

// ConversationKey returns the same key for (a, b) and (b, a).
func ConversationKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// SendMessageRequest is the JSON body for POST /api/chat/send. SenderID is
// accepted only so older clients keep working; it must match the caller.
type SendMessageRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

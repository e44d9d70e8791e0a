package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/incline-app/incline-backend/internal/models"
)

// MessageStore handles direct messages in MongoDB.
type MessageStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{col: db.Collection("messages"), now: time.Now}
}

func (s *MessageStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "pair", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("message indexes: %w", err)
	}
	return nil
}

func (s *MessageStore) Send(ctx context.Context, senderID, receiverID, body string) (*models.Message, error) {
	msg := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		Pair:       models.ConversationKey(senderID, receiverID),
		CreatedAt:  s.now().UTC(),
	}
	res, err := s.col.InsertOne(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return msg, nil
}

// Conversation returns every message exchanged between a and b, oldest
// first. The order of a and b does not matter.
func (s *MessageStore) Conversation(ctx context.Context, a, b string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.col.Find(ctx, bson.M{"pair": models.ConversationKey(a, b)}, opts)
	if err != nil {
		return nil, fmt.Errorf("conversation: %w", err)
	}
	defer cur.Close(ctx)

	msgs := []models.Message{}
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("conversation: %w", err)
	}
	return msgs, nil
}

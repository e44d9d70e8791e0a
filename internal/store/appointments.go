package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/incline-app/incline-backend/internal/models"
)

// onePendingPerPair is the partial unique index that keeps a single
// pending booking per (student, professional).
const onePendingPerPair = "one_pending_per_pair"

// AppointmentStore handles appointment documents in MongoDB.
type AppointmentStore struct {
	col *mongo.Collection
	now func() time.Time
}

func NewAppointmentStore(db *mongo.Database) *AppointmentStore {
	return &AppointmentStore{col: db.Collection("appointments"), now: time.Now}
}

// EnsureIndexes creates the indexes the store relies on. It is safe to run
// on every start.
func (s *AppointmentStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "professional_id", Value: 1}},
			Options: options.Index().
				SetName(onePendingPerPair).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.StatusPending}),
		},
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "professional_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("appointment indexes: %w", err)
	}
	return nil
}

// Create inserts a pending appointment. A second pending booking for the
// same pair is rejected by the index at write time with models.ErrConflict.
func (s *AppointmentStore) Create(ctx context.Context, studentID, professionalID string) (*models.Appointment, error) {
	now := s.now().UTC()
	appt := &models.Appointment{
		StudentID:      studentID,
		ProfessionalID: professionalID,
		Status:         models.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	res, err := s.col.InsertOne(ctx, appt)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("create appointment: %w", models.ErrConflict)
		}
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	appt.ID = res.InsertedID.(primitive.ObjectID)
	return appt, nil
}

func (s *AppointmentStore) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var appt models.Appointment
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &appt, nil
}

// Decide moves a pending appointment owned by professionalID to status in
// one atomic update. It returns models.ErrNotFound when no pending
// appointment with that id and owner exists; the caller works out why.
func (s *AppointmentStore) Decide(ctx context.Context, id, professionalID, status string) (*models.Appointment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	filter := bson.M{
		"_id":             oid,
		"professional_id": professionalID,
		"status":          models.StatusPending,
	}
	update := bson.M{"$set": bson.M{"status": status, "updated_at": s.now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var appt models.Appointment
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("decide appointment: %w", err)
	}
	return &appt, nil
}

func (s *AppointmentStore) ListByStudent(ctx context.Context, studentID string) ([]models.Appointment, error) {
	return s.find(ctx, bson.M{"student_id": studentID})
}

func (s *AppointmentStore) ListByProfessional(ctx context.Context, professionalID string) ([]models.Appointment, error) {
	return s.find(ctx, bson.M{"professional_id": professionalID})
}

func (s *AppointmentStore) ListAll(ctx context.Context) ([]models.Appointment, error) {
	return s.find(ctx, bson.M{})
}

func (s *AppointmentStore) find(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer cur.Close(ctx)

	appts := []models.Appointment{}
	if err := cur.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

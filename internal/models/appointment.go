package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Appointment statuses. Pending is the only initial state; the other two
// are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// Appointment links one student to one professional, stored in MongoDB.
type Appointment struct {
	ID             primitive.ObjectID `json:"id"             bson:"_id,omitempty"`
	StudentID      string             `json:"studentId"      bson:"student_id"`
	ProfessionalID string             `json:"professionalId" bson:"professional_id"`
	Status         string             `json:"status"         bson:"status"`
	CreatedAt      time.Time          `json:"createdAt"      bson:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt"      bson:"updated_at"`
}

// AppointmentView is an appointment with its participants resolved.
type AppointmentView struct {
	Appointment
	Student      *PublicProfile `json:"student,omitempty"`
	Professional *PublicProfile `json:"professional,omitempty"`
}

// BookRequest is the JSON body for POST /api/appointments/book-appointment.
type BookRequest struct {
	ProfessionalID string `json:"professionalId"`
}

// StatusRequest is the JSON body for PUT /api/appointments/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`
}

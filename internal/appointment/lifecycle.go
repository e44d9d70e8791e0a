// Package appointment holds the booking lifecycle: a student books a
// professional, which creates a pending appointment, and that professional
// later approves or declines it. Approved and declined are final.
package appointment

import (
	"errors"

	"github.com/incline-app/incline-backend/internal/models"
)

var (
	ErrInvalidStatus = errors.New("invalid status value")
	ErrNotOwner      = errors.New("appointment belongs to another professional")
	ErrAlreadyFinal  = errors.New("appointment already decided")
)

// ParseDecision accepts only the statuses a professional may set.
func ParseDecision(status string) (string, error) {
	switch status {
	case models.StatusApproved, models.StatusDeclined:
		return status, nil
	default:
		return "", ErrInvalidStatus
	}
}

// IsFinal reports whether no transition leaves status.
func IsFinal(status string) bool {
	return status == models.StatusApproved || status == models.StatusDeclined
}

// CheckDecision reports why callerID may not decide appt. Ownership is
// checked before state so a stranger never learns an appointment's status.
func CheckDecision(appt *models.Appointment, callerID string) error {
	if appt.ProfessionalID != callerID {
		return ErrNotOwner
	}
	if IsFinal(appt.Status) {
		return ErrAlreadyFinal
	}
	return nil
}

package appointment

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/incline-app/incline-backend/internal/middleware"
	"github.com/incline-app/incline-backend/internal/models"
	"github.com/incline-app/incline-backend/internal/web"
)

// Store defines the interface for appointment persistence.
type Store interface {
	Create(ctx context.Context, studentID, professionalID string) (*models.Appointment, error)
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	Decide(ctx context.Context, id, professionalID, status string) (*models.Appointment, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Appointment, error)
	ListByProfessional(ctx context.Context, professionalID string) ([]models.Appointment, error)
	ListAll(ctx context.Context) ([]models.Appointment, error)
}

// Directory resolves the users referenced by appointments.
type Directory interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	PublicProfiles(ctx context.Context, ids []string) (map[string]models.PublicProfile, error)
}

// Handler holds appointment HTTP handlers.
type Handler struct {
	store  Store
	users  Directory
	logger *zap.Logger
}

func NewHandler(store Store, users Directory, logger *zap.Logger) *Handler {
	return &Handler{store: store, users: users, logger: logger}
}

// Book creates a pending appointment between the calling student and a
// professional.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())

	var req models.BookRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ProfessionalID = strings.TrimSpace(req.ProfessionalID)
	if req.ProfessionalID == "" {
		web.WriteMessage(w, http.StatusBadRequest, "professional ID required")
		return
	}

	pro, err := h.users.GetUserByID(r.Context(), req.ProfessionalID)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "professional not found", "")
		return
	}
	if pro.Role != models.RoleProfessional {
		web.WriteMessage(w, http.StatusBadRequest, "appointments can only be booked with professionals")
		return
	}

	appt, err := h.store.Create(r.Context(), caller.ID, pro.ID)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "", "you already booked this professional and it's pending")
		return
	}
	bookedTotal.Inc()
	h.logger.Info("appointment booked",
		zap.String("appointment_id", appt.ID.Hex()),
		zap.String("student_id", caller.ID),
		zap.String("professional_id", pro.ID),
	)

	card := professionalCard(pro.Public())
	web.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Appointment booked successfully",
		"appointment": models.AppointmentView{Appointment: *appt, Professional: &card},
	})
}

// ListForStudent returns the caller's bookings with each professional resolved.
func (h *Handler) ListForStudent(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())
	appts, err := h.store.ListByStudent(r.Context(), caller.ID)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "", "")
		return
	}
	h.writeViews(w, r, appts, false, true)
}

// ListForProfessional returns appointments booked with the caller, each
// with the student resolved.
func (h *Handler) ListForProfessional(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())
	appts, err := h.store.ListByProfessional(r.Context(), caller.ID)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "", "")
		return
	}
	h.writeViews(w, r, appts, true, false)
}

// ListAll returns every appointment. Operators only.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	appts, err := h.store.ListAll(r.Context())
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "", "")
		return
	}
	h.writeViews(w, r, appts, true, true)
}

// UpdateStatus lets the owning professional approve or decline a pending
// appointment.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())
	id := chi.URLParam(r, "id")

	var req models.StatusRequest
	if err := web.DecodeJSON(w, r, &req); err != nil {
		web.WriteMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, err := ParseDecision(req.Status)
	if err != nil {
		web.WriteMessage(w, http.StatusBadRequest, "invalid status value")
		return
	}

	appt, err := h.store.Decide(r.Context(), id, caller.ID, status)
	if errors.Is(err, models.ErrNotFound) {
		h.explainRejectedDecision(w, r, id, caller.ID)
		return
	}
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "", "")
		return
	}
	decidedTotal.WithLabelValues(status).Inc()
	h.logger.Info("appointment decided",
		zap.String("appointment_id", id),
		zap.String("professional_id", caller.ID),
		zap.String("status", status),
	)

	views, err := h.resolve(r.Context(), []models.Appointment{*appt}, true, true)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "", "")
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Appointment " + status,
		"appointment": views[0],
	})
}

// explainRejectedDecision runs after the conditional update matched
// nothing and reports which rule stopped it.
func (h *Handler) explainRejectedDecision(w http.ResponseWriter, r *http.Request, id, callerID string) {
	appt, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "appointment not found", "")
		return
	}
	switch err := CheckDecision(appt, callerID); {
	case errors.Is(err, ErrNotOwner):
		h.logger.Warn("appointment update by non-owner",
			zap.String("appointment_id", id), zap.String("caller_id", callerID))
		web.WriteMessage(w, http.StatusForbidden, "you are not authorized to update this appointment")
	case errors.Is(err, ErrAlreadyFinal):
		web.WriteMessage(w, http.StatusConflict, "appointment has already been "+appt.Status)
	default:
		// Another request changed it between the update and this read.
		web.WriteMessage(w, http.StatusConflict, "appointment was modified concurrently, try again")
	}
}

func (h *Handler) writeViews(w http.ResponseWriter, r *http.Request, appts []models.Appointment, withStudent, withProfessional bool) {
	views, err := h.resolve(r.Context(), appts, withStudent, withProfessional)
	if err != nil {
		web.WriteStoreError(w, h.logger, err, "", "")
		return
	}
	web.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) resolve(ctx context.Context, appts []models.Appointment, withStudent, withProfessional bool) ([]models.AppointmentView, error) {
	views := make([]models.AppointmentView, 0, len(appts))
	if len(appts) == 0 {
		return views, nil
	}

	ids := make([]string, 0, 2*len(appts))
	for _, a := range appts {
		if withStudent {
			ids = append(ids, a.StudentID)
		}
		if withProfessional {
			ids = append(ids, a.ProfessionalID)
		}
	}
	profiles, err := h.users.PublicProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, a := range appts {
		v := models.AppointmentView{Appointment: a}
		if p, ok := profiles[a.StudentID]; ok && withStudent {
			card := studentCard(p)
			v.Student = &card
		}
		if p, ok := profiles[a.ProfessionalID]; ok && withProfessional {
			card := professionalCard(p)
			v.Professional = &card
		}
		views = append(views, v)
	}
	return views, nil
}

// studentCard is what a professional sees of a student.
func studentCard(p models.PublicProfile) models.PublicProfile {
	p.Description = ""
	return p
}

// professionalCard is what a student sees of a professional.
func professionalCard(p models.PublicProfile) models.PublicProfile {
	p.Email = ""
	return p
}

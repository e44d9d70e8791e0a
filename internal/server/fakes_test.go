package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/incline-app/incline-backend/internal/models"
)

type fakeUsers struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	byEmail map[string]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*models.User{}, byEmail: map[string]string{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, nu models.NewUser) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.byEmail[nu.Email]; taken {
		return nil, models.ErrConflict
	}
	now := time.Now().UTC()
	u := &models.User{
		ID:          uuid.NewString(),
		FullName:    nu.FullName,
		Email:       nu.Email,
		Password:    nu.HashedPassword,
		Role:        nu.Role,
		Description: models.DefaultDescription,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u.ID
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.byEmail[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *f.byID[id]
	return &cp, nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	for dst, src := range map[*string]*string{
		&u.DateOfBirth: upd.DateOfBirth,
		&u.Course:      upd.Course,
		&u.Gender:      upd.Gender,
		&u.ProfilePic:  upd.ProfilePic,
	} {
		if src != nil {
			*dst = *src
		}
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) PublicProfiles(_ context.Context, ids []string) (map[string]models.PublicProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]models.PublicProfile{}
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out[id] = u.Public()
		}
	}
	return out, nil
}

type fakeAppointments struct {
	mu    sync.Mutex
	appts []*models.Appointment
	seq   int
}

func (f *fakeAppointments) Create(_ context.Context, studentID, professionalID string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		if a.StudentID == studentID && a.ProfessionalID == professionalID && a.Status == models.StatusPending {
			return nil, models.ErrConflict
		}
	}
	f.seq++
	at := time.Date(2026, 1, 1, 0, 0, f.seq, 0, time.UTC)
	a := &models.Appointment{
		ID: primitive.NewObjectID(), StudentID: studentID, ProfessionalID: professionalID,
		Status: models.StatusPending, CreatedAt: at, UpdatedAt: at,
	}
	f.appts = append(f.appts, a)
	cp := *a
	return &cp, nil
}

func (f *fakeAppointments) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		if a.ID.Hex() == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeAppointments) Decide(_ context.Context, id, professionalID, status string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appts {
		if a.ID.Hex() == id && a.ProfessionalID == professionalID && a.Status == models.StatusPending {
			a.Status = status
			cp := *a
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeAppointments) filter(keep func(*models.Appointment) bool) []models.Appointment {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Appointment{}
	for _, a := range f.appts {
		if keep(a) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeAppointments) ListByStudent(_ context.Context, id string) ([]models.Appointment, error) {
	return f.filter(func(a *models.Appointment) bool { return a.StudentID == id }), nil
}

func (f *fakeAppointments) ListByProfessional(_ context.Context, id string) ([]models.Appointment, error) {
	return f.filter(func(a *models.Appointment) bool { return a.ProfessionalID == id }), nil
}

func (f *fakeAppointments) ListAll(_ context.Context) ([]models.Appointment, error) {
	return f.filter(func(*models.Appointment) bool { return true }), nil
}

type fakeMessages struct {
	mu   sync.Mutex
	msgs []models.Message
}

func (f *fakeMessages) Send(_ context.Context, senderID, receiverID, body string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := models.Message{
		ID: primitive.NewObjectID(), SenderID: senderID, ReceiverID: receiverID, Body: body,
		Pair: models.ConversationKey(senderID, receiverID), CreatedAt: time.Now().UTC(),
	}
	f.msgs = append(f.msgs, msg)
	return &msg, nil
}

func (f *fakeMessages) Conversation(_ context.Context, a, b string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Message{}
	for _, m := range f.msgs {
		if m.Pair == models.ConversationKey(a, b) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeFiles struct{}

func (fakeFiles) Upload(context.Context, string, []byte, string) error { return nil }
func (fakeFiles) Download(context.Context, string) ([]byte, string, error) {
	return nil, "", models.ErrNotFound
}
func (fakeFiles) Remove(context.Context, string) error { return nil }

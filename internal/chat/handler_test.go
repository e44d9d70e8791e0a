package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/incline-app/incline-backend/internal/auth"
	"github.com/incline-app/incline-backend/internal/middleware"
	"github.com/incline-app/incline-backend/internal/models"
)

type memMessages struct {
	mu    sync.Mutex
	msgs  []models.Message
	clock time.Time
}

func (m *memMessages) Send(_ context.Context, senderID, receiverID, body string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Millisecond)
	msg := models.Message{
		ID:         primitive.NewObjectID(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		Pair:       models.ConversationKey(senderID, receiverID),
		CreatedAt:  m.clock,
	}
	m.msgs = append(m.msgs, msg)
	return &msg, nil
}

func (m *memMessages) Conversation(_ context.Context, a, b string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.ConversationKey(a, b)
	out := []models.Message{}
	for _, msg := range m.msgs {
		if msg.Pair == key {
			out = append(out, msg)
		}
	}
	return out, nil
}

type memUsers map[string]bool

func (u memUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if u[id] {
		return &models.User{ID: id}, nil
	}
	return nil, models.ErrNotFound
}

var (
	alice = auth.Identity{ID: "alice", Role: models.RoleStudent}
	bob   = auth.Identity{ID: "bob", Role: models.RoleProfessional}
	carol = auth.Identity{ID: "carol", Role: models.RoleStudent}
)

func newRouter() http.Handler {
	h := NewHandler(&memMessages{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		memUsers{"alice": true, "bob": true, "carol": true}, zap.NewNop())
	r := chi.NewRouter()
	r.Post("/send", h.Send)
	r.Get("/{user1Id}/{user2Id}", h.Conversation)
	return r
}

func do(t *testing.T, router http.Handler, method, path string, as auth.Identity, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req = req.WithContext(middleware.WithIdentity(req.Context(), as))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func send(t *testing.T, router http.Handler, from auth.Identity, to, text string) *httptest.ResponseRecorder {
	return do(t, router, http.MethodPost, "/send", from, map[string]string{"receiverId": to, "message": text})
}

func conversation(t *testing.T, router http.Handler, as auth.Identity, a, b string) []models.Message {
	t.Helper()
	rec := do(t, router, http.MethodGet, "/"+a+"/"+b, as, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var msgs []models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msgs); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return msgs
}

func TestConversationIsSymmetricAndOrdered(t *testing.T) {
	router := newRouter()
	for i, step := range []struct {
		from auth.Identity
		to   string
		text string
	}{
		{alice, "bob", "hi"},
		{bob, "alice", "hello"},
		{alice, "carol", "unrelated"},
		{alice, "bob", "are you free?"},
	} {
		if rec := send(t, router, step.from, step.to, step.text); rec.Code != http.StatusCreated {
			t.Fatalf("send %d: expected 201, got %d", i, rec.Code)
		}
	}

	ab := conversation(t, router, alice, "alice", "bob")
	ba := conversation(t, router, bob, "bob", "alice")
	if len(ab) != 3 || len(ba) != 3 {
		t.Fatalf("expected 3 messages each way, got %d and %d", len(ab), len(ba))
	}
	for i := range ab {
		if ab[i].ID != ba[i].ID {
			t.Fatalf("conversation not symmetric at %d", i)
		}
		if i > 0 && ab[i].CreatedAt.Before(ab[i-1].CreatedAt) {
			t.Fatalf("conversation out of order at %d", i)
		}
	}
	if ab[0].Body != "hi" || ab[2].Body != "are you free?" {
		t.Fatalf("unexpected order: %q .. %q", ab[0].Body, ab[2].Body)
	}

	if empty := conversation(t, router, bob, "bob", "carol"); len(empty) != 0 {
		t.Fatalf("expected empty conversation, got %d", len(empty))
	}
}

func TestSendUsesAuthenticatedSender(t *testing.T) {
	router := newRouter()

	rec := do(t, router, http.MethodPost, "/send", alice, map[string]string{
		"senderId": "bob", "receiverId": "carol", "message": "spoofed",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for spoofed sender, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/send", alice, map[string]string{
		"senderId": "alice", "receiverId": "bob", "message": "legacy client",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 when senderId matches, got %d", rec.Code)
	}
	var msg models.Message
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if msg.SenderID != "alice" || msg.ReceiverID != "bob" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestSendValidation(t *testing.T) {
	router := newRouter()
	cases := []struct {
		to, text string
		want     int
	}{
		{"", "hi", http.StatusBadRequest},
		{"bob", "", http.StatusBadRequest},
		{"bob", "   ", http.StatusBadRequest},
		{"alice", "me", http.StatusBadRequest},
		{"dave", "hi", http.StatusNotFound},
	}
	for _, c := range cases {
		if rec := send(t, router, alice, c.to, c.text); rec.Code != c.want {
			t.Fatalf("to=%q text=%q: expected %d, got %d", c.to, c.text, c.want, rec.Code)
		}
	}
}

func TestConversationRequiresParticipant(t *testing.T) {
	router := newRouter()
	send(t, router, alice, "bob", "private")

	if rec := do(t, router, http.MethodGet, "/alice/bob", carol, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for outsider, got %d", rec.Code)
	}
}

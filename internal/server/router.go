package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/incline-app/incline-backend/internal/appointment"
	"github.com/incline-app/incline-backend/internal/auth"
	"github.com/incline-app/incline-backend/internal/chat"
	"github.com/incline-app/incline-backend/internal/middleware"
	"github.com/incline-app/incline-backend/internal/models"
	"github.com/incline-app/incline-backend/internal/user"
	"github.com/incline-app/incline-backend/internal/web"
)

// Users is everything the routes need from the credential store.
type Users interface {
	auth.UserStore
	user.Store
	appointment.Directory
}

// Tokens issues and verifies identity tokens.
type Tokens interface {
	auth.TokenIssuer
	middleware.TokenVerifier
}

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Logger        *zap.Logger
	Tokens        Tokens
	Users         Users
	Appointments  appointment.Store
	Messages      chat.MessageStore
	Files         user.FileStore
	AdminAPIToken string
	CORSOrigins   []string
}

// NewRouter builds the HTTP surface of the service.
func NewRouter(d Deps) http.Handler {
	authHandler := auth.NewHandler(d.Users, d.Tokens, d.Logger)
	userHandler := user.NewHandler(d.Users, d.Files, d.Logger)
	apptHandler := appointment.NewHandler(d.Appointments, d.Users, d.Logger)
	chatHandler := chat.NewHandler(d.Messages, d.Users, d.Logger)

	authenticate := middleware.Authenticate(d.Tokens, d.Logger)
	studentsOnly := middleware.Permit(models.RoleStudent)
	professionalsOnly := middleware.Permit(models.RoleProfessional)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Auth routes (public)
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
	})

	r.Get("/api/users/{id}/avatar", userHandler.Avatar)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/api/me", userHandler.Me)
		r.With(studentsOnly).Get("/api/student/dashboard", userHandler.StudentDashboard)
		r.With(professionalsOnly).Get("/api/professional/dashboard", userHandler.ProfessionalDashboard)

		r.Get("/api/user/profile", userHandler.Profile)
		r.Patch("/api/user/profile", userHandler.UpdateProfile)

		r.Post("/api/chat/send", chatHandler.Send)
		r.Get("/api/chat/{user1Id}/{user2Id}", chatHandler.Conversation)
	})

	r.Route("/api/appointments", func(r chi.Router) {
		r.With(middleware.RequireServiceToken(d.AdminAPIToken)).Get("/", apptHandler.ListAll)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.With(studentsOnly).Post("/book-appointment", apptHandler.Book)
			r.With(studentsOnly).Get("/student", apptHandler.ListForStudent)
			r.With(professionalsOnly).Get("/professional", apptHandler.ListForProfessional)
			r.With(professionalsOnly).Put("/{id}/status", apptHandler.UpdateStatus)
		})
	})

	return r
}

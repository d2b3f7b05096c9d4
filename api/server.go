/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. CORS:           Cross-origin requests for the frontend
  2. RequestLogger:  Structured request logging (httplog over slog, ECS schema)
  3. CleanPath:      Path normalization
  4. Recoverer:      Panic recovery (500 instead of crash)
  5. Heartbeat:      Liveness probe on /

AUTHORIZATION:
  Everything under /api except /api/auth/login requires a valid token
  (jwtauth Verifier + Authenticator). Write operations additionally require
  the admin or user role; user management is admin only. Viewers get
  read-only access.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/pliniou/Project-Ausencias/auth"
)

// RouterOptions tunes the middleware stack.
type RouterOptions struct {
	CORSOrigins []string
	LogLevel    slog.Level
	AppEnv      string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(opts.AppEnv == "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "ausencias"),
		slog.String("env", opts.AppEnv),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	tokenAuth := h.Auth.TokenAuth()

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		// Everything below requires a valid token.
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(jwtauth.Authenticator(tokenAuth))

			r.Post("/auth/change-password", h.ChangePassword)

			// User management is admin only.
			r.Route("/auth/users", func(r chi.Router) {
				r.Use(requireRole("admin"))
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Put("/{id}/password", h.ResetUserPassword)
				r.Delete("/{id}", h.DeleteUser)
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", h.ListEmployees)
				r.Get("/{id}", h.GetEmployee)
				r.Get("/{id}/leaves", h.ListEmployeeLeaves)
				r.Get("/{id}/vacation-summary", h.GetVacationSummary)

				r.Group(func(r chi.Router) {
					r.Use(requireRole("admin", "user"))
					r.Post("/", h.CreateEmployee)
					r.Put("/{id}", h.UpdateEmployee)
					r.Delete("/{id}", h.DeleteEmployee)
				})
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Get("/", h.ListLeaves)
				r.Get("/active", h.ListActiveLeaves)
				r.Get("/planned", h.ListPlannedLeaves)
				r.Get("/today", h.ListLeavesToday)
				r.Post("/validate", h.ValidateVacation)
				r.Get("/{id}", h.GetLeave)

				r.Group(func(r chi.Router) {
					r.Use(requireRole("admin", "user"))
					r.Post("/", h.CreateLeave)
					r.Put("/{id}", h.UpdateLeave)
					r.Delete("/{id}", h.DeleteLeave)
				})
			})

			r.Route("/holidays", func(r chi.Router) {
				r.Get("/", h.ListHolidays)

				r.Group(func(r chi.Router) {
					r.Use(requireRole("admin", "user"))
					r.Post("/", h.CreateHoliday)
					r.Put("/{id}", h.UpdateHoliday)
					r.Delete("/{id}", h.DeleteHoliday)
				})
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", h.ListEvents)

				r.Group(func(r chi.Router) {
					r.Use(requireRole("admin", "user"))
					r.Post("/", h.CreateEvent)
					r.Put("/{id}", h.UpdateEvent)
					r.Delete("/{id}", h.DeleteEvent)
				})
			})

			r.Get("/calendar/{year}/{month}", h.GetCalendar)

			r.Get("/export/leaves.txt", h.ExportLeavesTXT)
			r.Get("/export/leaves.csv", h.ExportLeavesCSV)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireRole("admin"))
				r.Post("/refresh-statuses", h.RefreshStatuses)
			})
		})
	})

	return r
}

// requireRole rejects requests whose token role is not in the allow list.
func requireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _, role, err := auth.ClaimsFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token", err)
				return
			}
			if !allowed[role] {
				writeError(w, http.StatusForbidden, "Insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ParseLogLevel maps a config string onto a slog level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

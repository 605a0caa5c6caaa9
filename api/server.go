/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RealIP:        Client address from proxy headers (trusted proxy only)
  3. RequestLogger: zap line per request, request-scoped logger in context
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. CORS:          Cross-origin requests for the browser front-end
  6. RateLimit:     Token bucket per client address
  7. RequestSize:   Body size cap (413 from decodeBody)
  8. Authenticate:  Bearer JWT on everything but health and scenarios

ROUTE GROUPS:
  /api/health           Liveness
  /api/scenarios/*      Demo scenarios (load only without a JWT secret)
  /api/orgs/{org}/*     Leave types, config import, pending requests
  /api/employees/*      Employees, balances, requests, calendar
  /api/requests/*       Cancel, approve, reject
  /api/allocate         Allocation preview
  /api/sessions/*       Composer sessions

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: Identity middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterOptions configures the middleware stack.
type RouterOptions struct {
	AllowedOrigins []string
	JWTSecret      string
	RequestsPerMin int
	// MaxBodyBytes caps request bodies; zero leaves them unbounded.
	MaxBodyBytes   int64
	// TrustProxy rewrites RemoteAddr from X-Forwarded-For / X-Real-IP.
	TrustProxy     bool
	Logger         *zap.Logger
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Employee-ID", "X-Org-ID"},
		AllowCredentials: true,
	}))
	r.Use(RateLimit(opts.RequestsPerMin))
	if opts.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(opts.MaxBodyBytes))
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", h.Health)
		r.Get("/scenarios", h.ListScenarios)
		r.Get("/scenarios/current", h.GetCurrentScenario)

		// Loading a scenario wipes the database, so it only exists in
		// development mode.
		if opts.JWTSecret == "" {
			r.With(Authenticate("")).Post("/scenarios/load", h.LoadScenario)
		}

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(opts.JWTSecret))

			// Organisation routes
			r.Route("/orgs/{org}", func(r chi.Router) {
				r.Get("/leave-types", h.ListLeaveTypes)
				r.Post("/leave-types", h.CreateLeaveType)
				r.Put("/leave-types/{id}/category", h.SetCategory)
				r.Post("/config", h.ImportConfig)
				r.Get("/requests/pending", h.ListPendingRequests)
			})

			// Employee routes
			r.Route("/employees", func(r chi.Router) {
				r.Post("/", h.CreateEmployee)
				r.Get("/{id}", h.GetEmployee)
				r.Get("/{id}/balances", h.GetBalances)
				r.Put("/{id}/balances/{typeID}", h.SetBalance)
				r.Get("/{id}/requests", h.GetRequests)
				r.Get("/{id}/calendar", h.GetCalendar)
			})

			// Request decision routes
			r.Route("/requests", func(r chi.Router) {
				r.Post("/{id}/cancel", h.CancelRequest)
				r.Post("/{id}/approve", h.ApproveRequest)
				r.Post("/{id}/reject", h.RejectRequest)
			})

			r.Post("/allocate", h.Allocate)

			// Composer session routes
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", h.CreateSession)
				r.Route("/{sid}", func(r chi.Router) {
					r.Get("/", h.GetSession)
					r.Delete("/", h.DeleteSession)
					r.Post("/click", h.Click)
					r.Post("/hover", h.Hover)
					r.Post("/navigate", h.Navigate)
					r.Post("/mode", h.SetMode)
					r.Post("/type", h.SetType)
					r.Post("/commit", h.Commit)
					r.Post("/cancel", h.Cancel)
					r.Post("/submit", h.Submit)
					r.Delete("/items", h.ClearItems)
					r.Delete("/items/{itemID}", h.RemoveItem)
				})
			})
		})
	})

	return r
}

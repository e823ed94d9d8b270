/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RealIP:        Client address behind proxies
  3. RequestLogger: zap request logging (logging package)
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. CORS:          Cross-origin requests for the mobile/web client
  6. Authenticate:  Bearer JWT (auth package), on /api only

ROUTE GROUPS:
  /api/pay/*        Calculator (any role)
  /api/periods/*    Pay period lookup (any role)
  /api/nurses/*     Nurses (admin; nurses read their own records)
  /api/families/*   Families (admin; families read their own record)
  /api/shifts/*     Shift booking (admin, family)
  /api/holidays/*   Holiday calendar (admin)
  /api/payruns/*    Pay runs (admin)
  /api/payslips/*   Payslips (admin, owning nurse)
  /api/scenarios/*  Demo scenarios (admin)
  /healthz          Liveness, unauthenticated

SECURITY NOTE:
  With no JWT secret configured every request acts as admin. Production
  config refuses to start without a secret.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nightwatch/nursepay/auth"
	"github.com/nightwatch/nursepay/logging"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	JWTSecret   string
	CORSOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	admin := auth.RequireRole(auth.RoleAdmin)
	adminOrNurse := auth.RequireRole(auth.RoleAdmin, auth.RoleNurse)
	anyone := auth.RequireRole(auth.RoleAdmin, auth.RoleFamily, auth.RoleNurse)
	adminOrFamily := auth.RequireRole(auth.RoleAdmin, auth.RoleFamily)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Authenticate(opts.JWTSecret))

		// Calculator and periods
		r.With(anyone).Post("/pay/calculate", h.Calculate)
		r.With(anyone).Get("/periods/current", h.GetCurrentPeriod)

		// Nurse routes
		r.Route("/nurses", func(r chi.Router) {
			r.With(admin).Get("/", h.ListNurses)
			r.With(admin).Post("/", h.CreateNurse)
			r.With(adminOrNurse).Get("/{id}", h.GetNurse)
			r.With(admin).Put("/{id}", h.UpdateNurse)
			r.With(anyone).Get("/{id}/shifts", h.GetNurseShifts)
			r.With(anyone).Get("/{id}/schedule.ics", h.GetNurseSchedule)
			r.With(adminOrNurse).Get("/{id}/payslips", h.GetNursePayslips)
			r.With(adminOrNurse).Get("/{id}/preview", h.PreviewPayslip)
		})

		// Family routes
		r.Route("/families", func(r chi.Router) {
			r.With(admin).Get("/", h.ListFamilies)
			r.With(admin).Post("/", h.CreateFamily)
			r.With(adminOrFamily).Get("/{id}", h.GetFamily)
		})

		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Use(adminOrFamily)
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Post("/{id}/complete", h.CompleteShift)
			r.Post("/{id}/cancel", h.CancelShift)
		})

		// Holiday routes
		r.Route("/holidays", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", h.ListHolidays)
			r.Post("/", h.CreateHoliday)
			r.Post("/defaults", h.AddDefaultHolidays)
			r.Delete("/{id}", h.DeleteHoliday)
		})

		// Pay run routes
		r.Route("/payruns", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", h.ListPayRuns)
			r.Post("/", h.CreatePayRun)
			r.Get("/{id}", h.GetPayRun)
			r.Post("/{id}/finalize", h.FinalizePayRun)
		})

		// Payslip routes
		r.Route("/payslips", func(r chi.Router) {
			r.Use(adminOrNurse)
			r.Get("/{id}", h.GetPayslip)
			r.Get("/{id}/pdf", h.GetPayslipPDF)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Use(admin)
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}

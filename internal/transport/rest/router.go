package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/certification-management/internal/auth"
	"github.com/frahmantamala/certification-management/internal/certification"
	"github.com/frahmantamala/certification-management/internal/eligibility"
	"github.com/frahmantamala/certification-management/internal/employee"
	"github.com/frahmantamala/certification-management/internal/rule"
	"github.com/frahmantamala/certification-management/internal/transport/middleware"
	"github.com/frahmantamala/certification-management/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth          *auth.Handler
	Employee      *employee.Handler
	Rule          *rule.Handler
	Certification *certification.Handler
	Eligibility   *eligibility.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger, allowedOrigins []string) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
				sr.Post("/logout", h.Auth.Logout)
			})
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.GetCurrentUser)

			if h.Employee != nil {
				pr.Route("/employees", func(er chi.Router) {
					er.Get("/", h.Employee.List)
					er.Get("/{id}", h.Employee.Get)

					if h.Eligibility != nil {
						er.Get("/{id}/eligibility", h.Eligibility.GetEmployeeEligibility)
						er.Get("/{id}/requirements", h.Eligibility.GetEmployeeRequirements)
					}
					if h.Certification != nil {
						er.Get("/{id}/certifications", h.Certification.ListForEmployee)
					}

					er.Group(func(mr chi.Router) {
						mr.Use(middleware.RequirePermissions(auth.PermManageEmployees))
						mr.Post("/", h.Employee.Create)
						mr.Put("/{id}", h.Employee.Update)
						mr.Post("/{id}/resign", h.Employee.Resign)
						mr.Delete("/{id}", h.Employee.Delete)
					})

					if h.Eligibility != nil {
						er.Group(func(rr chi.Router) {
							rr.Use(middleware.RequirePermissions(auth.PermRefreshEligibility))
							rr.Post("/{id}/eligibility/refresh", h.Eligibility.RefreshEmployee)
						})
					}
				})
			}

			if h.Rule != nil {
				pr.Route("/rules", func(rr chi.Router) {
					rr.Get("/", h.Rule.ListRules)
					rr.Get("/{id}", h.Rule.GetRule)

					rr.Group(func(mr chi.Router) {
						mr.Use(middleware.RequirePermissions(auth.PermManageRules))
						mr.Post("/", h.Rule.CreateRule)
						mr.Put("/{id}", h.Rule.UpdateRule)
						mr.Delete("/{id}", h.Rule.DeleteRule)
					})
				})

				pr.Group(func(mr chi.Router) {
					mr.Use(middleware.RequirePermissions(auth.PermManageRules))

					mr.Route("/job-mappings", func(jr chi.Router) {
						jr.Post("/", h.Rule.CreateMapping)
						jr.Patch("/{id}/toggle", h.Rule.ToggleMapping)
						jr.Delete("/{id}", h.Rule.DeleteMapping)
					})

					mr.Route("/exceptions", func(xr chi.Router) {
						xr.Post("/", h.Rule.CreateException)
						xr.Patch("/{id}/toggle", h.Rule.ToggleException)
						xr.Delete("/{id}", h.Rule.DeleteException)
					})
				})
			}

			if h.Certification != nil {
				pr.Route("/certifications", func(cr chi.Router) {
					cr.Get("/{id}", h.Certification.Get)

					cr.Group(func(mr chi.Router) {
						mr.Use(middleware.RequirePermissions(auth.PermRecordCertifications))
						mr.Post("/", h.Certification.Record)
						mr.Put("/{id}", h.Certification.Update)
						mr.Post("/{id}/file", h.Certification.AttachFile)
						mr.Delete("/{id}", h.Certification.Delete)
					})
				})
			}

			if h.Eligibility != nil {
				pr.Route("/eligibility", func(er chi.Router) {
					er.Get("/due", h.Eligibility.GetDue)

					er.Group(func(rr chi.Router) {
						rr.Use(middleware.RequirePermissions(auth.PermRefreshEligibility))
						rr.Post("/refresh", h.Eligibility.RefreshAll)
					})
				})

				pr.Group(func(rr chi.Router) {
					rr.Use(middleware.RequirePermissions(auth.PermRefreshEligibility))
					rr.Post("/job-positions/{id}/eligibility/refresh", h.Eligibility.RefreshJobPosition)
				})
			}
		})
	})
}

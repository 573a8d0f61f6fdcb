package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/examgate/examgate/internal/web/handlers"
	"github.com/examgate/examgate/internal/web/middleware"
)

func (s *Server) setupRoutes(deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Tokens)
	verifyHandler := handlers.NewVerifyHandler(deps.Verify, deps.MaxUpload)
	faceprintHandler := handlers.NewFaceprintHandler(deps.Verify, deps.Faceprints, deps.MaxUpload)
	studentHandler := handlers.NewStudentHandler(deps.Students)
	deviceHandler := handlers.NewDeviceHandler(deps.Devices)
	alertHandler := handlers.NewAlertHandler(deps.Alerts)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		// All other routes require a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Tokens))

			// Identity verification
			r.Post("/identity/verify", verifyHandler.Verify)

			// Faceprints
			r.Get("/faceprints", faceprintHandler.List)
			r.Post("/faceprints", faceprintHandler.Enroll)
			r.Post("/faceprints/search", faceprintHandler.Search)
			r.Get("/faceprints/{studentID}", faceprintHandler.Get)
			r.Put("/faceprints/{studentID}", faceprintHandler.Reenroll)
			r.Delete("/faceprints/{studentID}", faceprintHandler.Delete)

			// Students
			r.Get("/students", studentHandler.List)
			r.Get("/students/{studentID}/assignment", studentHandler.GetAssignment)

			// Devices
			r.Get("/devices", deviceHandler.List)
			r.Post("/devices", deviceHandler.Register)
			r.Get("/devices/{id}", deviceHandler.Get)
			r.Delete("/devices/{id}", deviceHandler.Deactivate)

			// Alerts
			r.Get("/alerts", alertHandler.List)
			r.Post("/alerts", alertHandler.Create)
		})
	})
}

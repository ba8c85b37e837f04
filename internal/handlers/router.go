package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	mw "habitsync/internal/middleware"
	"habitsync/internal/services"
)

// NewRouter mounts the full /api surface. Register and login are open;
// everything else requires a valid session.
func NewRouter(db *sqlx.DB, jwtSecret []byte, encSvc *services.EncryptionService) http.Handler {
	authHandler := NewAuthHandler(db, jwtSecret)
	profileHandler := NewProfileHandler(db, encSvc)
	taskHandler := NewTaskHandler(db)
	habitHandler := NewHabitHandler(db)
	logHandler := NewLogHandler(db, encSvc)
	syncHandler := NewSyncHandler(db, encSvc)
	authMW := mw.NewAuthMiddleware(jwtSecret)

	r := chi.NewRouter()
	r.Route("/api", func(api chi.Router) {
		api.Post("/register", authHandler.Register)
		api.Post("/login", authHandler.Login)

		api.Group(func(pr chi.Router) {
			pr.Use(authMW.RequireAuth)
			pr.Post("/logout", authHandler.Logout)

			pr.Get("/user/profile", profileHandler.Get)
			pr.Put("/user/profile", profileHandler.Update)

			pr.Get("/tasks", taskHandler.List)
			pr.Post("/tasks", taskHandler.Create)
			pr.Get("/tasks/{id}", taskHandler.Get)
			pr.Put("/tasks/{id}", taskHandler.Update)
			pr.Delete("/tasks/{id}", taskHandler.Delete)

			pr.Get("/habits", habitHandler.List)
			pr.Post("/habits", habitHandler.Create)
			pr.Post("/habits/{id}/completion", habitHandler.UpsertCompletion)

			pr.Get("/logs", logHandler.List)
			pr.Post("/logs", logHandler.Upsert)

			pr.Post("/sync", syncHandler.Sync)
		})
	})
	return r
}

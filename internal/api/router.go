// Package api exposes the domain stores over a local HTTP surface for the
// UI shell.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter constructs the HTTP handler serving the FitVault API.
//
// Routes (all under /api):
//
//	GET    /photos/food?date=    → list food photos, optionally by day
//	POST   /photos/food          → add a food photo record
//	DELETE /photos/food/{id}     → delete a food photo (wipes vault file)
//	GET    /photos/progress      → list progress photos
//	POST   /photos/progress      → add a progress photo record
//	DELETE /photos/progress/{id} → delete a progress photo
//	GET    /macros?date=         → list the day's macro logs
//	POST   /macros               → append a macro log
//	DELETE /macros/{id}          → delete a macro log
//	GET    /macros/goals         → current goals
//	PUT    /macros/goals         → set goals
//	GET    /macros/progress      → the day's progress percentages
//	GET    /health/measurements  → list body measurements
//	POST   /health/measurements  → add a measurement
//	GET    /status               → level, streak, points, active quests
//	POST   /chat                 → send a chat message, returns the reply
func NewRouter(h *Handlers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.AllowContentType("application/json"))
	r.Use(withRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/photos", func(r chi.Router) {
			r.Get("/food", h.ListFoodPhotos)
			r.Post("/food", h.AddFoodPhoto)
			r.Delete("/food/{id}", h.DeleteFoodPhoto)
			r.Get("/progress", h.ListProgressPhotos)
			r.Post("/progress", h.AddProgressPhoto)
			r.Delete("/progress/{id}", h.DeleteProgressPhoto)
		})
		r.Route("/macros", func(r chi.Router) {
			r.Get("/", h.ListMacroLogs)
			r.Post("/", h.AddMacroLog)
			r.Delete("/{id}", h.DeleteMacroLog)
			r.Get("/goals", h.GetMacroGoals)
			r.Put("/goals", h.SetMacroGoals)
			r.Get("/progress", h.GetDailyProgress)
		})
		r.Route("/health", func(r chi.Router) {
			r.Get("/measurements", h.ListMeasurements)
			r.Post("/measurements", h.AddMeasurement)
		})
		r.Get("/status", h.GetStatus)
		r.Post("/chat", h.Chat)
	})

	return r
}

// withRequestLogging logs each request and its duration.
func withRequestLogging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

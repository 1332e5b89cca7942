package server

import (
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"
	"gorm.io/gorm"

	"github.com/ukonnect/ukonnect-api/internal/auth"
	"github.com/ukonnect/ukonnect-api/internal/config"
	"github.com/ukonnect/ukonnect-api/internal/handlers"
	"github.com/ukonnect/ukonnect-api/internal/httpx"
	"github.com/ukonnect/ukonnect-api/internal/tasks"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	mux := http.NewServeMux()

	mw := auth.NewMiddleware([]byte(cfg.AccessSecret))
	protected := func(h http.HandlerFunc) http.Handler { return mw.Wrap(h) }

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	authHandler := auth.NewHandler(db, []byte(cfg.AccessSecret), []byte(cfg.RefreshSecret))
	authHandler.Register(mux)

	// Tasks + dashboard
	taskSvc := tasks.NewService(db)
	th := handlers.NewTaskHandler(taskSvc)
	mux.Handle("POST /tasks/generate", protected(th.Generate))
	mux.Handle("GET /tasks", protected(th.List))
	mux.Handle("PATCH /tasks/{id}", protected(th.Update))
	mux.Handle("GET /dashboard", protected(th.Dashboard))

	// Sent-reminder history
	rh := handlers.NewReminderHandler(db)
	mux.Handle("GET /reminders", protected(rh.List))

	// Profile & settings
	meh := handlers.NewMeHandler(db)
	mux.Handle("GET /me/profile", protected(meh.GetProfile))
	mux.Handle("PUT /me/profile", protected(meh.PutProfile))
	mux.Handle("POST /me/verify-visa", protected(meh.VerifyVisa))
	mux.Handle("GET /me/settings", protected(meh.GetSettings))
	mux.Handle("PUT /me/settings", protected(meh.PutSettings))

	// Public directory + FAQ
	dh := handlers.NewDirectoryHandler(db)
	mux.HandleFunc("GET /services", dh.Services)
	mux.HandleFunc("GET /faq", dh.Faq)

	// Community forum
	ch := handlers.NewCommunityHandler(db)
	mux.HandleFunc("GET /community/stats", ch.Stats)
	mux.HandleFunc("GET /community/posts", ch.ListPosts)
	mux.Handle("POST /community/posts", protected(ch.CreatePost))
	mux.Handle("POST /community/posts/{id}/replies", protected(ch.CreateReply))

	// Documents
	doch := handlers.NewDocumentHandler(db, cfg.UploadDir)
	mux.Handle("POST /documents", protected(doch.Upload))
	mux.Handle("GET /documents", protected(doch.List))
	mux.Handle("GET /documents/{id}/download", protected(doch.Download))
	mux.Handle("DELETE /documents/{id}", protected(doch.Delete))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]any{"name": "UKonnect API", "ok": true})
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(withRecover(withLogging(mux)))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

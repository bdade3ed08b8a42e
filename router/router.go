// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/sitetime/auth"
	"github.com/danielhkuo/sitetime/cliparse"
	"github.com/danielhkuo/sitetime/filestore"
	"github.com/danielhkuo/sitetime/handlers"
	"github.com/danielhkuo/sitetime/middleware"
	"github.com/danielhkuo/sitetime/realtime"
	"github.com/danielhkuo/sitetime/store"
)

// Deps are the collaborators the routes are built from. Photos may be nil
// when photo forwarding is not configured.
type Deps struct {
	Config   cliparse.Config
	Store    *store.Store
	Tokens   *auth.Manager
	Files    *filestore.Store
	Notifier handlers.Notifier
	Hub      *realtime.Hub
	Photos   handlers.PhotoForwarder
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithLogging)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.Config.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", handlers.APIKeyHeader},
		MaxAge:         300,
	}))

	authHandler := handlers.NewAuthHandler(d.Store, d.Tokens)
	entityHandler := handlers.NewEntityHandler(d.Store, d.Notifier)
	recordHandler := handlers.NewRecordHandler(d.Store, d.Notifier)
	photoHandler := handlers.NewPhotoHandler(d.Store, d.Files, d.Notifier, d.Config.Uploads.MaxBytes())
	syncHandler := handlers.NewSyncHandler(d.Photos)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.Ping(r.Context()); err != nil {
			middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		w.Write([]byte("OK"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("sitetime API v1"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Token issuance
	r.Group(func(r chi.Router) {
		if limit := d.Config.Auth.LoginRateLimit; limit > 0 {
			r.Use(httprate.LimitByIP(limit, time.Minute))
		}
		r.Post("/login", authHandler.Login)
		r.Post("/get_token", authHandler.GetToken)
	})

	// Browsers cannot set headers on a websocket handshake.
	r.With(middleware.RequireAuth(d.Tokens, true)).Get("/ws",
		realtime.ServeWS(d.Hub, d.Config.CORS.AllowedOrigins, identity))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Tokens, false))

		r.Get("/workers", entityHandler.ListWorkers)
		r.Post("/add_worker", entityHandler.AddWorker)
		r.Delete("/remove_worker", entityHandler.RemoveWorker)
		r.Get("/projects", entityHandler.ListProjects)
		r.Post("/add_project", entityHandler.AddProject)
		r.Delete("/remove_project", entityHandler.RemoveProject)

		r.Post("/add_record", recordHandler.AddRecord)
		r.Delete("/remove_record", recordHandler.RemoveRecord)
		r.Get("/records_all", recordHandler.ListAll)
		r.Get("/records/{project}", recordHandler.ListByProject)
		r.Get("/records_unsynced", recordHandler.ListUnsynced)
		r.Post("/mark_synced", recordHandler.MarkSynced)

		r.Post("/upload_photo", photoHandler.Upload)
		r.Get("/project_photos/{project}", photoHandler.List)
		r.Get("/download_photo/*", photoHandler.Download)
		r.Post("/process_photos", syncHandler.ProcessPhotos)
	})

	return r
}

func identity(r *http.Request) string {
	user, _ := middleware.IdentityFrom(r.Context())
	return user
}

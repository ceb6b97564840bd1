package api

import (
	"fmt"

	"github.com/gorilla/mux"
	"github.com/mfreitas/devmarket/internal/config"
	"github.com/mfreitas/devmarket/internal/db"
	"github.com/mfreitas/devmarket/internal/reconcile"
	"github.com/mfreitas/devmarket/internal/repository/sqlite"
	"github.com/mfreitas/devmarket/internal/storage"
	"github.com/mfreitas/devmarket/internal/validate"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, database *db.DB, store storage.Store, sweeper SweepEnqueuer) (*mux.Router, error) {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository and shared services
	repo := sqlite.New(database, logger)
	validator, err := validate.New()
	if err != nil {
		return nil, fmt.Errorf("load validators: %w", err)
	}
	reconciler := reconcile.New(repo, repo, repo, repo, logger)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, repo, repo, cfg.JWTSecret, cfg.TokenDuration)
	profilesHandler := NewProfilesHandler(repo, repo, repo, store, validator)
	projectsHandler := NewProjectsHandler(repo, validator)
	applicationsHandler := NewApplicationsHandler(reconciler, repo, repo, sweeper)
	conversationsHandler := NewConversationsHandler(repo, repo)
	ratingsHandler := NewRatingsHandler(repo, repo, repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	r.HandleFunc("/v1/projects", projectsHandler.List).Methods("GET")
	r.HandleFunc("/v1/projects/{id:[0-9]+}", projectsHandler.Get).Methods("GET")
	r.HandleFunc("/v1/developers/{id:[0-9]+}", profilesHandler.GetDeveloper).Methods("GET")
	r.HandleFunc("/v1/developers/{id:[0-9]+}/ratings", ratingsHandler.ListForDeveloper).Methods("GET")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	apiV1.HandleFunc("/auth/signout", authHandler.Signout).Methods("POST")

	// Profile endpoints
	apiV1.HandleFunc("/profiles/me", profilesHandler.Me).Methods("GET")
	apiV1.HandleFunc("/profiles/me", profilesHandler.UpdateMe).Methods("PUT")
	apiV1.HandleFunc("/profiles/me/avatar", profilesHandler.UploadAvatar).Methods("POST")

	// Project endpoints
	apiV1.HandleFunc("/projects", projectsHandler.Create).Methods("POST")
	apiV1.HandleFunc("/projects/{id:[0-9]+}", projectsHandler.Update).Methods("PUT")
	apiV1.HandleFunc("/projects/{id:[0-9]+}/status", projectsHandler.UpdateStatus).Methods("PATCH")

	// Application endpoints
	apiV1.HandleFunc("/projects/{id:[0-9]+}/applications", applicationsHandler.Apply).Methods("POST")
	apiV1.HandleFunc("/projects/{id:[0-9]+}/applications", applicationsHandler.ListForProject).Methods("GET")
	apiV1.HandleFunc("/applications/mine", applicationsHandler.ListMine).Methods("GET")
	apiV1.HandleFunc("/applications/{id:[0-9]+}", applicationsHandler.Decide).Methods("PATCH")

	// Conversation endpoints
	apiV1.HandleFunc("/conversations", conversationsHandler.List).Methods("GET")
	apiV1.HandleFunc("/conversations/{id:[0-9]+}/messages", conversationsHandler.ListMessages).Methods("GET")
	apiV1.HandleFunc("/conversations/{id:[0-9]+}/messages", conversationsHandler.PostMessage).Methods("POST")
	apiV1.HandleFunc("/conversations/{id:[0-9]+}/read", conversationsHandler.MarkRead).Methods("POST")

	// Rating endpoints
	apiV1.HandleFunc("/developers/{id:[0-9]+}/ratings", ratingsHandler.Rate).Methods("POST")

	return r, nil
}

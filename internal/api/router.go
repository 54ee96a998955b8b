package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ugclabs/ugc-auth/internal/api/handler"
	"github.com/ugclabs/ugc-auth/internal/api/middleware"
	"github.com/ugclabs/ugc-auth/internal/auth"
	"github.com/ugclabs/ugc-auth/internal/user"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	AuthService *auth.Service
	Issuer      *auth.Issuer
	Users       user.Repository
	DBPinger    handler.DBPinger
	Version     string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/", handler.Root(deps.Version))

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	loginHandler := handler.NewLoginHandler(deps.AuthService)
	r.Post("/api/wechat/login", loginHandler.Login)

	profileHandler := handler.NewProfileHandler(deps.Users)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Issuer))
		r.Post("/api/wechat/update-userinfo", profileHandler.UpdateUserInfo)
		r.Get("/profile", profileHandler.Get)
	})

	return r
}

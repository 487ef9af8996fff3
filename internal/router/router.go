// Package router wires configuration, storage and services into the HTTP
// surface.
package router

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/planora/agent-gateway/internal/config"
	"github.com/planora/agent-gateway/internal/handler"
	"github.com/planora/agent-gateway/internal/llm"
	"github.com/planora/agent-gateway/internal/middleware"
	"github.com/planora/agent-gateway/internal/secretbox"
	"github.com/planora/agent-gateway/internal/service"
	"github.com/planora/agent-gateway/internal/tools"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
)

// New builds the HTTP router and everything behind it.
func New(cfg *config.Config, database *sql.DB) (http.Handler, error) {
	box, err := secretbox.New(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			calendar.CalendarScope,
			gmail.GmailSendScope,
			gmail.GmailComposeScope,
			gmail.GmailReadonlyScope,
		},
	}

	authSvc := service.NewAuthService(database, cfg.TokenExpiryHours)
	credSvc := service.NewCredentialService(database)
	cache := service.NewTokenCache(cfg.RedisAddr)
	if cache == nil {
		log.Println("[router] token cache disabled (no redis address)")
	}
	tokenSvc := service.NewTokenService(credSvc, box, oauthCfg, cache)

	registry := tools.DefaultRegistry(tools.Options{
		CalendarEndpoint: cfg.CalendarEndpoint,
		GmailEndpoint:    cfg.GmailEndpoint,
	})
	disp := service.NewDispatcher(llm.New(cfg), registry)

	authH := handler.NewAuthHandler(authSvc)
	healthH := handler.NewHealthHandler("0.1.0")
	connH := handler.NewConnectionHandler(credSvc, box, oauthCfg, cache)
	chatH := handler.NewChatHandler(tokenSvc, disp)

	requireAuth := middleware.AuthMiddleware(authSvc.ValidateToken)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Trace)
	r.Use(middleware.CORS)

	// Public
	r.Get("/v1/health", healthH.Health)
	r.Get("/v1/version", healthH.Version)
	r.Post("/v1/auth/signup", authH.Signup)
	r.Post("/v1/auth/login", authH.Login)

	// Authenticated
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/v1/auth/logout", authH.Logout)
		r.Get("/v1/me", authH.Me)

		r.Post("/v1/chat", chatH.Chat)

		r.Get("/v1/connections", connH.List)
		r.Post("/v1/connections/google", connH.ConnectGoogle)
		r.Delete("/v1/connections/google", connH.DisconnectGoogle)
	})

	return r, nil
}

package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/recallmail/recall/internal/domain"
	"github.com/recallmail/recall/internal/oauth"
	"github.com/recallmail/recall/internal/oauthstate"
	"github.com/recallmail/recall/internal/platform/config"
)

const (
	sessionName      = "recall_session"
	sessionKeyUserID = "user_id"
)

// connectLimiter throttles OAuth initiations per user.
type connectLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID) (bool, error)
}

// redisHealthChecker is the minimal surface needed for readiness checks.
type redisHealthChecker interface {
	Ping(ctx context.Context) error
}

// postgresHealthChecker is the minimal surface needed for readiness checks.
type postgresHealthChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo         *echo.Echo
	config       *config.Config
	users        domain.UserRepository
	connections  domain.ConnectionRepository
	states       *oauthstate.Codec
	oauthClient  oauth.Client
	limiter      connectLimiter
	sessionStore *sessions.CookieStore
	redisHealth  redisHealthChecker
	pgHealth     postgresHealthChecker
}

type Deps struct {
	Users        domain.UserRepository
	Connections  domain.ConnectionRepository
	States       *oauthstate.Codec
	OAuthClient  oauth.Client
	Limiter      connectLimiter
	RedisHealth  redisHealthChecker
	PgHealth     postgresHealthChecker
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(requestIDMiddleware())
	e.Use(middleware.Recover())

	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	srv := &Server{
		echo:         e,
		config:       cfg,
		users:        deps.Users,
		connections:  deps.Connections,
		states:       deps.States,
		oauthClient:  deps.OAuthClient,
		limiter:      deps.Limiter,
		sessionStore: sessionStore,
		redisHealth:  deps.RedisHealth,
		pgHealth:     deps.PgHealth,
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(":" + s.config.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

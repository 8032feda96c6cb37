package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/holidaytable/holidaytable/internal/auth"
	authdomain "github.com/holidaytable/holidaytable/internal/auth/domain"
	"github.com/holidaytable/holidaytable/internal/auth/session"
	"github.com/holidaytable/holidaytable/internal/clock"
	"github.com/holidaytable/holidaytable/internal/config"
	"github.com/holidaytable/holidaytable/internal/connection"
	connectiondomain "github.com/holidaytable/holidaytable/internal/connection/domain"
	"github.com/holidaytable/holidaytable/internal/messaging"
	messagingdomain "github.com/holidaytable/holidaytable/internal/messaging/domain"
	"github.com/holidaytable/holidaytable/internal/notification"
	notificationdomain "github.com/holidaytable/holidaytable/internal/notification/domain"
	"github.com/holidaytable/holidaytable/internal/observability"
	obsmiddleware "github.com/holidaytable/holidaytable/internal/observability/logger"
	obsmetrics "github.com/holidaytable/holidaytable/internal/observability/metrics"
	obstracing "github.com/holidaytable/holidaytable/internal/observability/tracing"
	"github.com/holidaytable/holidaytable/internal/profile"
	profiledomain "github.com/holidaytable/holidaytable/internal/profile/domain"
	"github.com/holidaytable/holidaytable/internal/providers/email"
	"github.com/holidaytable/holidaytable/internal/ratelimit"
	"github.com/holidaytable/holidaytable/internal/reference"
	referencedomain "github.com/holidaytable/holidaytable/internal/reference/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	fx.Provide(registerGin),
	auth.Module,
	session.Module,
	email.Module,
	reference.Module,
	profile.Module,
	connection.Module,
	messaging.Module,
	notification.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	sessions        *session.Manager
	authSvc         authdomain.Service
	profileSvc      profiledomain.Service
	connectionSvc   connectiondomain.Service
	messagingSvc    messagingdomain.Service
	notificationSvc notificationdomain.Service
	refRepo         referencedomain.Repository
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Sessions        *session.Manager
	AuthSvc         authdomain.Service
	ProfileSvc      profiledomain.Service
	ConnectionSvc   connectiondomain.Service
	MessagingSvc    messagingdomain.Service
	NotificationSvc notificationdomain.Service
	RefRepo         referencedomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		sessions:        p.Sessions,
		authSvc:         p.AuthSvc,
		profileSvc:      p.ProfileSvc,
		connectionSvc:   p.ConnectionSvc,
		messagingSvc:    p.MessagingSvc,
		notificationSvc: p.NotificationSvc,
		refRepo:         p.RefRepo,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	grp := s.engine.Group("/auth")

	grp.POST("/signup", s.Signup)
	grp.POST("/login", s.Login)
	grp.POST("/logout", s.Logout)
	grp.GET("/me", s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/holidays", s.ListHolidays)

	// -------- Profiles --------
	api.POST("/profiles", s.AuthRequired(), s.CreateProfile)
	api.PUT("/profiles/me", s.AuthRequired(), s.UpdateMyProfile)
	api.GET("/profiles", s.AuthRequired(), s.ListProfiles)
	api.GET("/profiles/id/:id", s.AuthRequired(), s.GetProfileByID)
	api.GET("/profiles/:username", s.AuthRequired(), s.GetProfileByUsername)

	// -------- Connections --------
	api.POST("/connections", s.AuthRequired(), s.SendInvitation)
	api.POST("/connections/:id/accept", s.AuthRequired(), s.AcceptInvitation)
	api.POST("/connections/:id/decline", s.AuthRequired(), s.DeclineInvitation)
	api.GET("/connections/status/:userId", s.AuthRequired(), s.GetConnectionStatus)
	api.GET("/connections/pending-count", s.AuthRequired(), s.PendingInvitationCount)
	api.GET("/connections/received", s.AuthRequired(), s.ListReceivedInvitations)
	api.GET("/connections/sent", s.AuthRequired(), s.ListSentInvitations)

	// -------- Messages --------
	api.POST("/messages/:userId", s.AuthRequired(), s.SendMessage)
	api.GET("/messages/unread-count", s.AuthRequired(), s.UnreadMessageCount)
	api.GET("/messages/:userId", s.AuthRequired(), s.ListMessages)

	// -------- Notifications --------
	api.GET("/notifications", s.AuthRequired(), s.ListNotifications)
	api.GET("/notifications/unread-count", s.AuthRequired(), s.UnreadNotificationCount)
	api.POST("/notifications/read-all", s.AuthRequired(), s.MarkAllNotificationsRead)
	api.POST("/notifications/:id/read", s.AuthRequired(), s.MarkNotificationRead)

	if s.cfg.Environment != "production" {
		api.POST("/test/cleanup", s.TestCleanup)
	}
}

// Package server contains the HTTP and WebSocket handlers of the API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "github.com/madaghaxx/Noctua/docs" // swagger docs
	"github.com/madaghaxx/Noctua/internal/cache"
	"github.com/madaghaxx/Noctua/internal/cascade"
	"github.com/madaghaxx/Noctua/internal/config"
	"github.com/madaghaxx/Noctua/internal/featureflags"
	"github.com/madaghaxx/Noctua/internal/middleware"
	"github.com/madaghaxx/Noctua/internal/models"
	"github.com/madaghaxx/Noctua/internal/notifications"
	"github.com/madaghaxx/Noctua/internal/repository"
	"github.com/madaghaxx/Noctua/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	store        repository.Store
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	authService         *service.AuthService
	postService         *service.PostService
	commentService      *service.CommentService
	likeService         *service.LikeService
	subscriptionService *service.SubscriptionService
	reportService       *service.ReportService
	notificationService *service.NotificationService
	moderationService   *service.ModerationService
	userService         *service.UserService
}

// NewServer wires the services over already-initialized dependencies.
// redisClient may be nil, in which case notifications are delivered only to
// sockets held by this process and caching is skipped.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	store := repository.NewStore(db)
	hub := notifications.NewHub()
	notifier := notifications.NewNotifier(redisClient).WithLocalHub(hub)
	dispatcher := notifications.NewDispatcher(notifier)
	deleter := cascade.NewDeleter(store)
	c := cache.New(redisClient)

	return &Server{
		config:              cfg,
		db:                  db,
		redis:               redisClient,
		store:               store,
		notifier:            notifier,
		hub:                 hub,
		featureFlags:        featureflags.NewManager(cfg.FeatureFlags),
		authService:         service.NewAuthService(store.Users(), c, cfg.JWTSecret),
		postService:         service.NewPostService(store, deleter, c),
		commentService:      service.NewCommentService(store, dispatcher),
		likeService:         service.NewLikeService(store, dispatcher),
		subscriptionService: service.NewSubscriptionService(store, dispatcher),
		reportService:       service.NewReportService(store, c),
		notificationService: service.NewNotificationService(store.Notifications()),
		moderationService:   service.NewModerationService(store, deleter, c),
		userService:         service.NewUserService(store.Users()),
	}
}

// EnableMetrics turns on request metrics and the /metrics endpoint. It must
// be called before App or Start.
func (s *Server) EnableMetrics(prom *fiberprometheus.FiberPrometheus) {
	s.promMiddleware = prom
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName: "Noctua API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Reads that work anonymously but personalize "liked" for a signed-in viewer.
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/:id/comments", s.GetComments)
	publicPosts.Get("/:id", s.GetPost)

	publicUsers := api.Group("/users")
	publicUsers.Get("/:id/posts", s.GetUserPosts)
	publicUsers.Get("/:id/subscribers", s.GetSubscribers)
	publicUsers.Get("/:id/subscriptions", s.GetSubscriptions)
	publicUsers.Get("/:id/subscription-stats", s.GetSubscriptionStats)

	api.Get("/analytics", s.PublicFlagRequired(featureflags.PublicAnalytics), s.GetAnalytics)

	// Everything registered after this group requires an active account.
	protected := api.Group("", s.AuthRequired(), s.ActiveRequired())
	protected.Get("/feature-flags", s.GetFeatureFlags)
	protected.Get("/feed", s.FlagRequired(featureflags.SubscriptionFeed), s.GetFeed)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", middleware.RateLimit(s.redis, 60, time.Minute, "toggle_like"), s.ToggleLike)
	posts.Post("/:id/comments", middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	comments := protected.Group("/comments")
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	users := protected.Group("/users")
	users.Get("/", s.ListUsers)
	users.Get("/me", s.GetMe)
	users.Get("/:id", s.GetUser)
	users.Post("/:id/subscribe", middleware.RateLimit(s.redis, 30, time.Minute, "toggle_subscription"), s.ToggleSubscription)

	protected.Post("/reports", middleware.RateLimit(s.redis, 5, 10*time.Minute, "create_report"), s.CreateReport)

	notes := protected.Group("/notifications")
	notes.Get("/", s.GetNotifications)
	notes.Get("/unread-count", s.GetUnreadCount)
	notes.Put("/read-all", s.MarkAllNotificationsRead)
	notes.Put("/:id/read", s.MarkNotificationRead)

	protected.Get("/ws", s.FlagRequired(featureflags.RealtimeNotifications), s.WebsocketUpgrade, s.WebsocketHandler())

	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/analytics", s.GetAnalytics)
	admin.Get("/feature-flags", s.GetAdminFeatureFlags)
	admin.Get("/reports", s.GetAdminReports)
	admin.Post("/reports/:id/resolve", s.ResolveReport)
	admin.Post("/reports/:id/dismiss", s.DismissReport)
	admin.Get("/users", s.GetAdminUsers)
	admin.Post("/users/:id/ban", s.BanUser)
	admin.Post("/users/:id/unban", s.UnbanUser)
	admin.Delete("/users/:id", s.AdminDeleteUser)
	admin.Delete("/posts/:id", s.AdminDeletePost)
	admin.Post("/posts/:id/hide", s.HidePost)
	admin.Post("/posts/:id/unhide", s.UnhidePost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database and, if configured, Redis respond.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start wires the hub to Redis and listens on the configured port.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	go func() {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start notification wiring", slog.String("error", err.Error()))
		}
	}()

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server and closes open sockets. The database and
// Redis clients belong to the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.hub.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	middleware.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}

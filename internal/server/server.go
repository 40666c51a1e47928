package server

import (
	"context"

	"backend-stridelog/internal/auth"
	"backend-stridelog/internal/config"
	"backend-stridelog/internal/mission"
	"backend-stridelog/internal/profile"
	"backend-stridelog/internal/session"
	"backend-stridelog/internal/social"
	"backend-stridelog/internal/stats"
	"backend-stridelog/internal/stream"
	"backend-stridelog/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Sessions *session.Service
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)

	statsSvc := stats.NewService(db)
	sessionSvc := session.NewService(
		session.NewStore(db),
		session.NewRemote(redisClient),
		statsSvc,
	)

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       db,
		Redis:    redisClient,
		Stream:   hub,
		Sessions: sessionSvc,
	}

	registerRoutes(s, statsSvc)
	return s
}

func registerRoutes(s *Server, statsSvc *stats.Service) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	trackingSvc := tracking.NewService(
		tracking.NewManager(),
		s.Stream,
		func(ctx context.Context, live tracking.LiveSession) (string, error) {
			ts, _, err := s.Sessions.Complete(ctx, live)
			return ts.ID, err
		},
	)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB, s.Sessions, statsSvc))
	tracking.RegisterRoutes(s.App.Group("/tracking"), trackingSvc, jwtMiddleware)
	session.RegisterRoutes(s.App.Group("/sessions"), s.Sessions, jwtMiddleware)
	stats.RegisterRoutes(s.App.Group("/stats"), statsSvc, jwtMiddleware)
	mission.RegisterRoutes(s.App.Group("/missions"), statsSvc, jwtMiddleware)
	profile.RegisterRoutes(s.App.Group("/profile"), profile.NewService(s.DB), jwtMiddleware)
	social.RegisterRoutes(s.App.Group("/social"), social.NewService(s.DB), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, jwtMiddleware)
}

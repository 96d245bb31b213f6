// server/http/server.go
package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/ViniZap4/carnet-server/auth"
	"github.com/ViniZap4/carnet-server/diff"
	"github.com/ViniZap4/carnet-server/metrics"
	"github.com/ViniZap4/carnet-server/settings"
)

// Options configures a Server. Roots is required; the other stores
// default to their on-disk implementations.
type Options struct {
	// Root is used when a request does not name one.
	Root     string
	Token    string
	Logger   zerolog.Logger
	Settings *settings.Store
	Roots    settings.RootStore
	Diff     *diff.Service
	Metrics  *metrics.Metrics
}

type Server struct {
	app      *fiber.App
	root     string
	log      zerolog.Logger
	settings *settings.Store
	roots    settings.RootStore
	diff     *diff.Service
	metrics  *metrics.Metrics
}

func NewServer(opts Options) (*Server, error) {
	if opts.Roots == nil {
		return nil, errors.New("last-root store required")
	}
	if opts.Settings == nil {
		opts.Settings = settings.NewStore(afero.NewOsFs())
	}
	if opts.Diff == nil {
		opts.Diff = diff.NewService()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	s := &Server{
		root:     opts.Root,
		log:      opts.Logger,
		settings: opts.Settings,
		roots:    opts.Roots,
		diff:     opts.Diff,
		metrics:  opts.Metrics,
	}

	authMiddleware, err := auth.Middleware(opts.Token)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "carnet",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type," + auth.Header,
	}))
	app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	app.Use(s.metrics.Middleware())
	app.Use(requestLogger(s.log))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", s.metrics.Handler())

	api := app.Group("/api", authMiddleware)
	api.Get("/tree", s.handleTree)
	api.Get("/note", s.handleReadNote)
	api.Put("/note", s.handleWriteNote)
	api.Post("/folders", s.handleCreateFolder)
	api.Post("/notes", s.handleCreateNote)
	api.Post("/rename", s.handleRename)
	api.Delete("/path", s.handleDelete)
	api.Get("/search", s.handleSearch)
	api.Post("/diff", s.handleDiff)
	api.Get("/settings", s.handleGetSettings)
	api.Put("/settings", s.handlePutSettings)
	api.Get("/last-root", s.handleGetLastRoot)
	api.Put("/last-root", s.handlePutLastRoot)

	s.app = app
	return s, nil
}

// App exposes the underlying fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Str("root", s.root).Msg("server starting")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

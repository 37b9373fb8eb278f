// Package server exposes the image search over HTTP so browser front ends can
// query without holding the API key.
package server

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/pixmark/internal/gallery"
)

const shutdownTimeout = 10 * time.Second

// Searcher runs an image search.
type Searcher interface {
	Search(ctx context.Context, query string, perPage int) ([]gallery.ImageRecord, error)
}

// Config holds the proxy settings.
type Config struct {
	Addr        string
	CORSOrigins string
	PerPage     int // used when the request has no per_page
	Quiet       bool
}

// Server wraps the fiber app.
type Server struct {
	app    *fiber.App
	cfg    Config
	search Searcher
}

// New builds a server with middleware and routes installed.
func New(cfg Config, search Searcher) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "pixmark",
		StrictRouting:         true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		DisableStartupMessage: cfg.Quiet,
	})
	s := &Server{app: app, cfg: cfg, search: search}
	s.SetupMiddleware()
	s.SetupRoutes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// SetupMiddleware installs recover, request logging and CORS.
func (s *Server) SetupMiddleware() {
	s.app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	if !s.cfg.Quiet {
		s.app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	origins := s.cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, OPTIONS",
	}))
}

// SetupRoutes registers the endpoints.
func (s *Server) SetupRoutes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	api := s.app.Group("/api")
	api.Get("/search", s.handleSearch)
}

func (s *Server) handleSearch(c *fiber.Ctx) error {
	perPage := c.QueryInt("per_page", s.cfg.PerPage)
	hits, err := s.search.Search(c.UserContext(), c.Query("q"), perPage)
	if err != nil {
		status := StatusFor(err)
		if status >= fiber.StatusInternalServerError {
			log.Printf("search %q: %v", c.Query("q"), err)
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	if hits == nil {
		hits = []gallery.ImageRecord{}
	}
	return c.JSON(hits)
}

// StatusFor maps a search error to the response status.
func StatusFor(err error) int {
	var terr *gallery.TransportError
	switch {
	case errors.Is(err, gallery.ErrEmptyQuery), errors.Is(err, gallery.ErrInvalidQuery):
		return fiber.StatusBadRequest
	case errors.Is(err, gallery.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.As(err, &terr), errors.Is(err, gallery.ErrInvalidResponse),
		errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// Start listens until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	done := make(chan struct{})
	defer close(done)
	go s.awaitSignal(quit, done)
	return s.app.Listen(s.cfg.Addr)
}

// awaitSignal shuts the app down when quit fires. It returns false without
// shutting down once done is closed.
func (s *Server) awaitSignal(quit <-chan os.Signal, done <-chan struct{}) bool {
	select {
	case <-quit:
	case <-done:
		return false
	}
	log.Println("shutting down server")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	return true
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(shutdownTimeout)
}

// Package server exposes the HTTP surface of a running world: health and world metadata
// endpoints, a full state dump for debugging, and a websocket stream of tick events.
package server

import (
	"sync"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"

	"github.com/veldt-engine/veldt/events"
	"github.com/veldt-engine/veldt/gamestate"
	"github.com/veldt-engine/veldt/search"
	"github.com/veldt-engine/veldt/search/filter"
	"github.com/veldt-engine/veldt/types"
)

const (
	defaultPort = "4040"
)

// Provider is the subset of world functionality the HTTP server needs.
type Provider interface {
	Namespace() string
	IsGameLoopRunning() bool
	CurrentTick() uint64
	GetRegisteredComponents() []types.ComponentMetadata
	StoreReader() gamestate.Reader
	Search(filter filter.ComponentFilter) *search.Search
}

type Server struct {
	provider Provider
	eventHub *events.EventHub
	app      *fiber.App

	port     string
	withCORS bool

	running       atomic.Bool
	shutdownMutex sync.Mutex
}

// New returns a server with the default endpoints registered.
func New(provider Provider, eventHub *events.EventHub, opts ...Option) (*Server, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		provider: provider,
		eventHub: eventHub,
		app:      app,
		port:     defaultPort,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.withCORS {
		app.Use(cors.New())
	}

	s.registerHandlers()
	return s, nil
}

// Serve serves the application, blocking the calling thread.
// Call this in a new go routine to prevent blocking.
func (s *Server) Serve() error {
	s.running.Store(true)
	err := s.app.Listen(":" + s.port)
	if err != nil {
		return eris.Wrap(err, "error starting Fiber app")
	}
	s.running.Store(false)
	return nil
}

// Shutdown gracefully shuts down the server and closes all active websocket connections.
func (s *Server) Shutdown() error {
	s.shutdownMutex.Lock()
	defer s.shutdownMutex.Unlock()
	if !s.running.Load() {
		return nil
	}
	log.Info().Msg("Shutting down server")
	if err := s.app.Shutdown(); err != nil {
		return eris.Wrap(err, "error shutting down server")
	}
	log.Info().Msg("Successfully shut down server")
	return nil
}

// App returns the underlying fiber app. Used for testing.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) registerHandlers() {
	s.app.Get("/health", GetHealth(s.provider))
	s.app.Get("/world", GetWorld(s.provider))
	s.app.Post("/debug/state", GetDebugState(s.provider))

	s.app.Use("/events", WebSocketUpgrader)
	s.app.Get("/events", WebSocketEvents(s.eventHub.NewWebSocketEventHandler()))
}

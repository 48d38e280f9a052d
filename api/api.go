package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/parchmentco/lore/pkg/agent"
	"github.com/parchmentco/lore/pkg/llm"
	"github.com/parchmentco/lore/pkg/memory"
	"github.com/parchmentco/lore/pkg/prompt"
	"github.com/parchmentco/lore/pkg/research"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP server for the research and chat endpoints.
type Server struct {
	config    Config
	store     memory.Store
	generator llm.Generator
	prompts   *prompt.Registry
	assistant *research.Assistant
	agent     *agent.Agent
	logger    *slog.Logger
	app       *fiber.App
}

// NewServer creates a new API server. The store, generator, and agents are
// injected so one process-wide instance of each is shared with the CLI
// commands and closed once at shutdown.
func NewServer(
	config Config,
	store memory.Store,
	generator llm.Generator,
	prompts *prompt.Registry,
	assistant *research.Assistant,
	chatAgent *agent.Agent,
	logger *slog.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		store:     store,
		generator: generator,
		prompts:   prompts,
		assistant: assistant,
		agent:     chatAgent,
		logger:    logger,
		app:       app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/analyze", s.handleAnalyze)
	app.Post("/research", s.handleResearch)
	app.Post("/chat", s.handleChat)
	app.Get("/topics", s.handleTopics)
	app.Get("/history/:topic", s.handleHistory)
	app.Get("/export/:topic", s.handleExport)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/parchmentco/lore/pkg/memory"
	"github.com/parchmentco/lore/pkg/pipeline"
	"github.com/parchmentco/lore/pkg/prompt"
)

// AnalyzeResponse is the /analyze payload: a summary of the submitted text
// and a fact-check pass over that summary.
type AnalyzeResponse struct {
	Summary     string `json:"summary"`
	Corrections string `json:"corrections"`
}

// StepFailure identifies the step a research run stopped on.
type StepFailure struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Detail   string `json:"detail"`
}

// ResearchResponse is the full pipeline result: ordered step outputs plus
// flattened convenience fields, with "N/A" for steps that never produced
// output.
type ResearchResponse struct {
	Topic       string                `json:"topic"`
	Model       string                `json:"model"`
	Steps       []pipeline.StepOutput `json:"steps"`
	Search      string                `json:"search"`
	Summary     string                `json:"summary"`
	Corrections string                `json:"corrections"`
	Report      string                `json:"report"`
	Error       *StepFailure          `json:"error,omitempty"`
}

// ChatResponse is the /chat payload: the model's reply and the topic's
// history including the new turn.
type ChatResponse struct {
	AIResponse string        `json:"ai_response"`
	History    []memory.Turn `json:"history"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleAnalyze summarizes the submitted text and fact-checks the summary.
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	text := c.FormValue("text")
	if strings.TrimSpace(text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Text cannot be empty."})
	}

	model, ok := s.resolveModel(c.FormValue("model"))
	if !ok {
		return s.unsupportedModel(c)
	}

	ctx := c.Context()

	summary, err := s.runTask(ctx, model, prompt.TaskSummarize, map[string]string{"text": text})
	if err != nil {
		return s.fail(c, err)
	}

	corrections, err := s.runTask(ctx, model, prompt.TaskFactCheck, map[string]string{"text": summary})
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(AnalyzeResponse{Summary: summary, Corrections: corrections})
}

// handleResearch runs the full research pipeline for a topic.
func (s *Server) handleResearch(c *fiber.Ctx) error {
	topic := c.FormValue("topic")
	if strings.TrimSpace(topic) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Topic cannot be empty."})
	}

	model, ok := s.resolveModel(c.FormValue("model"))
	if !ok {
		return s.unsupportedModel(c)
	}

	result := s.assistant.Run(c.Context(), topic, model)

	response := ResearchResponse{
		Topic:       result.Topic,
		Model:       result.Model,
		Steps:       result.Steps,
		Search:      result.Search,
		Summary:     result.Summary,
		Corrections: result.Corrections,
		Report:      result.Report,
	}
	if response.Steps == nil {
		response.Steps = []pipeline.StepOutput{}
	}

	if !result.Failed() {
		return c.JSON(response)
	}

	response.Error = &StepFailure{
		Step:     result.Err.Step,
		Category: categoryForError(result.Err),
		Detail:   result.Err.Err.Error(),
	}

	return c.Status(statusForError(result.Err)).JSON(response)
}

// handleChat answers within a topic using its stored history.
func (s *Server) handleChat(c *fiber.Ctx) error {
	topic := c.FormValue("topic")
	userInput := c.FormValue("user_input")
	if strings.TrimSpace(topic) == "" || strings.TrimSpace(userInput) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Topic and user input cannot be empty."})
	}

	model, ok := s.resolveModel(c.FormValue("model"))
	if !ok {
		return s.unsupportedModel(c)
	}

	reply, err := s.agent.Respond(c.Context(), topic, model, userInput)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(ChatResponse{AIResponse: reply.Turn.AI, History: reply.History})
}

// handleTopics lists every topic that has at least one turn.
func (s *Server) handleTopics(c *fiber.Ctx) error {
	topics, err := s.store.Topics(c.Context())
	if err != nil {
		return s.fail(c, err)
	}
	if topics == nil {
		topics = []string{}
	}

	return c.JSON(fiber.Map{"topics": topics})
}

// handleHistory returns a topic's turns oldest first. Unknown topics yield
// an empty history, not an error.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	topic := c.Params("topic")
	if topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Topic name cannot be empty."})
	}

	history, err := s.store.History(c.Context(), topic)
	if err != nil {
		return s.fail(c, err)
	}
	if history == nil {
		history = []memory.Turn{}
	}

	return c.JSON(fiber.Map{"topic": topic, "history": history})
}

// handleExport returns the full topic record for download.
func (s *Server) handleExport(c *fiber.Ctx) error {
	topic := c.Params("topic")
	if topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Topic name cannot be empty."})
	}

	record, err := s.store.Export(c.Context(), topic)
	if err != nil {
		if memory.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: fmt.Sprintf("Topic '%s' not found.", topic)})
		}
		return s.fail(c, err)
	}

	return c.JSON(record)
}

// runTask renders a registered prompt task and generates a completion for it.
func (s *Server) runTask(ctx context.Context, model, task string, bindings map[string]string) (string, error) {
	rendered, err := s.prompts.Render(task, bindings)
	if err != nil {
		return "", err
	}
	return s.generator.Generate(ctx, model, rendered)
}

// resolveModel applies the configured default and the allow-list.
func (s *Server) resolveModel(model string) (string, bool) {
	if model == "" {
		model = s.config.DefaultModel
	}
	return model, s.config.modelAllowed(model)
}

func (s *Server) unsupportedModel(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: fmt.Sprintf("Unsupported LLM model. Supported models are: %s", strings.Join(s.config.AllowedModels, ", ")),
	})
}

// fail logs err and writes the mapped status with a uniform error payload.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := statusForError(err)
	s.logger.Error("request failed", "path", c.Path(), "status", status, "error", err)
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}

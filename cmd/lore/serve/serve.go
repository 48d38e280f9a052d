// Package servecmder provides the serve command for running the HTTP API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/parchmentco/lore/api"
	"github.com/parchmentco/lore/pkg/agent"
	"github.com/parchmentco/lore/pkg/app"
	"github.com/parchmentco/lore/pkg/config"
	"github.com/parchmentco/lore/pkg/dotdir"
	"github.com/parchmentco/lore/pkg/logger"
	"github.com/parchmentco/lore/pkg/prompt"
	"github.com/parchmentco/lore/pkg/research"
)

type ServeCommander struct {
	listen          string
	ollamaURL       string
	timeoutSeconds  uint
	storageProvider string
	sqlitePath      string
	postgresDSN     string
	searchAPIKey    string
	configDir       string
	debug           bool
}

const serveLongDesc string = `Run the lore HTTP API server.

The server exposes chat, research, and topic inspection endpoints backed by
a single shared conversation store:
  POST /chat                Memory-backed conversation within a topic
  POST /research            The research pipeline for a topic
  POST /analyze             Summarize + fact-check a block of text
  GET  /topics              List stored topics
  GET  /history/<topic>     A topic's turns, oldest first
  GET  /export/<topic>      Full topic record as JSON

Examples:
  lore serve
  lore serve --listen :9090 --storage-provider postgres --postgres-dsn $DSN`

const serveShortDesc string = "Run the lore API server"

// logFileName is the structured log written inside the .lore/ directory
// alongside the pretty terminal output.
const logFileName = "lore.log"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagAPIListen,
				config.FlagOllamaURL,
				config.FlagTimeout,
				config.FlagStorageProvider,
				config.FlagSQLite,
				config.FlagPostgresDSN,
				config.FlagSearchKey,
			})

			return cmder.run(app.SettingsFromViper(v))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagOllamaURL, &cmder.ollamaURL)
	config.AddUintFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeoutSeconds)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Flags, config.FlagSearchKey, &cmder.searchAPIKey)

	return cmd
}

func (c *ServeCommander) run(settings app.Settings) error {
	target, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return fmt.Errorf("resolving lore directory: %w", err)
	}

	logFile, err := os.OpenFile(filepath.Join(target, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()

	// Pretty output on the terminal, structured records in the dotdir log
	log := logger.Multi(
		logger.New(logger.WithDebug(c.debug), logger.WithPretty(true)),
		logger.New(logger.WithDebug(c.debug), logger.WithJSON(true), logger.WithWriter(logFile)),
	)

	// Shared store, closed once on shutdown
	store, err := settings.OpenStore(context.Background(), target)
	if err != nil {
		return fmt.Errorf("opening conversation store: %w", err)
	}
	defer store.Close()

	publisher, err := settings.NewPublisher()
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer publisher.Close()

	prompts := prompt.Default()
	generator := settings.NewGenerator()

	assistant := research.NewAssistant(
		settings.NewSearcher(),
		generator,
		prompts,
		research.WithLogger(log),
	)

	chatAgent := agent.NewAgent(
		store,
		settings.NewChatGenerator(),
		prompts,
		agent.WithLogger(log),
		agent.WithPublisher(publisher),
	)

	apiServer := api.NewServer(
		api.Config{
			ListenAddr:    settings.Listen,
			DefaultModel:  settings.Model,
			AllowedModels: settings.AllowedModels,
		},
		store,
		generator,
		prompts,
		assistant,
		chatAgent,
		log,
	)

	log.Info("starting lore",
		"listen", settings.Listen,
		"storage", settings.StorageProvider,
		"model", settings.Model,
		"ollama", settings.OllamaBaseURL,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
		return apiServer.Shutdown()
	}
}

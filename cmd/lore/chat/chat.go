// Package chatcmder provides the chat command for memory-backed interactive
// conversation within a topic.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/parchmentco/lore/pkg/agent"
	"github.com/parchmentco/lore/pkg/app"
	"github.com/parchmentco/lore/pkg/cliui"
	"github.com/parchmentco/lore/pkg/config"
	"github.com/parchmentco/lore/pkg/dotdir"
	"github.com/parchmentco/lore/pkg/logger"
	"github.com/parchmentco/lore/pkg/prompt"
	"github.com/parchmentco/lore/pkg/utils"
)

var (
	userPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	aiPrompt   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("ai> ")
)

type chatCommander struct {
	model           string
	storageProvider string
	sqlitePath      string
	postgresDSN     string
	configDir       string
	debug           bool
}

const chatLongDesc string = `Start an interactive chat session within a topic.

Every exchange is appended to the topic's durable memory, and every response
is grounded in the topic's full stored history. Quitting and rerunning the
command picks the conversation up where it left off.

Examples:
  lore chat "quantum computing"
  lore chat "quantum computing" --model mistral:latest`

const chatShortDesc string = "Interactive chat that remembers the topic"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat <topic>",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{
				config.FlagModel,
				config.FlagStorageProvider,
				config.FlagSQLite,
				config.FlagPostgresDSN,
			})

			return cmder.run(args[0], app.SettingsFromViper(v))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)

	return cmd
}

func (c *chatCommander) run(topic string, settings app.Settings) error {
	log := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	target, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return fmt.Errorf("resolving lore directory: %w", err)
	}

	ctx := context.Background()

	store, err := settings.OpenStore(ctx, target)
	if err != nil {
		return fmt.Errorf("opening conversation store: %w", err)
	}
	defer store.Close()

	chatAgent := agent.NewAgent(
		store,
		settings.NewChatGenerator(),
		prompt.Default(),
		agent.WithLogger(log),
	)

	history, err := store.History(ctx, topic)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	fmt.Println()
	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Topic:"), cliui.Topic(topic))
	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Model:"), cliui.ValueStyle.Render(settings.Model))
	if len(history) > 0 {
		last := history[len(history)-1]
		fmt.Printf("  %s\n", cliui.DimStyle.Render(fmt.Sprintf("Resuming with %d stored turns.", len(history))))
		fmt.Printf("  %s\n", cliui.DimStyle.Render(fmt.Sprintf("Last reply: %s", utils.Truncate(last.AI, 72))))
	} else {
		fmt.Printf("  %s\n", cliui.DimStyle.Render("New topic."))
	}
	fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		reply, err := chatAgent.Respond(ctx, topic, settings.Model, input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s %v\n", cliui.FailMark, err)
			continue
		}

		fmt.Printf("%s%s\n\n", aiPrompt, reply.Turn.AI)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

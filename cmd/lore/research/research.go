// Package researchcmder provides the research command for running the
// search -> summarize -> fact-check -> report pipeline from the terminal.
package researchcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parchmentco/lore/pkg/app"
	"github.com/parchmentco/lore/pkg/cliui"
	"github.com/parchmentco/lore/pkg/config"
	"github.com/parchmentco/lore/pkg/logger"
	"github.com/parchmentco/lore/pkg/pipeline"
	"github.com/parchmentco/lore/pkg/prompt"
	"github.com/parchmentco/lore/pkg/research"
)

type researchCommander struct {
	model        string
	ollamaURL    string
	searchAPIKey string
	configDir    string
	debug        bool
}

const researchLongDesc string = `Run the research pipeline for a topic.

Searches the web, summarizes the results, fact-checks the summary, and
generates a final research brief. Steps run in order and each consumes the
previous step's output; on failure the completed steps are still shown.

Requires a SerpApi key (search.api_key or --search-api-key) and a running
Ollama-compatible backend.

Examples:
  lore research "quantum computing"
  lore research "quantum computing" --model mistral:latest`

const researchShortDesc string = "Run the research pipeline for a topic"

func NewResearchCmd() *cobra.Command {
	cmder := &researchCommander{}

	cmd := &cobra.Command{
		Use:   "research <topic>",
		Short: researchShortDesc,
		Long:  researchLongDesc,
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
				config.FlagOllamaURL,
				config.FlagSearchKey,
			})

			return cmder.run(args[0], app.SettingsFromViper(v))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagModel, &cmder.model)
	config.AddStringFlag(cmd, config.Flags, config.FlagOllamaURL, &cmder.ollamaURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagSearchKey, &cmder.searchAPIKey)

	return cmd
}

func (c *researchCommander) run(topic string, settings app.Settings) error {
	log := logger.New(logger.WithDebug(c.debug), logger.WithPretty(true))

	assistant := research.NewAssistant(
		settings.NewSearcher(),
		settings.NewGenerator(),
		prompt.Default(),
		research.WithLogger(log),
	)

	fmt.Println()
	fmt.Printf("  %s %s\n", cliui.KeyStyle.Render("Topic:"), cliui.Topic(topic))
	fmt.Printf("  %s %s\n\n", cliui.KeyStyle.Render("Model:"), cliui.ValueStyle.Render(settings.Model))

	var result *research.Result
	_ = cliui.Step(os.Stdout, "researching", func() error {
		result = assistant.Run(context.Background(), topic, settings.Model)
		if result.Failed() {
			return result.Err
		}
		return nil
	})

	fmt.Println()
	for _, step := range result.Steps {
		fmt.Printf("  %s %s\n", cliui.SuccessMark, cliui.StepStyle.Render(step.Name))
	}

	if result.Failed() {
		step := result.Err.Step
		if step == pipeline.ProbeStepName {
			step = "backend probe"
		}
		fmt.Printf("  %s %s\n\n", cliui.FailMark, cliui.StepStyle.Render(step))
		return fmt.Errorf("research failed at %s: %w", result.Err.Step, result.Err.Err)
	}

	rendered, err := cliui.RenderMarkdown(result.Report)
	if err != nil {
		// Fall back to the raw report if the terminal renderer chokes.
		fmt.Printf("\n%s\n", result.Report)
		return nil
	}

	fmt.Println(rendered)
	return nil
}

// Package lorecmder
package lorecmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/parchmentco/lore/cmd/lore/chat"
	configcmder "github.com/parchmentco/lore/cmd/lore/config"
	researchcmder "github.com/parchmentco/lore/cmd/lore/research"
	servecmder "github.com/parchmentco/lore/cmd/lore/serve"
	topicscmder "github.com/parchmentco/lore/cmd/lore/topics"
	versioncmder "github.com/parchmentco/lore/cmd/version"
)

const loreLongDesc string = `Lore is a research assistant with durable per-topic memory.

Talk to a local model, run multi-step research pipelines, and keep every
conversation on disk, organized by topic:
  lore serve               Run the HTTP API server
  lore chat <topic>        Interactive chat that remembers the topic
  lore research <topic>    Run the search -> summarize -> fact-check -> report pipeline
  lore topics              Inspect stored topics`

const loreShortDesc string = "Lore - research assistant with memory"

func NewLoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lore",
		Short: loreShortDesc,
		Long:  loreLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .lore/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(researchcmder.NewResearchCmd())
	cmd.AddCommand(topicscmder.NewTopicsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}

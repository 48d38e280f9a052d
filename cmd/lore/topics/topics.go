// Package topicscmder provides commands for inspecting the stored topics:
// listing them, printing a topic's history, and exporting a topic as JSON.
package topicscmder

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/parchmentco/lore/pkg/app"
	"github.com/parchmentco/lore/pkg/cliui"
	"github.com/parchmentco/lore/pkg/config"
	"github.com/parchmentco/lore/pkg/dotdir"
	"github.com/parchmentco/lore/pkg/memory"
)

const topicsLongDesc string = `Inspect stored conversation topics.

Topics are created implicitly by chatting; use subcommands to drill into one:
  lore topics                     List all topics
  lore topics history <topic>     Print a topic's turns, oldest first
  lore topics export <topic>      Print the full topic record as JSON

Examples:
  lore topics
  lore topics history "quantum computing"
  lore topics export "quantum computing" > quantum.json`

const topicsShortDesc string = "Inspect stored topics"

func NewTopicsCmd() *cobra.Command {
	cmder := &topicsCommander{}

	cmd := &cobra.Command{
		Use:   "topics",
		Short: topicsShortDesc,
		Long:  topicsLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.withStore(cmd, cmder.runList)
		},
	}

	registerStorageFlags(cmd, cmder)
	cmd.AddCommand(newHistoryCmd(cmder))
	cmd.AddCommand(newExportCmd(cmder))

	return cmd
}

type topicsCommander struct {
	storageProvider string
	sqlitePath      string
	postgresDSN     string
}

func registerStorageFlags(cmd *cobra.Command, cmder *topicsCommander) {
	config.AddStringFlag(cmd, config.Flags, config.FlagStorageProvider, &cmder.storageProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagPostgresDSN, &cmder.postgresDSN)
}

// withStore resolves config, opens the store, runs fn, and closes the store.
func (c *topicsCommander) withStore(cmd *cobra.Command, fn func(*cobra.Command, memory.Store) error) error {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagStorageProvider,
		config.FlagSQLite,
		config.FlagPostgresDSN,
	})

	target, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return fmt.Errorf("resolving lore directory: %w", err)
	}

	store, err := app.SettingsFromViper(v).OpenStore(cmd.Context(), target)
	if err != nil {
		return fmt.Errorf("opening conversation store: %w", err)
	}
	defer store.Close()

	return fn(cmd, store)
}

func (c *topicsCommander) runList(cmd *cobra.Command, store memory.Store) error {
	topics, err := store.Topics(cmd.Context())
	if err != nil {
		return err
	}

	if len(topics) == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No topics yet. Start one with: lore chat <topic>"))
		return nil
	}

	sort.Strings(topics)

	fmt.Println()
	for _, topic := range topics {
		fmt.Printf("  %s\n", cliui.Topic(topic))
	}
	fmt.Println()

	return nil
}

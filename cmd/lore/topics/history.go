package topicscmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parchmentco/lore/pkg/cliui"
	"github.com/parchmentco/lore/pkg/memory"
)

const historyLongDesc string = `Print a topic's conversation history, oldest turn first.

An unknown topic prints an empty history rather than failing, matching the
store's semantics.

Examples:
  lore topics history "quantum computing"`

const historyShortDesc string = "Print a topic's turns, oldest first"

func newHistoryCmd(cmder *topicsCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <topic>",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.withStore(cmd, func(cmd *cobra.Command, store memory.Store) error {
				return runHistory(cmd, store, args[0])
			})
		},
	}

	registerStorageFlags(cmd, cmder)

	return cmd
}

func runHistory(cmd *cobra.Command, store memory.Store, topic string) error {
	history, err := store.History(cmd.Context(), topic)
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s %s\n\n", cliui.KeyStyle.Render("Topic:"), cliui.Topic(topic))

	if len(history) == 0 {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("No turns stored for this topic."))
		return nil
	}

	for _, turn := range history {
		fmt.Println(cliui.Exchange(turn.User, turn.AI))
		fmt.Println()
	}

	return nil
}

package topicscmder

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parchmentco/lore/pkg/memory"
)

const exportLongDesc string = `Print the full record of a topic as JSON.

The output shape is {name, turns: [{user, ai, seq}, ...]}, suitable for
backup or for feeding into other tools. Fails for unknown topics.

Examples:
  lore topics export "quantum computing"
  lore topics export "quantum computing" > quantum.json`

const exportShortDesc string = "Print the full topic record as JSON"

func newExportCmd(cmder *topicsCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <topic>",
		Short: exportShortDesc,
		Long:  exportLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.withStore(cmd, func(cmd *cobra.Command, store memory.Store) error {
				return runExport(cmd, store, args[0])
			})
		},
	}

	registerStorageFlags(cmd, cmder)

	return cmd
}

func runExport(cmd *cobra.Command, store memory.Store, topic string) error {
	record, err := store.Export(cmd.Context(), topic)
	if err != nil {
		return fmt.Errorf("exporting %q: %w", topic, err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(record)
}

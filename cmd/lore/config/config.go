// Package configcmder provides the config command for managing persistent
// lore configuration stored in the .lore/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent lore configuration.

Configuration is stored as config.toml in the .lore/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  ollama.base_url, ollama.model, ollama.timeout_seconds,
  models.allowed,
  storage.provider, storage.sqlite_path, storage.postgres_dsn,
  api.listen,
  search.endpoint, search.api_key,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  lore config set <key> <value>    Set a configuration value
  lore config get <key>            Get a configuration value
  lore config list                 List all configuration values

Examples:
  lore config set ollama.model mistral:latest
  lore config set storage.provider postgres
  lore config get ollama.model
  lore config list`

const configShortDesc string = "Manage persistent lore configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

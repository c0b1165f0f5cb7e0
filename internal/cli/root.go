package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shelfspace/pkg/buildinfo"
	"github.com/matzehuels/shelfspace/pkg/store"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Shelfspace arranges books and ornaments on a virtual bookshelf",
		Long: `Shelfspace keeps a personal bookshelf: books, saved websites and ornaments
placed on shelves by dragging. Items snap next to their neighbours, new
shelves appear when something is dropped below the last one, and items
dropped on the archive zone leave the shelf.

The shelf can be used in the terminal (tui), served to a browser (serve),
or scripted (replay, items).`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default: $XDG_CONFIG_HOME/shelfspace/config.toml)")
	root.PersistentFlags().StringVar(&c.Backend, "store", "", "override the store backend: "+strings.Join(store.Backends, ", "))

	// Register all subcommands
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.itemsCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

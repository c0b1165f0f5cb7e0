package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/shelfspace/internal/server"
)

// serveCommand creates the serve command for the HTTP host.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shelf over HTTP",
		Long: `Serve the shelf to a browser client.

The client renders the frame returned by every call and posts pointer
events in container pixels:

  GET    /api/layout
  POST   /api/pointer/down|move|up
  GET    /api/items        POST /api/items
  POST   /api/ornaments
  GET    /api/archive
  POST   /api/archive/{kind}/{id}/restore
  DELETE /api/archive/{kind}/{id}

Placements are saved to the store before a response is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, cfg, err := c.openSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Close()

			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			logger := loggerFromContext(ctx)
			printInfo("Serving %s on %s", StyleValue.Render(sess.Library().Title), StyleLink.Render("http://"+cfg.Server.Addr))
			printKeyValue("Store", cfg.Store.Backend)
			printKeyValue("Items", strconv.Itoa(sess.Library().Count()))
			return server.New(sess, logger).ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	return cmd
}

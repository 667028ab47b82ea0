// ABOUTME: HTTP API server subcommand
// ABOUTME: Serves the JSON API until interrupted
package cli

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/schoolcrm/web"
)

// ServeCommand starts the web API. opts carries the store and calendar
// client; --addr overrides the configured listen address.
func ServeCommand(opts web.Options, addr string, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	listen := fs.String("addr", addr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return web.NewServer(opts).Start(ctx, *listen)
}

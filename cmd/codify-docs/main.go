package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/uetop/codify-document/cmd/codify-docs/commands"
	"github.com/uetop/codify-document/internal/foundation/errors"
	"github.com/uetop/codify-document/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("codify-docs"),
		kong.Description("Validate, render and link-check the Codify documentation site configuration."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	global := &commands.Global{Out: os.Stdout, Context: ctx}
	err := parser.Run(global, cli)
	stop()
	if err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}

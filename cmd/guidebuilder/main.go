package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/guidebuilder/cmd/guidebuilder/commands"
	ferrors "git.home.luguber.info/inful/guidebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/guidebuilder/internal/version"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cli := &commands.CLI{}
	global := &commands.Global{}
	parser := kong.Parse(cli,
		kong.Name("guidebuilder"),
		kong.Description("Build the BiteRight gluten guide site from page records."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	global.Logger = slog.Default()

	if err := parser.Run(cli); err != nil {
		cancel()
		ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}

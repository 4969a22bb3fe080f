// Command collective is the host-side companion to the board firmware. It
// runs the USB board's aggregation against simulated IO boards or a Linux I2C
// bus, and talks to a board's diagnostic console.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"collective-go/services/diag"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
)

type Log struct {
	Level string `help:"Log level: silent, fatal, error, warning, notice, trace, verbose" default:"notice" env:"COLLECTIVE_LOG_LEVEL"`
}

// Globals are bound into every command's Run.
type Globals struct {
	Profile string `help:"USB board profile YAML (default: the embedded one)" type:"existingfile" env:"COLLECTIVE_PROFILE"`
}

// CLI is the root command structure.
type CLI struct {
	Log     `embed:"" prefix:"log."`
	Globals `embed:""`

	Config kong.ConfigFlag `help:"Load flags from a YAML file"`

	Simulate  Simulate  `cmd:"" help:"Run the aggregator against simulated IO boards"`
	Aggregate Aggregate `cmd:"" help:"Run the aggregator against IO boards on a Linux I2C bus"`
	Console   Console   `cmd:"" help:"Send commands to a board's serial console and stream its output"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("collective"),
		kong.Description("Host tools for the collective flight controller boards."),
		kong.UsageOnError(),
		kong.Configuration(kongyaml.Loader, "/etc/collective.yaml", "~/.config/collective.yaml"),
	)

	if _, ok := diag.ParseLevel(cli.Log.Level); !ok {
		fmt.Fprintln(os.Stderr, "unknown log level:", cli.Log.Level)
		os.Exit(2)
	}
	logger, _ := diag.Setup(cli.Log.Level, os.Stdout, os.Stderr)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Bind(logger, &cli.Globals)
	ctx.BindTo(sigCtx, (*context.Context)(nil))

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/ayusman/gesturedrive/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are the flags shared by every command.
type Globals struct {
	Config string `kong:"type='path',help='HCL configuration file'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

type CLI struct {
	Globals

	Version kong.VersionFlag `short:"v" help:"Show version"`
	Drive   DriveCmd         `cmd:"" default:"withargs" help:"Drive a racing game with hand gestures (default)"`
	Race    RaceCmd          `cmd:"" help:"Play the built-in car race with hand gestures"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("gesturedrive"),
		kong.Description("Webcam hand-gesture controller for racing games"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// setup loads the configuration and builds the root logger.
func (g *Globals) setup() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	logger := config.NewLogger(os.Stderr, cfg.LogLevel, g.Debug)
	log.SetDefault(logger)
	return cfg, logger, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

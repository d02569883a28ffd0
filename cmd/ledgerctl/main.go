package main

import (
	"context"
	"flag"
	"os"
	"path"

	"papertrade-backend/internal/cli"
	"papertrade-backend/internal/config"
	"papertrade-backend/internal/logger"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cli.Register(commander)

	flag.Parse()

	// reports go to stdout; keep logs quiet unless asked
	level := "warn"
	if cfg, err := config.Load(); err == nil && cfg.LogLevel != "info" {
		level = cfg.LogLevel
	}
	if err := logger.Setup(level, "console"); err != nil {
		log.Fatal().Err(err).Msg("logger setup")
	}

	os.Exit(int(commander.Execute(context.Background())))
}

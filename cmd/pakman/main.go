// pakman is a package manager client for C and C++ recipes.
//
// Usage:
//
//	pakman <command> [arguments]
//
// Run 'pakman --help' for the list of commands and
// 'pakman <command> --help' for the arguments of one command.
//
// Exit codes:
//
//	0  success (also after Ctrl-C)
//	1  general error
//	6  invalid configuration
//	7  invalid system requirements
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lex00/pakman/api/local"
	"github.com/lex00/pakman/commands"
	"github.com/lex00/pakman/config"
	"github.com/lex00/pakman/dispatch"
	"github.com/lex00/pakman/exitcode"
	"github.com/lex00/pakman/logging"
	"github.com/lex00/pakman/output"
)

func main() {
	os.Exit(run(os.Args[1:]).Int())
}

func run(argv []string) exitcode.Code {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := output.NewTerminal(os.Stdout, os.Getenv(config.EnvNoColor) == "")
	log := logging.Discard()

	cfg, err := config.Load()
	if err != nil {
		return dispatch.Report(out, log, "", err)
	}
	out = output.NewTerminal(os.Stdout, cfg.General.Color)

	log, err = logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.LogFile(),
		Format:     cfg.Log.Format,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return dispatch.Report(out, logging.Discard(), "", err)
	}
	defer log.Close()

	api := local.New(cfg, out, log)
	reg, err := commands.New(api, out, cfg.CPUCount).Registry()
	if err != nil {
		return dispatch.Report(out, log, "", err)
	}
	return dispatch.New(reg, out, log).Run(ctx, argv)
}

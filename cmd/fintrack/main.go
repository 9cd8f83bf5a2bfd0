package main

import (
	"context"
	"fmt"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/shell"
)

func main() {
	os.Exit(run())
}

func run() int {
	cli.LoadEnvFile()

	// The level is needed before validation can report anything.
	logger := cli.SetupLogger(config.Load().LogLevel)

	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx := context.Background()
	res, err := cli.InitBackend(ctx, logger, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	cleanup := cli.OnceCleanup(logger, res.Cleanup)
	defer cleanup()

	stop := cli.HandleInterrupt(logger, cleanup)
	defer stop()

	logger.Info("Starting fintrack",
		log.FieldBackend, cfg.DataBackend,
		log.FieldPath, cfg.ExportPath())

	sh := shell.New(os.Stdin, os.Stdout, res.Service, export.NewExporter(cfg.ExportPath()), logger)
	if err := sh.Run(ctx); err != nil {
		logger.Error("Session ended with a fatal error",
			log.NewFields().WithOperation(log.OpShutdown).WithError(err).ToSlice()...)
		return 1
	}
	return 0
}

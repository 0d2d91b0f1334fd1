package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/pflag"

	"github.com/thushan/runstatus/internal/app"
	"github.com/thushan/runstatus/internal/config"
	"github.com/thushan/runstatus/internal/logger"
	"github.com/thushan/runstatus/internal/util"
	"github.com/thushan/runstatus/internal/version"
)

func main() {
	flags := pflag.NewFlagSet(version.ShortName, pflag.ContinueOnError)
	configFile := flags.StringP("config", "c", "", "config file (default ./runstatus.yaml or ./config/runstatus.yaml)")
	interactive := flags.BoolP("interactive", "i", false, "open the interactive view on the first selected resource")
	showVersion := flags.BoolP("version", "v", false, "print version and exit")
	config.RegisterFlags(flags)

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	if *showVersion {
		version.PrintVersionInfo(true, log.New(os.Stdout, "", 0))
		os.Exit(0)
	}

	if !util.ShouldUseColors() {
		pterm.DisableColor()
	}

	cfg, loader, err := config.Load(config.LoadOptions{ConfigFile: *configFile, Flags: flags})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// setup: logging with styled logger, quiet while the interactive view owns the screen
	logInstance, styledLogger, cleanup, err := logger.NewWithTheme(buildLoggerConfig(cfg, *interactive))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	slog.SetDefault(logInstance)

	styledLogger.Debug("Initialising", "version", version.Version, "pid", os.Getpid(), "config", cfg.Filename)

	// setup: graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		styledLogger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	application, err := app.New(cfg, app.Options{Loader: loader}, styledLogger)
	if err != nil {
		logger.FatalWithLogger(logInstance, "Failed to create application", "error", err)
	}

	switch {
	case *interactive:
		err = application.Interactive(ctx, "")
	case cfg.Watch.Enabled:
		err = application.Watch(ctx)
	default:
		err = application.RunOnce(ctx)
	}

	application.Close()

	if err != nil {
		styledLogger.Error("Query failed", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func buildLoggerConfig(cfg *config.Config, quiet bool) *logger.Config {
	return &logger.Config{
		Level:      cfg.Logging.Level,
		FileOutput: cfg.Logging.FileOutput,
		LogDir:     cfg.Logging.LogDir,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Theme:      cfg.Logging.Theme,
		Quiet:      quiet,
	}
}

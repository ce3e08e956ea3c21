package main

import (
	"fmt"
	"os"

	"buildhub/internal/app"
	"buildhub/internal/config"
	"buildhub/internal/logger"
	"buildhub/internal/model"
	"buildhub/internal/service"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "manage",
	Short: "manage - BuildHub maintenance commands",
	Long: `manage runs administrative tasks that do not belong behind the HTTP API:
schema migrations, seeding moderation rules, rescoring the pending comment
queue, sending a drafted newsletter and creating the first admin account.

Configuration is read from .env and the environment, the same as the server.`,
	SilenceUsage: true,
}

// Execute is called by main.main
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// systemActor is used for changes made from the command line
var systemActor = service.Actor{Role: model.RoleAdmin, IP: "127.0.0.1", UserAgent: "manage"}

// withContainer loads configuration, connects and hands the wired container
// to fn. Optional dependencies get a single connection attempt.
func withContainer(migrate bool, fn func(c *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	zlog, err := logger.New(level, "console")
	if err != nil {
		return err
	}
	defer zlog.Sync()

	container, err := app.Bootstrap(cfg, app.Options{ConnectAttempts: 1, Migrate: migrate})
	if err != nil {
		return err
	}
	defer container.Close()

	return fn(container)
}

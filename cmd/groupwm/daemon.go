package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/groupwm/internal/config"
	"github.com/1broseidon/groupwm/internal/daemon"
	"github.com/1broseidon/groupwm/internal/logger"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the X display",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().String("config", "", "Config file path (default: ~/.config/groupwm/config.yaml)")
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	log, err := newDaemonLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	display, _ := cmd.Flags().GetString("display")
	log.Info("groupwm starting", "config", path, "log_level", cfg.LogLevel)
	err = daemon.Run(ctx, daemon.Options{ConfigPath: path, Display: display, Log: log})
	if err != nil && ctx.Err() == nil {
		log.Error("daemon stopped", err)
		return err
	}
	log.Info("groupwm stopped")
	return nil
}

// newDaemonLogger logs to stderr and to the configured file.
func newDaemonLogger(cfg *config.Config) (*logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	file := cfg.LogFile
	if file == "" {
		if file, err = logger.DefaultLogPath(); err != nil {
			return nil, err
		}
	}
	return logger.New(logger.WithLevel(level), logger.WithConsole(), logger.WithFile(file))
}

func loadConfig(path string) (*config.Config, error) {
	res, err := loadConfigResult(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func loadConfigResult(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"tasklist/internal/cli"
	"tasklist/internal/config"
	"tasklist/internal/kv"
	"tasklist/internal/logging"
	"tasklist/internal/task"
	"tasklist/internal/ui"
	"tasklist/internal/view"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return cli.ExitFailure
	}

	command := cli.Commands(args)

	// The TUI owns stdout, so its logs go to the log file or nowhere.
	var fallback io.Writer = os.Stderr
	if !command {
		fallback = io.Discard
	}
	logger, logCloser, err := logging.New(cfg.LogPath, cfg.LogLevel, fallback)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
		return cli.ExitFailure
	}
	defer logCloser.Close()

	backend, closer, err := kv.Open(cfg)
	switch {
	case errors.Is(err, kv.ErrUnknownBackend):
		fmt.Fprintf(os.Stderr, "invalid config %s: %v\n", configPath, err)
		return cli.ExitFailure
	case err != nil:
		logger.Warn("storage backend unavailable", "backend", cfg.Backend, "err", err)
		backend, closer = kv.Unavailable{}, nil
	}
	if closer != nil {
		defer closer.Close()
	}

	if command {
		d := cli.NewDispatcher(storeFactory(backend, cfg, logger), os.Stdin, os.Stdout, os.Stderr)
		return d.Run(args)
	}

	if err := ui.Run(backend, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error running program: %v\n", err)
		return cli.ExitFailure
	}
	return cli.ExitOK
}

func storeFactory(backend kv.Backend, cfg config.Config, logger *slog.Logger) cli.StoreFactory {
	return func(target view.Target, approver view.Approver) (*task.Store, error) {
		return task.New(target, backend, task.Options{
			Key:      cfg.StorageKey,
			Filter:   task.ParseFilter(cfg.DefaultFilter),
			Approver: approver,
			Logger:   logger,
		})
	}
}

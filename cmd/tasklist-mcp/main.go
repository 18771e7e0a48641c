// Package main serves the task list over the Model Context Protocol.
//
// Tools are exposed on stdio JSON-RPC; logs go to stderr or the configured
// log file.
package main

import (
	"errors"
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"tasklist/internal/config"
	"tasklist/internal/kv"
	"tasklist/internal/logging"
	"tasklist/internal/mcpserver"
	"tasklist/internal/task"
)

func run() int {
	errLogger := log.New(os.Stderr, "[tasklist-mcp] ", log.LstdFlags)

	cfg, err := config.LoadOrCreate(config.ResolveConfigPath())
	if err != nil {
		errLogger.Printf("Failed to load config: %v", err)
		return 1
	}

	logger, logCloser, err := logging.New(cfg.LogPath, cfg.LogLevel, os.Stderr)
	if err != nil {
		errLogger.Printf("Failed to open log: %v", err)
		return 1
	}
	defer logCloser.Close()

	backend, closer, err := kv.Open(cfg)
	switch {
	case errors.Is(err, kv.ErrUnknownBackend):
		errLogger.Printf("Invalid config: %v", err)
		return 1
	case err != nil:
		logger.Warn("storage backend unavailable", "backend", cfg.Backend, "err", err)
		backend, closer = kv.Unavailable{}, nil
	}
	if closer != nil {
		defer closer.Close()
	}

	ts, err := mcpserver.NewTaskServer(backend, task.Options{
		Key:    cfg.StorageKey,
		Filter: task.ParseFilter(cfg.DefaultFilter),
		Logger: logger,
	})
	if err != nil {
		errLogger.Printf("Failed to create task server: %v", err)
		return 1
	}

	if err := server.ServeStdio(mcpserver.NewServer(ts), server.WithErrorLogger(errLogger)); err != nil {
		errLogger.Printf("Server error: %v", err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(run())
}

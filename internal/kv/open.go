package kv

import (
	"fmt"
	"io"
	"strings"

	"tasklist/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the backend named by cfg.Backend together with a Closer that
// releases whatever it holds.
//
// Backends: "memory", "json", "sqlite" (default), "mysql", "postgres".
func Open(cfg config.Config) (Backend, io.Closer, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if name == "" {
		name = config.DefaultBackend
	}

	switch name {
	case "memory":
		return NewMemory(), nopCloser{}, nil

	case "json":
		return NewJSONFile(cfg.JSONPath), nopCloser{}, nil

	case "sqlite":
		b, err := OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return b, b, nil

	case "mysql":
		b, err := OpenMySQL(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open mysql database: %w", err)
		}
		return b, b, nil

	case "postgres", "postgresql":
		b, err := NewPostgres(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres database: %w", err)
		}
		return b, nopCloser{}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q (expected memory, json, sqlite, mysql or postgres)", ErrUnknownBackend, cfg.Backend)
	}
}

package kv_test

import (
	"context"
	"os/exec"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"tasklist/internal/kv"
)

// dockerAvailable checks whether the Docker daemon is reachable.
// testcontainers-go panics when Docker is not installed.
func dockerAvailable() bool {
	return exec.Command("docker", "info").Run() == nil
}

func newTestPostgres(t *testing.T) *kv.Postgres {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	if !dockerAvailable() {
		t.Skip("Docker not available, skipping PostgreSQL integration tests")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("tasks"),
		postgres.WithUsername("tasks"),
		postgres.WithPassword("tasks"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Skipf("failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	b, err := kv.NewPostgres(connStr)
	if err != nil {
		t.Fatalf("NewPostgres() error: %v", err)
	}
	return b
}

func Test_Postgres_Contract(t *testing.T) {
	exerciseBackend(t, newTestPostgres(t))
}

func Test_Postgres_BadConnString(t *testing.T) {
	t.Parallel()
	if _, err := kv.NewPostgres("postgres://nobody@127.0.0.1:1/none?connect_timeout=1"); err == nil {
		t.Fatal("NewPostgres() against a closed port succeeded, want error")
	}
}

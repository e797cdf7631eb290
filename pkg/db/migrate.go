// pkg/db/migrate.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// RunMigrations applies the embedded goose migrations against the database
// described by cfg. Supported commands: up, down, status, redo.
func RunMigrations(ctx context.Context, cfg Config, command string) error {
	migrationCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	conn, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("sql open: %w", err)
	}
	defer func() { _ = conn.Close() }()

	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.RunContext(migrationCtx, command, conn, "migrations"); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	return nil
}

// Command reset wipes all pipeline data: deals, board overlays, and the
// ingest audit trail. The schema itself stays in place. Intended for
// development and staging databases.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/halcyonfield/pipeboard/internal/admin"
	"github.com/halcyonfield/pipeboard/internal/config"
	"github.com/halcyonfield/pipeboard/internal/logging"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithTimeout(context.Background(), admin.ResetTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	resetter := &admin.ResetDBs{Pool: pool}
	if err := resetter.ResetAll(ctx); err != nil {
		slog.Error("reset failed", "error", err)
		os.Exit(1)
	}

	slog.Info("all pipeline tables reset")
}

//cmd/seeder/main.go
package main

import (
	"context"
	"os"

	"github.com/wb-go/wbf/zlog"

	"github.com/unclebandit/donorlink-backend/internal/config"
	"github.com/unclebandit/donorlink-backend/internal/db"
)

func main() {
	zlog.Init()

	cfg, err := config.Load()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	seedFiles := []string{
		"seed/donors.sql",
		"seed/profiles.sql",
	}

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Str("file", file).Msg("failed to read seed file")
		}

		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			zlog.Logger.Fatal().Err(err).Str("file", file).Msg("failed to execute seed file")
		}
		zlog.Logger.Info().Str("file", file).Msg("seeded")
	}

	zlog.Logger.Info().Msg("database seeding completed successfully")
}

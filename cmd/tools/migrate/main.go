package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"short.local/internal/platform/config"
	"short.local/internal/platform/db"
	"short.local/internal/platform/migrate"
)

func main() {
	dir := flag.String("dir", "", "migrations directory (default: ./migrations)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := db.New(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	res, err := migrate.Up(ctx, pool, migrate.Options{Dir: *dir})
	if err != nil {
		log.Fatal(err)
	}

	slog.Info("迁移完成",
		"dir", res.Dir,
		"applied", res.AppliedFiles,
		"skipped", len(res.SkippedFiles),
	)
}

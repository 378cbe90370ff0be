package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sort"

	"revenue-tracker/internal/db"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// migrate applies every migrations/*.sql file in filename order. Migrations
// are written to be idempotent (CREATE TABLE IF NOT EXISTS and the like), so
// re-running the command is safe.
func main() {
	dir := flag.String("dir", "migrations", "directory containing .sql migration files")
	flag.Parse()

	_ = godotenv.Load()
	log := logrus.New()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer pool.Close()

	files, err := filepath.Glob(filepath.Join(*dir, "*.sql"))
	if err != nil {
		log.WithError(err).Fatal("listing migration files failed")
	}
	if len(files) == 0 {
		log.WithField("dir", *dir).Fatal("no migration files found")
	}
	sort.Strings(files)

	for _, file := range files {
		sql, err := os.ReadFile(file)
		if err != nil {
			log.WithError(err).WithField("file", file).Fatal("reading migration failed")
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			log.WithError(err).WithField("file", file).Fatal("migration failed")
		}
		log.WithField("file", file).Info("migration applied")
	}
	log.Info("all migrations applied")
}

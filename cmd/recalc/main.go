package main

import (
	"context"
	"flag"
	"os"

	"revenue-tracker/internal/core"
	"revenue-tracker/internal/db"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// recalc refreshes the persisted revenue figures of every service, for one
// company or all of them. Useful after calculation changes or data imports.
func main() {
	company := flag.String("company", "", "company code to recalculate (default: all companies)")
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

	customers := core.NewCustomerService(pool)
	services := core.NewServiceService(pool)

	codes := []string{*company}
	if *company == "" {
		companies, err := customers.GetCompanies(ctx)
		if err != nil {
			log.WithError(err).Fatal("listing companies failed")
		}
		codes = codes[:0]
		for _, c := range companies {
			codes = append(codes, c.CompanyCode)
		}
	}

	total := 0
	for _, code := range codes {
		changed, err := services.RecalculateAll(ctx, code)
		if err != nil {
			log.WithError(err).WithField("company", code).Fatal("recalculation failed")
		}
		log.WithFields(logrus.Fields{"company": code, "updated": changed}).Info("recalculated")
		total += changed
	}
	log.WithField("total_updated", total).Info("done")
}

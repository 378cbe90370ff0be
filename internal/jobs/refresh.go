// Package jobs runs scheduled background work against the core services.
package jobs

import (
	"context"
	"time"

	"revenue-tracker/internal/core"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const defaultRefreshSpec = "0 3 * * *"

// Refresher re-derives the persisted revenue figures of every service on a
// schedule, so rows written by older calculation code converge to current
// results without waiting for the next explicit recalculation.
type Refresher struct {
	cron      *cron.Cron
	customers core.CustomerService
	services  core.ServiceService
	log       *logrus.Logger
	spec      string
}

// NewRefresher builds a Refresher. spec is a standard cron expression; when
// empty the job runs nightly at 03:00.
func NewRefresher(customers core.CustomerService, services core.ServiceService, spec string, log *logrus.Logger) *Refresher {
	if spec == "" {
		spec = defaultRefreshSpec
	}
	return &Refresher{
		cron:      cron.New(),
		customers: customers,
		services:  services,
		log:       log,
		spec:      spec,
	}
}

// Start registers the job and starts the scheduler.
func (r *Refresher) Start() error {
	_, err := r.cron.AddFunc(r.spec, r.run)
	if err != nil {
		return err
	}
	r.cron.Start()
	r.log.WithField("spec", r.spec).Info("revenue refresh job scheduled")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (r *Refresher) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	companies, err := r.customers.GetCompanies(ctx)
	if err != nil {
		r.log.WithError(err).Error("revenue refresh: listing companies failed")
		return
	}

	for _, company := range companies {
		changed, err := r.services.RecalculateAll(ctx, company.CompanyCode)
		if err != nil {
			r.log.WithError(err).WithField("company", company.CompanyCode).Error("revenue refresh failed")
			continue
		}
		r.log.WithFields(logrus.Fields{
			"company": company.CompanyCode,
			"updated": changed,
		}).Info("revenue refresh complete")
	}
}

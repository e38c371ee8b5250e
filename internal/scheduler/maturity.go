// Package scheduler runs periodic ledger jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Maturer completes investments that have reached their end date.
type Maturer interface {
	MatureDue(ctx context.Context, asOf time.Time) (int, error)
}

// MaturityJob matures due investments on a cron schedule.
type MaturityJob struct {
	cron    *cron.Cron
	ledger  Maturer
	log     logrus.FieldLogger
	now     func() time.Time
	timeout time.Duration
}

func NewMaturityJob(ledger Maturer, log logrus.FieldLogger) *MaturityJob {
	return &MaturityJob{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger))),
		ledger:  ledger,
		log:     log,
		now:     time.Now,
		timeout: 5 * time.Minute,
	}
}

// Schedule registers the job under spec, e.g. "@every 1h" or "0 * * * *".
func (j *MaturityJob) Schedule(spec string) error {
	if _, err := j.cron.AddFunc(spec, func() { j.Run(context.Background()) }); err != nil {
		return fmt.Errorf("invalid maturity schedule %q: %w", spec, err)
	}
	return nil
}

// Run performs one maturity pass and returns how many investments matured.
func (j *MaturityJob) Run(ctx context.Context) int {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	asOf := j.now()
	n, err := j.ledger.MatureDue(ctx, asOf)
	entry := j.log.WithFields(logrus.Fields{"matured": n, "as_of": asOf})
	if err != nil {
		entry.WithError(err).Error("[MATURITY] Maturity run finished with errors")
		return n
	}
	if n > 0 {
		entry.Info("[MATURITY] Investments matured")
	} else {
		entry.Debug("[MATURITY] Nothing due")
	}
	return n
}

func (j *MaturityJob) Start() {
	j.cron.Start()
}

// Stop halts scheduling and waits for a running pass to finish.
func (j *MaturityJob) Stop() {
	<-j.cron.Stop().Done()
}

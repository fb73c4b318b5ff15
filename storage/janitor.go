package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const DEFAULT_PRUNE_SCHEDULE = "@hourly"

type pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Janitor periodically drops audit entries older than the retention window.
type Janitor struct {
	cron      *cron.Cron
	db        pruner
	retention time.Duration
	logger    logrus.FieldLogger
	now       func() time.Time
}

func NewJanitor(db pruner, retention time.Duration, logger logrus.FieldLogger) *Janitor {
	return &Janitor{
		cron:      cron.New(),
		db:        db,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Start schedules the prune job. A zero retention keeps entries forever and
// schedules nothing.
func (j *Janitor) Start(schedule string) error {
	if j.retention == 0 {
		j.logger.Info("audit retention disabled, entries are kept forever")
		return nil
	}

	if schedule == "" {
		schedule = DEFAULT_PRUNE_SCHEDULE
	}

	_, err := j.cron.AddFunc(schedule, func() {
		if _, err := j.RunOnce(context.Background()); err != nil {
			j.logger.WithError(err).Warn("audit prune failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit prune: %w", err)
	}

	j.cron.Start()
	j.logger.WithField("schedule", schedule).WithField("retention", j.retention.String()).Info("audit janitor started")
	return nil
}

func (j *Janitor) RunOnce(ctx context.Context) (int64, error) {
	cutoff := j.now().Add(-j.retention)
	n, err := j.db.Prune(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		j.logger.WithField("pruned", n).Info("audit entries pruned")
	}
	return n, nil
}

func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}
